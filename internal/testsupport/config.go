package testsupport

import (
	"path/filepath"
	"testing"

	"specmix/internal/config"
)

// ConfigOption adjusts a test configuration before its directories are made.
type ConfigOption func(*config.Config)

// NewConfig returns the default configuration with every directory moved
// under a fresh t.TempDir(). The directories exist on return.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	base := t.TempDir()
	for dir, name := range map[*string]string{
		&cfg.Paths.EndMemberDir: "spectral_library",
		&cfg.Paths.MixedDir:     "mixed",
		&cfg.Paths.DataDir:      "data",
		&cfg.Paths.LogDir:       "logs",
	} {
		*dir = filepath.Join(base, name)
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

func WithAlgorithm(name string) ConfigOption {
	return func(cfg *config.Config) { cfg.Unmix.Algorithm = name }
}

func WithoutRunRecording() ConfigOption {
	return func(cfg *config.Config) { cfg.Unmix.RecordRuns = false }
}

// BaseDir returns the temp directory holding a NewConfig layout.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.EndMemberDir)
}
