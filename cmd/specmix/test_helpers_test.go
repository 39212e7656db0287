package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"specmix/internal/config"
	"specmix/internal/fileutil"
	"specmix/internal/spectrum"
	"specmix/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	cfg.Logging.Level = "error"
	base := testsupport.BaseDir(cfg)

	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("SPECMIX_DATA_DIR", "")

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	if err := fileutil.WriteFileAtomic(path, 0o644, cfg.Encode); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

// Two smooth, linearly independent end-members on a shared grid.
func quartzLike(wn float64) float64  { return 0.9 + 0.05*math.Sin(wn/50) }
func olivineLike(wn float64) float64 { return 0.8 + 0.1*math.Cos(wn/70) }
func syntheticGrid(f func(float64) float64) *spectrum.Spectrum {
	return testsupport.Synthetic(1000, 1400, 5, 0.01, f)
}

// seedLibraries stores quartz and olivine end-members and a 60/40 mixture.
func seedLibraries(t *testing.T, cfg *config.Config) {
	t.Helper()
	testsupport.WriteSpectrum(t, filepath.Join(cfg.Paths.EndMemberDir, "quartz.txt"), syntheticGrid(quartzLike))
	testsupport.WriteSpectrum(t, filepath.Join(cfg.Paths.EndMemberDir, "olivine.txt"), syntheticGrid(olivineLike))
	testsupport.WriteSpectrum(t, filepath.Join(cfg.Paths.MixedDir, "basalt.txt"), syntheticGrid(func(wn float64) float64 {
		return 0.6*quartzLike(wn) + 0.4*olivineLike(wn)
	}))
}
