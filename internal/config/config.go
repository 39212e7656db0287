package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration for the spectral library and state.
type Paths struct {
	EndMemberDir string `toml:"endmember_dir"`
	MixedDir     string `toml:"mixed_dir"`
	DataDir      string `toml:"data_dir"`
	LogDir       string `toml:"log_dir"`
}

// Ingest contains configuration for raw file normalization.
type Ingest struct {
	// RelativeUncertainty is the fraction of |emissivity| used when a file
	// carries no uncertainty column. Default: 0.02
	RelativeUncertainty float64 `toml:"relative_uncertainty"`
	// MinPointsWarning is the row count below which a normalized spectrum
	// triggers an advisory. Default: 10
	MinPointsWarning int `toml:"min_points_warning"`
}

// Unmix contains configuration for the unmixing solver.
type Unmix struct {
	Algorithm string `toml:"algorithm"`
	// RoundDecimals is the precision applied to abundances before the
	// non-positive test that drives pruning. Default: 2
	RoundDecimals int `toml:"round_decimals"`
	// UncertaintyEpsilon is added to squared uncertainties before weighting.
	UncertaintyEpsilon float64 `toml:"uncertainty_epsilon"`
	// MinRCond is the smallest reciprocal condition number accepted for the
	// weighted Gram matrix.
	MinRCond      float64 `toml:"min_rcond"`
	BlackbodyName string  `toml:"blackbody_name"`
	RecordRuns    bool    `toml:"record_runs"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for specmix.
//
// Configuration sections by subsystem:
//   - Paths: end-member library, mixed spectra, journal and log directories
//   - Ingest: defaults applied while normalizing raw files
//   - Unmix: solver tunables and run recording
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Ingest  Ingest  `toml:"ingest"`
	Unmix   Unmix   `toml:"unmix"`
	Logging Logging `toml:"logging"`
}

const defaultConfigLocation = "~/.config/specmix/config.toml"

// DefaultConfigPath returns the absolute path of the per-user config file.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigLocation)
}

// Load resolves the config file, decodes it over Default(), normalizes paths
// and validates the result. It also reports the resolved path and whether a
// file was found there; a missing file yields the defaults.
func Load(path string) (*Config, string, bool, error) {
	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}
	cfg := Default()
	if exists {
		if err := decodeFile(resolved, &cfg); err != nil {
			return nil, "", false, err
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return fmt.Errorf("parse config %s:%d:%d: %w", path, row, col, err)
		}
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// resolveConfigPath honours an explicit path even when the file is absent.
// Otherwise the per-user file wins over ./specmix.toml, and the per-user
// location is reported when neither exists.
func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		switch {
		case err == nil:
			return expanded, true, nil
		case errors.Is(err, fs.ErrNotExist):
			return expanded, false, nil
		default:
			return "", false, fmt.Errorf("stat config: %w", err)
		}
	}

	userPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	localPath, err := filepath.Abs("specmix.toml")
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{userPath, localPath} {
		if isFile(candidate) {
			return candidate, true, nil
		}
	}
	return userPath, false, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// EnsureDirectories creates every configured directory that is set.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.EndMemberDir, c.Paths.MixedDir, c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// JournalPath returns the location of the run journal database.
func (c *Config) JournalPath() string {
	return filepath.Join(c.Paths.DataDir, "runs.db")
}

// Encode writes the effective configuration as TOML.
func (c *Config) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	return enc.Encode(c)
}

// expandPath resolves a leading "~" or "~/" against the home directory and
// returns a cleaned absolute path. Empty input stays empty.
func expandPath(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if value == "~" || strings.HasPrefix(value, "~/") || strings.HasPrefix(value, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		value = filepath.Join(home, value[1:])
	}
	absolute, err := filepath.Abs(value)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", value, err)
	}
	return absolute, nil
}

// ExpandPath applies the config path rules to a user-supplied path.
func ExpandPath(value string) (string, error) {
	return expandPath(value)
}

// CreateSample writes the commented sample configuration to path.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
