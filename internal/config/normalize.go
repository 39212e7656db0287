package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeUnmix()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("SPECMIX_DATA_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.DataDir = strings.TrimSpace(value)
	}
	fields := []struct {
		key      string
		value    *string
		fallback string
	}{
		{"paths.endmember_dir", &c.Paths.EndMemberDir, defaultEndMemberDir},
		{"paths.mixed_dir", &c.Paths.MixedDir, defaultMixedDir},
		{"paths.data_dir", &c.Paths.DataDir, defaultDataDir},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogDir},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.fallback
		}
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeUnmix() {
	c.Unmix.Algorithm = strings.ToLower(strings.TrimSpace(c.Unmix.Algorithm))
	if c.Unmix.Algorithm == "" {
		c.Unmix.Algorithm = defaultAlgorithm
	}
	c.Unmix.BlackbodyName = strings.TrimSpace(c.Unmix.BlackbodyName)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
