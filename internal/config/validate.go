package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validateUnmix(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateIngest() error {
	if c.Ingest.RelativeUncertainty <= 0 || c.Ingest.RelativeUncertainty > 1 {
		return errors.New("ingest.relative_uncertainty must be in (0, 1]")
	}
	if c.Ingest.MinPointsWarning < 0 {
		return errors.New("ingest.min_points_warning must be >= 0")
	}
	return nil
}

func (c *Config) validateUnmix() error {
	switch c.Unmix.Algorithm {
	case AlgorithmWLS, AlgorithmSTO:
	default:
		return fmt.Errorf("unmix.algorithm: unsupported value %q (want %q or %q)", c.Unmix.Algorithm, AlgorithmWLS, AlgorithmSTO)
	}
	if c.Unmix.RoundDecimals < 0 || c.Unmix.RoundDecimals > 12 {
		return errors.New("unmix.round_decimals must be between 0 and 12")
	}
	if c.Unmix.UncertaintyEpsilon < 0 {
		return errors.New("unmix.uncertainty_epsilon must be >= 0")
	}
	if c.Unmix.MinRCond < 0 || c.Unmix.MinRCond >= 1 {
		return errors.New("unmix.min_rcond must be in [0, 1)")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
