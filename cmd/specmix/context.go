package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"specmix/internal/config"
	"specmix/internal/faults"
	"specmix/internal/ingest"
	"specmix/internal/journal"
	"specmix/internal/library"
	"specmix/internal/logging"
	"specmix/internal/unmix"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
			if err := cfg.Validate(); err != nil {
				c.configErr = fmt.Errorf("--log-level: %w", err)
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// baseLogger returns the shared logger. A logger that cannot be built falls
// back to a no-op so commands still run.
func (c *commandContext) baseLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.configValue())
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) loggerFor(component string) *slog.Logger {
	return logging.NewComponentLogger(c.baseLogger(), component)
}

func (c *commandContext) openLibrary(kind library.Kind) (*library.Library, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return library.OpenKind(cfg, kind, c.baseLogger())
}

func (c *commandContext) ingester() *ingest.Ingester {
	return ingest.NewFromConfig(c.configValue(), c.baseLogger())
}

func (c *commandContext) unmixer() *unmix.Unmixer {
	return unmix.NewFromConfig(c.configValue(), c.baseLogger())
}

func (c *commandContext) withJournal(fn func(*journal.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := journal.Open(cfg)
	if err != nil {
		return fmt.Errorf("open run journal: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// formatError appends the remediation hint for classified failures.
func formatError(err error) string {
	if err == nil {
		return ""
	}
	hint := faults.Hint(err)
	if hint == "" {
		return err.Error()
	}
	return fmt.Sprintf("%v\nhint: %s", err, hint)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
