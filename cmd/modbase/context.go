package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"modbase/internal/config"
	"modbase/internal/history"
	"modbase/internal/logging"
	"modbase/internal/pipeline"
	"modbase/internal/services"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	debugFlag    *bool

	runID string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	history *history.Store
}

func newCommandContext(configFlag, logLevelFlag *string, debugFlag *bool) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		debugFlag:    debugFlag,
		runID:        uuid.NewString(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) debugEnabled() bool {
	if c.debugFlag != nil && *c.debugFlag {
		return true
	}
	v := strings.TrimSpace(os.Getenv("DEBUG"))
	return v != "" && v != "0" && !strings.EqualFold(v, "false")
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		level := ""
		if c.logLevelFlag != nil {
			level = strings.TrimSpace(*c.logLevelFlag)
		}
		if c.debugEnabled() {
			level = "debug"
		}
		logger, err := logging.NewFromConfig(cfg, level, c.debugEnabled())
		if err != nil {
			c.loggerErr = err
			return
		}
		logging.PruneForConfig(logger, cfg)
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// runContext stamps the invocation's run id and command name on ctx.
func (c *commandContext) runContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = services.WithRunID(ctx, c.runID)
	return services.WithCommand(ctx, cmd.Name())
}

// runner builds a pipeline runner with the ledger attached when enabled.
func (c *commandContext) runner(ctx context.Context) (*pipeline.Runner, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	opts := []pipeline.Option{pipeline.WithLogger(logger)}
	if cfg.History.Enabled {
		if store := c.openHistory(ctx, cfg, logger); store != nil {
			opts = append(opts, pipeline.WithHistory(store))
		}
	}
	return pipeline.New(cfg, opts...)
}

func (c *commandContext) openHistory(ctx context.Context, cfg *config.Config, logger *slog.Logger) *history.Store {
	if c.history != nil {
		return c.history
	}
	store, err := history.Open(cfg)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, logger), "history ledger unavailable", "history_open_failed",
			logging.String("path", cfg.HistoryPath()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run will not be recorded"),
		)
		return nil
	}
	c.history = store
	return store
}

func (c *commandContext) close() {
	if c.history != nil {
		_ = c.history.Close()
		c.history = nil
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
