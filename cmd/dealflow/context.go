package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"dealflow/internal/config"
	"dealflow/internal/logging"
	"dealflow/internal/notifications"
	"dealflow/internal/pipeline"
	"dealflow/internal/store"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	store *store.Store
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
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

// loggerValue returns a nop logger when the configured sinks cannot be
// opened.
func (c *commandContext) loggerValue() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) openStore() (*store.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open evaluation store: %w", err)
	}
	c.store = st
	return st, nil
}

func (c *commandContext) runner() (*pipeline.Runner, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return pipeline.New(cfg, c.loggerValue()), nil
}

// recorder opens the store unless persist is false, in which case only the
// notification side of recording runs.
func (c *commandContext) recorder(persist bool) (*pipeline.Recorder, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	var st *store.Store
	if persist {
		if st, err = c.openStore(); err != nil {
			return nil, err
		}
	} else {
		cfg = withoutDealNotes(cfg)
	}
	return pipeline.NewRecorder(st, cfg, notifications.NewService(cfg), c.loggerValue()), nil
}

func withoutDealNotes(cfg *config.Config) *config.Config {
	clone := *cfg
	clone.Paths.DealNoteDir = ""
	return &clone
}

func (c *commandContext) close() {
	if c.store != nil {
		_ = c.store.Close()
		c.store = nil
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
