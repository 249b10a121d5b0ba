package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"packhub/internal/api"
	"packhub/internal/config"
	"packhub/internal/logging"
	"packhub/internal/packcache"
)

type commandContext struct {
	configFlag  *string
	jsonFlag    *bool
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string, jsonFlag, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		jsonFlag:    jsonFlag,
		verboseFlag: verboseFlag,
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

// JSONMode reports whether --json was passed.
func (c *commandContext) JSONMode() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) verbose() bool {
	return c.verboseFlag != nil && *c.verboseFlag
}

// cliLogger returns the process logger. It falls back to a no-op logger when
// the configured sinks cannot be opened so commands still run.
func (c *commandContext) cliLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logCfg := *cfg
		if c.verbose() {
			logCfg.Logging.Level = "debug"
		}
		logger, err := logging.NewFromConfig(&logCfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

// openCache opens the persistent cache. A disabled cache yields (nil, "", nil);
// an open failure is reported as a warning so decoding can continue without it.
func (c *commandContext) openCache(ctx context.Context) (*packcache.Cache, string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, "", err
	}
	cache, err := api.OpenPackCache(ctx, cfg, c.cliLogger())
	switch {
	case errors.Is(err, api.ErrCacheDisabled):
		return nil, "", nil
	case err != nil:
		return nil, fmt.Sprintf("Warning: pack cache unavailable: %v", err), nil
	}
	return cache, "", nil
}

// requireCache is openCache for commands that cannot work without a cache.
func (c *commandContext) requireCache(ctx context.Context) (*packcache.Cache, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return api.OpenPackCache(ctx, cfg, c.cliLogger())
}

// decodeService wires a DecodeService. The returned closer releases the cache.
func (c *commandContext) decodeService(cmd *cobra.Command, useCache bool) (*api.DecodeService, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	var cache *packcache.Cache
	if useCache {
		opened, warn, err := c.openCache(cmd.Context())
		if err != nil {
			return nil, nil, err
		}
		if warn != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), warn)
		}
		cache = opened
	}
	closer := func() {
		if cache != nil {
			_ = cache.Close()
		}
	}
	svc, err := api.NewDecodeServiceFromConfig(cfg, cache, c.cliLogger())
	if err != nil {
		closer()
		return nil, nil, err
	}
	return svc, closer, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
