package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"packhub/internal/api"
	"packhub/internal/config"
	"packhub/internal/logging"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the packhub configuration",
	}
	cmd.AddCommand(newConfigValidateCommand(ctx), newConfigInitCommand())
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		targetPath string
		overwrite  bool
	)

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(targetPath)
			if err != nil {
				return err
			}
			if !overwrite {
				_, statErr := os.Stat(target)
				switch {
				case statErr == nil:
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				case !errors.Is(statErr, fs.ErrNotExist):
					return fmt.Errorf("check config path: %w", statErr)
				}
			}
			if err := config.CreateSample(target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

// initTarget resolves --path, defaulting to the per-user config location.
func initTarget(flagValue string) (string, error) {
	if value := strings.TrimSpace(flagValue); value != "" {
		expanded, err := config.ExpandPath(value)
		if err != nil {
			return "", fmt.Errorf("resolve config path: %w", err)
		}
		return expanded, nil
	}
	target, err := config.DefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("determine default config path: %w", err)
	}
	return target, nil
}

// configReport is the effective configuration as packhub will use it.
type configReport struct {
	Path         string `json:"path"`
	FileFound    bool   `json:"file_found"`
	DecodeMode   string `json:"decode_mode"`
	Trace        bool   `json:"trace"`
	LRUSize      int    `json:"lru_size"`
	CachePath    string `json:"cache_path,omitempty"`
	CacheMaxAge  int    `json:"cache_max_age_days"`
	CacheEntries int    `json:"cache_entries"`
	LogDir       string `json:"log_dir"`
	LogFormat    string `json:"log_format"`
	LogLevel     string `json:"log_level"`
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Load the configuration and open the pack cache it names",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			report := configReport{
				Path:        path,
				FileFound:   exists,
				DecodeMode:  cfg.DecodeMode().String(),
				Trace:       cfg.Decode.Trace,
				LRUSize:     cfg.Decode.LRUSize,
				CachePath:   cfg.CachePath(),
				CacheMaxAge: cfg.Cache.MaxAgeDays,
				LogDir:      cfg.Paths.LogDir,
				LogFormat:   cfg.Logging.Format,
				LogLevel:    cfg.Logging.Level,
			}
			if report.CacheEntries, err = countCacheEntries(cmd.Context(), cfg); err != nil {
				return err
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, report)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", report.Path)
			if !report.FileFound {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			writeSummaryLine(out, "Mode", report.DecodeMode)
			writeSummaryLine(out, "Trace", yesNo(report.Trace))
			writeSummaryLine(out, "LRU", strconv.Itoa(report.LRUSize))
			if report.CachePath == "" {
				writeSummaryLine(out, "Cache", "disabled")
			} else {
				writeSummaryLine(out, "Cache", fmt.Sprintf("%s (%d entries, max age %dd)",
					report.CachePath, report.CacheEntries, report.CacheMaxAge))
			}
			writeSummaryLine(out, "Logs", fmt.Sprintf("%s (%s, %s)", report.LogDir, report.LogFormat, report.LogLevel))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

// countCacheEntries opens the configured cache so schema problems surface at
// validation time. A disabled cache counts as empty.
func countCacheEntries(ctx context.Context, cfg *config.Config) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cache, err := api.OpenPackCache(ctx, cfg, logging.NewNop())
	if errors.Is(err, api.ErrCacheDisabled) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer cache.Close()
	return cache.Count(ctx)
}
