package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"packhub/internal/api"
	"packhub/internal/packcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the decoded pack cache",
		Long: `Inspect and manage the decoded pack cache.

The cache stores decoded packs keyed by pack ID or metadata fingerprint so
repeat decodes skip the bitstream decoder.

Commands:
  list     - List cached packs, newest first
  show     - Show a cached pack by key or list number
  remove   - Remove an entry by number (see 'list' for numbers)
  clear    - Remove all cached entries
  prune    - Remove entries older than cache.max_age_days`,
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheShowCommand(ctx))
	cacheCmd.AddCommand(newCacheRemoveCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))

	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached packs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.requireCache(cmd.Context())
			if err != nil {
				return err
			}
			defer cache.Close()

			entries, err := cache.List(cmd.Context())
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				if entries == nil {
					entries = []packcache.Entry{}
				}
				return writeJSON(cmd, entries)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Pack cache: empty")
				return nil
			}

			fmt.Fprintf(out, "Pack cache: %d entries\n\n", len(entries))
			const stampLayout = "2006-01-02 15:04"
			rows := make([][]string, 0, len(entries))
			for i, entry := range entries {
				cachedAt := "unknown"
				if !entry.CachedAt.IsZero() {
					cachedAt = entry.CachedAt.Local().Format(stampLayout)
				}
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					entry.Name,
					fallback(entry.Code, "-"),
					strconv.Itoa(entry.ShotCount),
					shortKey(entry.Key),
					entry.Mode,
					cachedAt,
				})
			}
			fmt.Fprintln(out, renderTable(cacheColumns, rows))
			return nil
		},
	}
}

func newCacheShowCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <key|number>",
		Short: "Show a cached pack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveOutput(ctx, output)
			if err != nil {
				return err
			}
			cache, err := ctx.requireCache(cmd.Context())
			if err != nil {
				return err
			}
			defer cache.Close()

			key, err := resolveCacheKey(cmd, cache, args[0])
			if err != nil {
				return err
			}
			entry, ok, err := cache.Lookup(cmd.Context(), key)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %q", packcache.ErrNotFound, key)
			}

			if format != outputTable {
				return writeStructured(cmd, format, entry)
			}
			out := cmd.OutOrStdout()
			writeSummaryLine(out, "Key", entry.Key)
			writeSummaryLine(out, "Mode", entry.Mode)
			writeSummaryLine(out, "Cached", entry.CachedAt.Local().Format("2006-01-02 15:04:05"))
			renderPack(out, entry.Pack)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: table, json or yaml")
	return cmd
}

// resolveCacheKey accepts either a key or a 1-based number from 'cache list'.
// A key that exists verbatim takes precedence over a list number.
func resolveCacheKey(cmd *cobra.Command, cache *packcache.Cache, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if _, ok, err := cache.Lookup(cmd.Context(), arg); err != nil || ok {
		return arg, err
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return arg, nil
	}
	entries, err := cache.List(cmd.Context())
	if err != nil {
		return "", err
	}
	if n < 1 || n > len(entries) {
		return "", fmt.Errorf("entry number %d out of range (only %d entries exist)", n, len(entries))
	}
	return entries[n-1].Key, nil
}

func newCacheRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <number>",
		Short: "Remove a specific cache entry by number",
		Long: `Remove a specific cache entry by its number from 'packhub cache list'.

Example:
  packhub cache list        # Shows numbered list of cached packs
  packhub cache remove 2    # Removes entry #2 from the list`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var entryNum int
			if _, err := fmt.Sscanf(args[0], "%d", &entryNum); err != nil || entryNum < 1 {
				return fmt.Errorf("invalid entry number: %s (must be a positive integer)", args[0])
			}

			cache, err := ctx.requireCache(cmd.Context())
			if err != nil {
				return err
			}
			defer cache.Close()

			entry, err := api.RemoveCacheEntryByNumber(cmd.Context(), cache, entryNum)
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{
					"removed": true,
					"entry":   entryNum,
					"key":     entry.Key,
					"name":    entry.Name,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed pack cache entry %d (%s)\n", entryNum, entry.Name)
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cache entries",
		Long:  "Delete every decoded pack. The cache is repopulated as packs are decoded again.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.requireCache(cmd.Context())
			if err != nil {
				return err
			}
			defer cache.Close()

			count, err := cache.Count(cmd.Context())
			if err != nil {
				return err
			}
			if err := cache.Clear(cmd.Context()); err != nil {
				return err
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{"cleared": count})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d pack cache entries\n", count)
			return nil
		},
	}
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove entries older than cache.max_age_days",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cache, err := ctx.requireCache(cmd.Context())
			if err != nil {
				return err
			}
			defer cache.Close()

			removed, err := api.PruneCache(cmd.Context(), cfg, cache)
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{"pruned": removed, "max_age_days": cfg.Cache.MaxAgeDays})
			}
			if cfg.Cache.MaxAgeDays <= 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "cache.max_age_days is 0; nothing pruned")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d entries older than %d days\n", removed, cfg.Cache.MaxAgeDays)
			return nil
		},
	}
}
