package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/satishgoda/watchtower/internal/fetchcache"
)

type cacheStatsOutput struct {
	Path    string     `json:"path"`
	Entries int        `json:"entries"`
	Bytes   int64      `json:"bytes"`
	Oldest  *time.Time `json:"oldest,omitempty"`
	Newest  *time.Time `json:"newest,omitempty"`
}

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or prune the response cache",
	}
	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))
	return cacheCmd
}

func (c *commandContext) openCache() (*fetchcache.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if c.cache == nil {
		store, err := fetchcache.Open(cfg)
		if err != nil {
			return nil, fmt.Errorf("open response cache: %w", err)
		}
		c.cache = store
	}
	return c.cache, nil
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache size and age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCache()
			if err != nil {
				return err
			}
			stats, err := store.Stats(commandContextOrBackground(cmd))
			if err != nil {
				return fmt.Errorf("cache stats: %w", err)
			}
			if ctx.jsonOutput() {
				out := cacheStatsOutput{Path: stats.Path, Entries: stats.Entries, Bytes: stats.Bytes}
				if !stats.Oldest.IsZero() {
					out.Oldest, out.Newest = &stats.Oldest, &stats.Newest
				}
				return writeJSON(cmd, out)
			}
			stdout := cmd.OutOrStdout()
			fmt.Fprintf(stdout, "Path:     %s\n", stats.Path)
			fmt.Fprintf(stdout, "Entries:  %d\n", stats.Entries)
			fmt.Fprintf(stdout, "Size:     %s\n", humanize.Bytes(uint64(max(stats.Bytes, 0))))
			if stats.Entries > 0 {
				fmt.Fprintf(stdout, "Oldest:   %s\n", humanize.Time(stats.Oldest))
				fmt.Fprintf(stdout, "Newest:   %s\n", humanize.Time(stats.Newest))
			}
			return nil
		},
	}
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	var maxAge time.Duration
	var all bool

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete cached responses older than --max-age (default: cache.max_age_hours)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openCache()
			if err != nil {
				return err
			}
			age := maxAge
			if age == 0 {
				age = time.Duration(cfg.Cache.MaxAgeHours) * time.Hour
			}
			if all {
				age = 0
			}
			removed, err := store.Prune(commandContextOrBackground(cmd), age)
			if err != nil {
				return fmt.Errorf("cache prune: %w", err)
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]int64{"removed": removed})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s cached responses\n", humanize.Comma(removed))
			return nil
		},
	}
	cmd.Flags().DurationVar(&maxAge, "max-age", 0, "Remove entries fetched longer ago than this")
	cmd.Flags().BoolVar(&all, "all", false, "Remove every entry")
	return cmd
}
