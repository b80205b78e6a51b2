package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"episodegap/internal/config"
	"episodegap/internal/logging"
	"episodegap/internal/runner"
	"episodegap/internal/seriescache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the series metadata cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheRemoveCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func openCache(ctx *commandContext) (*config.Config, seriescache.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := seriescache.Open(cfg, logging.NewNop())
	if err != nil {
		return nil, nil, fmt.Errorf("open series cache: %w", err)
	}
	return cfg, store, nil
}

// withCacheLock runs fn with the run lock held so a concurrent report never
// sees entries disappear mid-show.
func withCacheLock(cfg *config.Config, fn func() error) error {
	lock, err := runner.AcquireLock(cfg.Cache.Dir)
	if err != nil {
		return err
	}
	defer lock.Unlock()
	return fn()
}

type cacheEntryOutput struct {
	ID        string    `json:"id"`
	WrittenAt time.Time `json:"written_at"`
	SizeBytes int64     `json:"size_bytes"`
	Stale     bool      `json:"stale"`
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached series",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := openCache(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List()
			if err != nil {
				return err
			}
			if jsonOutput {
				out := make([]cacheEntryOutput, 0, len(entries))
				for _, e := range entries {
					out = append(out, cacheEntryOutput{ID: e.ID, WrittenAt: e.WrittenAt.UTC(), SizeBytes: e.Size, Stale: e.Stale})
				}
				return writeJSON(cmd, out)
			}
			printCacheEntries(cmd.OutOrStdout(), cfg, entries)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printCacheEntries(out io.Writer, cfg *config.Config, entries []seriescache.Entry) {
	fmt.Fprintf(out, "Cache: %s (%s backend, %d day expiry)\n", cfg.Cache.Dir, cfg.Cache.Backend, cfg.Cache.ExpiryDays)
	if len(entries) == 0 {
		fmt.Fprintln(out, "Cached series: none")
		return
	}
	const stampLayout = "2006-01-02 15:04"
	rows := make([][]string, 0, len(entries))
	var total int64
	for _, entry := range entries {
		status := "fresh"
		if entry.Stale {
			status = "stale"
		}
		rows = append(rows, []string{
			entry.ID,
			entry.WrittenAt.Local().Format(stampLayout),
			humanize.Time(entry.WrittenAt),
			humanize.IBytes(uint64(entry.Size)),
			status,
		})
		total += entry.Size
	}
	fmt.Fprintln(out, renderTable(
		[]string{"TVDB ID", "Written", "Age", "Size", "Status"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
		[]string{fmt.Sprintf("%d series", len(entries)), "", "", humanize.IBytes(uint64(total)), ""},
	))
}

func newCacheRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <tvdb-id>...",
		Short: "Remove cached series so the next report refetches them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := openCache(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			return withCacheLock(cfg, func() error {
				out := cmd.OutOrStdout()
				for _, id := range args {
					if err := store.Remove(id); err != nil {
						return fmt.Errorf("remove %s: %w", id, err)
					}
					fmt.Fprintf(out, "Removed %s\n", id)
				}
				return nil
			})
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached series",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := openCache(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			return withCacheLock(cfg, func() error {
				removed, err := store.Clear()
				if err != nil {
					return err
				}
				if removed == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Cache already empty")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached series\n", removed)
				return nil
			})
		},
	}
}
