package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the result cache",
		Args:  cobra.NoArgs,
	}

	cacheStatsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show cache size and hit counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openCache()
			if err != nil {
				return err
			}
			defer store.Close() //nolint:errcheck

			stats := store.Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Entries:   %d\n", stats.ItemCount)
			fmt.Fprintf(out, "Size:      %s", humanize.IBytes(uint64(stats.Size))) //nolint:gosec
			if stats.Capacity > 0 {
				fmt.Fprintf(out, " of %s", humanize.IBytes(uint64(stats.Capacity))) //nolint:gosec
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Hits:      %d\n", stats.Hits)
			fmt.Fprintf(out, "Misses:    %d\n", stats.Misses)
			fmt.Fprintf(out, "Evictions: %d\n", stats.Evictions)
			fmt.Fprintf(out, "Hit rate:  %.1f%%\n", stats.HitRate()*100)
			return nil
		},
	}

	cacheClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached WAV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openCache()
			if err != nil {
				return err
			}
			defer store.Close() //nolint:errcheck

			if err := store.Clear(); err != nil {
				return fmt.Errorf("unable to clear cache: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
			return nil
		},
	}
)

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
}
