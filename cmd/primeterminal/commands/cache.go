package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the market data cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Drop every cached response",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.DataSource.CacheDir == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "cache is in-memory, nothing to purge")
			return nil
		}
		a, err := newApp(cfg, false)
		if err != nil {
			return err
		}
		defer a.Close()
		if a.cache == nil {
			return fmt.Errorf("cache unavailable")
		}
		if err := a.cache.Purge(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "purged %s\n", cfg.DataSource.CacheDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
}
