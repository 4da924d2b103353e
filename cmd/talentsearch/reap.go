package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var reapMaxAge time.Duration

var reapCmd = &cobra.Command{
	Use:   "reap",
	Short: "Delete idle sessions once and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		maxAge := reapMaxAge
		if maxAge <= 0 {
			maxAge = cfg.Store.MaxAge
		}
		store, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Reap(cmd.Context(), maxAge)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d sessions idle for more than %s\n", n, maxAge)
		return nil
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the turn graph as a Mermaid flowchart",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()
		fmt.Fprint(cmd.OutOrStdout(), a.agent.Mermaid())
		return nil
	},
}

func init() {
	reapCmd.Flags().DurationVar(&reapMaxAge, "max-age", 0, "idle time after which a session is removed (default store.max_age)")
}
