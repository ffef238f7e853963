package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show rule store and history occupancy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}

			stats := engine.Statistics()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Rules:   %d / %d\n", stats.TotalRules, stats.MaxRules)
			fmt.Fprintf(out, "History: %d / %d\n", stats.TotalHistory, stats.MaxHistory)
			return nil
		},
	}
}
