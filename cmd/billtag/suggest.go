package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func suggestCmd() *cobra.Command {
	var transactionType string

	cmd := &cobra.Command{
		Use:   "suggest <merchant>",
		Short: "Show category suggestions for a merchant",
		Long: `Show ranked category suggestions for a merchant based on learned
rules. Special transaction types (e.g. transfers) force their mapped
category; otherwise exact and fuzzy merchant matches apply.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}

			merchant := args[0]
			suggestions := engine.Suggest(merchant, transactionType)

			out := cmd.OutOrStdout()
			if len(suggestions) == 0 {
				fmt.Fprintf(out, "No suggestions for %q; base categories:\n", merchant)
				for i, category := range engine.BaseCategories() {
					fmt.Fprintf(out, "  %d. %s\n", i+1, category)
				}
				return nil
			}

			fmt.Fprintf(out, "Suggestions for %q:\n", merchant)
			for i, s := range suggestions {
				fmt.Fprintf(out, "  %d. %s (%s)\n", i+1, s.Category, s.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&transactionType, "type", "", "transaction type from the bill (enables special-type overrides)")

	return cmd
}
