package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List configured categories and special-type overrides",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Base categories:")
			for i, category := range engine.BaseCategories() {
				fmt.Fprintf(out, "  %d. %s\n", i+1, category)
			}

			special := engine.SpecialTypes()
			if len(special) == 0 {
				return nil
			}
			keywords := make([]string, 0, len(special))
			for keyword := range special {
				keywords = append(keywords, keyword)
			}
			sort.Strings(keywords)

			fmt.Fprintln(out, "\nSpecial transaction types:")
			for _, keyword := range keywords {
				fmt.Fprintf(out, "  %s -> %s\n", keyword, special[keyword])
			}
			return nil
		},
	}
}
