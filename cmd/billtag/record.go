package main

import (
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/yuhao-w/billtag/internal/common"
	"github.com/yuhao-w/billtag/internal/model"
)

func recordCmd() *cobra.Command {
	var (
		category   string
		person     string
		billSource string
		amountStr  string
		manual     bool
		priorCat   string
	)

	cmd := &cobra.Command{
		Use:   "record <merchant>",
		Short: "Record a classification decision",
		Long: `Record one merchant -> category decision. The engine learns from it
and appends the decision to the audit history.

With --manual the decision is treated as a deliberate human correction:
the merchant's category is protected from automatic relearning, and
--prior-category removes the superseded history entry.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(amountStr)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amountStr, err)
			}

			engine, err := newEngine()
			if err != nil {
				return err
			}

			entry := engine.Record(model.Decision{
				Merchant:           args[0],
				Category:           category,
				Person:             person,
				BillSource:         billSource,
				Amount:             amount,
				IsManualCorrection: manual,
				PriorCategory:      priorCat,
			})

			// Save failures leave in-memory state intact, so retrying from
			// here is safe.
			err = retry.Do(
				engine.Save,
				retry.Attempts(3),
				retry.Delay(200*time.Millisecond),
				retry.LastErrorOnly(true),
				retry.OnRetry(func(attempt uint, err error) {
					common.LogWarn("Save failed, retrying", common.Fields{
						"attempt": attempt + 1,
						"error":   err.Error(),
					})
				}),
			)
			if err != nil {
				return fmt.Errorf("failed to save learning data: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s -> %s (%s)\n",
				entry.Merchant, entry.Category, entry.Amount.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "category to record (required)")
	cmd.Flags().StringVarP(&person, "person", "p", "", "person the transaction belongs to")
	cmd.Flags().StringVarP(&billSource, "source", "s", "", "bill source (e.g. 微信, 支付宝)")
	cmd.Flags().StringVarP(&amountStr, "amount", "a", "0", "signed transaction amount")
	cmd.Flags().BoolVar(&manual, "manual", false, "mark as a manual correction (protects the category)")
	cmd.Flags().StringVar(&priorCat, "prior-category", "", "category of the superseded decision to remove from history")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}
