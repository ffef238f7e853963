package model

import "github.com/shopspring/decimal"

// Decision captures a single user classification to be learned from.
type Decision struct {
	Merchant   string
	Category   string
	Person     string
	BillSource string
	Amount     decimal.Decimal

	// IsManualCorrection marks the decision as a deliberate human override.
	// Corrected merchants are protected from automatic relearning.
	IsManualCorrection bool

	// PriorCategory, when set on a manual correction, identifies the
	// superseded history entry to remove from the audit log.
	PriorCategory string
}
