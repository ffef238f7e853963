package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// HistoryEntry is an immutable audit record of one classification decision.
// Amount is signed: expenses are negative, income positive.
type HistoryEntry struct {
	Timestamp  time.Time       `json:"timestamp"`
	ID         string          `json:"id,omitempty"`
	Merchant   string          `json:"merchant"`
	Category   string          `json:"category"`
	Person     string          `json:"person"`
	BillSource string          `json:"bill_source"`
	Amount     decimal.Decimal `json:"amount"`
}
