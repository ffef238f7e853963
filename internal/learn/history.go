package learn

import (
	"github.com/shopspring/decimal"

	"github.com/yuhao-w/billtag/internal/model"
)

// amountTolerance is the maximum difference under which two amounts are
// considered the same entry when correcting the audit log.
var amountTolerance = decimal.New(1, -2)

// Log is the bounded, append-only audit log of classification decisions.
// It is not safe for concurrent use; the Engine serializes access.
type Log struct {
	entries []model.HistoryEntry
	max     int
}

// NewLog creates an empty log bounded to max entries.
func NewLog(max int) *Log {
	return &Log{max: max}
}

// NewLogFrom creates a log seeded with persisted entries, oldest first.
// Entries beyond the bound are dropped oldest-first.
func NewLogFrom(entries []model.HistoryEntry, max int) *Log {
	l := &Log{max: max}
	l.entries = append(l.entries, entries...)
	l.truncate()
	return l
}

// Append adds an entry, dropping the oldest if the log is at capacity.
func (l *Log) Append(entry model.HistoryEntry) {
	l.entries = append(l.entries, entry)
	l.truncate()
}

// RemoveMostRecentMatch deletes the newest entry matching the merchant,
// amount (within tolerance), bill source, and category, and reports
// whether one was found. At most one entry is removed.
func (l *Log) RemoveMostRecentMatch(merchant string, amount decimal.Decimal, billSource, category string) bool {
	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		if e.Merchant != merchant || e.BillSource != billSource || e.Category != category {
			continue
		}
		if e.Amount.Sub(amount).Abs().GreaterThanOrEqual(amountTolerance) {
			continue
		}
		l.entries = append(l.entries[:i], l.entries[i+1:]...)
		return true
	}
	return false
}

// Entries returns a copy of the log, oldest first.
func (l *Log) Entries() []model.HistoryEntry {
	out := make([]model.HistoryEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}

func (l *Log) truncate() {
	if l.max > 0 && len(l.entries) > l.max {
		l.entries = append(l.entries[:0:0], l.entries[len(l.entries)-l.max:]...)
	}
}
