package model

// Snapshot is the full persistable state of the learning engine: the rule
// store ordered by eviction priority (most-kept first), the sticky manual
// edit set, and the audit log oldest-first.
type Snapshot struct {
	Rules       []Rule
	ManualEdits []string
	History     []HistoryEntry
}
