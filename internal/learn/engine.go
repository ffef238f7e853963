package learn

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yuhao-w/billtag/internal/common"
	"github.com/yuhao-w/billtag/internal/config"
	"github.com/yuhao-w/billtag/internal/model"
)

// Persister loads and saves engine state. Both calls are synchronous and
// invoked at most once per session boundary.
type Persister interface {
	Load() (model.Snapshot, error)
	Save(model.Snapshot) error
}

// Stats summarizes engine occupancy against its configured bounds.
type Stats struct {
	TotalRules   int
	TotalHistory int
	MaxRules     int
	MaxHistory   int
}

// Engine is the learning engine facade. All public methods are safe for
// concurrent use: reads take a shared lock, mutations an exclusive one.
type Engine struct {
	mu        sync.RWMutex
	cfg       config.Config
	store     *Store
	index     *PrefixIndex
	history   *Log
	suggester *Suggester
	persister Persister
}

// New constructs an engine from persisted state. A missing or corrupt
// persisted copy is a fresh start, never an error: the engine begins
// empty and logs what happened.
func New(cfg config.Config, persister Persister) *Engine {
	snap, err := persister.Load()
	if err != nil {
		common.LogWarn("Failed to load learning data, starting fresh", common.Fields{"error": err.Error()})
		snap = model.Snapshot{}
	}

	store := NewStoreFrom(snap.Rules, snap.ManualEdits)
	if evicted := store.EvictIfOverCapacity(cfg.MaxRules); evicted > 0 {
		common.LogInfo("Truncated persisted rules to capacity", common.Fields{
			"evicted":   evicted,
			"max_rules": cfg.MaxRules,
		})
	}

	index := NewPrefixIndex()
	index.Rebuild(store.Merchants())

	return &Engine{
		cfg:       cfg,
		store:     store,
		index:     index,
		history:   NewLogFrom(snap.History, cfg.MaxHistory),
		suggester: NewSuggester(store, index, cfg.SpecialTypes, cfg.SpecialTypeKeywords()),
		persister: persister,
	}
}

// Suggest returns ranked category suggestions for a merchant and
// transaction type. An empty result means no rule fired; callers fall
// back to the configured base categories.
func (e *Engine) Suggest(merchant, transactionType string) []model.Suggestion {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.suggester.Suggest(merchant, transactionType)
}

// Record learns from one classification decision and appends it to the
// audit log, returning the entry that was recorded. Manual corrections
// protect the merchant's category from automatic relearning and, when a
// prior category is named, remove the superseded audit entry.
func (e *Engine) Record(d model.Decision) model.HistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	inserted := e.store.Upsert(d.Merchant, d.Category, d.IsManualCorrection)
	if inserted {
		e.index.Register(d.Merchant)
	}
	if d.IsManualCorrection {
		e.store.MarkManual(d.Merchant)
		if d.PriorCategory != "" {
			e.history.RemoveMostRecentMatch(d.Merchant, d.Amount, d.BillSource, d.PriorCategory)
		}
	}

	entry := model.HistoryEntry{
		ID:         uuid.NewString(),
		Merchant:   d.Merchant,
		Category:   d.Category,
		Person:     d.Person,
		BillSource: d.BillSource,
		Amount:     d.Amount,
		Timestamp:  time.Now(),
	}
	e.history.Append(entry)

	if evicted := e.store.EvictIfOverCapacity(e.cfg.MaxRules); evicted > 0 {
		common.LogDebug("Evicted least-used rules", common.Fields{
			"evicted":   evicted,
			"max_rules": e.cfg.MaxRules,
		})
	}

	return entry
}

// Rule returns the stored rule for an exact merchant name.
func (e *Engine) Rule(merchant string) (model.Rule, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Get(merchant)
}

// IsManualEdit reports whether a merchant is protected by a manual
// correction.
func (e *Engine) IsManualEdit(merchant string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.IsManualEdit(merchant)
}

// Statistics reports current occupancy and configured bounds.
func (e *Engine) Statistics() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Stats{
		TotalRules:   e.store.Len(),
		TotalHistory: e.history.Len(),
		MaxRules:     e.cfg.MaxRules,
		MaxHistory:   e.cfg.MaxHistory,
	}
}

// BaseCategories returns the configured fallback category list.
func (e *Engine) BaseCategories() []string {
	out := make([]string, len(e.cfg.BaseCategories))
	copy(out, e.cfg.BaseCategories)
	return out
}

// SpecialTypes returns a copy of the keyword -> category override map.
func (e *Engine) SpecialTypes() map[string]string {
	out := make(map[string]string, len(e.cfg.SpecialTypes))
	for k, v := range e.cfg.SpecialTypes {
		out[k] = v
	}
	return out
}

// Save flushes the engine state through the persister. On failure the
// in-memory state is untouched and stays authoritative; the caller may
// retry.
func (e *Engine) Save() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.store.EvictIfOverCapacity(e.cfg.MaxRules)

	snap := model.Snapshot{
		Rules:       e.store.Rules(),
		ManualEdits: e.store.ManualEdits(),
		History:     e.history.Entries(),
	}

	if err := e.persister.Save(snap); err != nil {
		return fmt.Errorf("failed to save learning data: %w", err)
	}
	return nil
}
