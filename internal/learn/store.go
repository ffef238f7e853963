// Package learn implements the learning engine: the bounded rule store, its
// prefix index, suggestion ranking, decision recording, and the persistence
// cycle that ties them together.
package learn

import (
	"sort"

	"github.com/yuhao-w/billtag/internal/model"
)

// Store is the bounded merchant -> rule mapping. It is not safe for
// concurrent use; the Engine serializes access.
type Store struct {
	rules   map[string]*model.Rule
	seq     map[string]int
	manual  map[string]struct{}
	nextSeq int
}

// NewStore creates an empty rule store.
func NewStore() *Store {
	return &Store{
		rules:  make(map[string]*model.Rule),
		seq:    make(map[string]int),
		manual: make(map[string]struct{}),
	}
}

// NewStoreFrom creates a store seeded with persisted rules and the manual
// edit set. Rule order becomes the insertion order used to break eviction
// ties, so callers must pass rules in a deterministic order.
func NewStoreFrom(rules []model.Rule, manualEdits []string) *Store {
	s := NewStore()
	for i := range rules {
		r := rules[i]
		if r.Merchant == "" {
			continue
		}
		if r.UseCount < 1 {
			r.UseCount = 1
		}
		s.rules[r.Merchant] = &r
		s.seq[r.Merchant] = s.nextSeq
		s.nextSeq++
	}
	for _, merchant := range manualEdits {
		if merchant != "" {
			s.manual[merchant] = struct{}{}
		}
	}
	return s
}

// Get returns the rule for an exact merchant name.
func (s *Store) Get(merchant string) (model.Rule, bool) {
	r, ok := s.rules[merchant]
	if !ok {
		return model.Rule{}, false
	}
	return *r, true
}

// Upsert records one confirmation of merchant -> category and reports
// whether the merchant was newly inserted.
//
// A repeat of the stored category increments the use count. A different
// category normally replaces the stored one with the count reset to 1,
// since the count measures confidence in the current category. When the
// merchant carries a manual edit and the call is not itself a manual
// correction, the stored category is kept and only the count grows.
func (s *Store) Upsert(merchant, category string, isManualCorrection bool) bool {
	r, ok := s.rules[merchant]
	if !ok {
		s.rules[merchant] = &model.Rule{Merchant: merchant, Category: category, UseCount: 1}
		s.seq[merchant] = s.nextSeq
		s.nextSeq++
		return true
	}

	if r.Category == category {
		r.UseCount++
		return false
	}

	if s.IsManualEdit(merchant) && !isManualCorrection {
		r.UseCount++
		return false
	}

	r.Category = category
	r.UseCount = 1
	return false
}

// MarkManual adds a merchant to the manual edit set. Membership is sticky.
func (s *Store) MarkManual(merchant string) {
	s.manual[merchant] = struct{}{}
}

// IsManualEdit reports whether a merchant's category was human-corrected.
func (s *Store) IsManualEdit(merchant string) bool {
	_, ok := s.manual[merchant]
	return ok
}

// ManualEdits returns the manual edit set in sorted order.
func (s *Store) ManualEdits() []string {
	merchants := make([]string, 0, len(s.manual))
	for merchant := range s.manual {
		merchants = append(merchants, merchant)
	}
	sort.Strings(merchants)
	return merchants
}

// Len returns the number of stored rules.
func (s *Store) Len() int {
	return len(s.rules)
}

// Merchants returns all merchant names in insertion order.
func (s *Store) Merchants() []string {
	merchants := make([]string, 0, len(s.rules))
	for merchant := range s.rules {
		merchants = append(merchants, merchant)
	}
	sort.Slice(merchants, func(i, j int) bool {
		return s.seq[merchants[i]] < s.seq[merchants[j]]
	})
	return merchants
}

// Rules returns all rules ordered by descending use count, ties broken by
// insertion order. The head of the slice is the last to be evicted.
func (s *Store) Rules() []model.Rule {
	rules := make([]model.Rule, 0, len(s.rules))
	for _, r := range s.rules {
		rules = append(rules, *r)
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].UseCount != rules[j].UseCount {
			return rules[i].UseCount > rules[j].UseCount
		}
		return s.seq[rules[i].Merchant] < s.seq[rules[j].Merchant]
	})
	return rules
}

// EvictIfOverCapacity drops the least-used rules until at most maxRules
// remain, returning how many were evicted. Manual edit markers for evicted
// merchants are kept; the set is reset only by clearing the store.
func (s *Store) EvictIfOverCapacity(maxRules int) int {
	if maxRules <= 0 || len(s.rules) <= maxRules {
		return 0
	}

	ranked := s.Rules()
	evicted := ranked[maxRules:]
	for i := range evicted {
		delete(s.rules, evicted[i].Merchant)
		delete(s.seq, evicted[i].Merchant)
	}
	return len(evicted)
}
