package learn

import (
	"fmt"
	"strings"

	"github.com/yuhao-w/billtag/internal/model"
)

// Suggester produces ranked category suggestions for a merchant and
// transaction type. It reads the store and index without locking; the
// Engine serializes access.
type Suggester struct {
	store        *Store
	index        *PrefixIndex
	specialTypes map[string]string
	keywords     []string
}

// NewSuggester creates a suggester over a store and its index. Keywords
// must be the special-type keywords in the scan order the caller wants;
// the Engine passes them sorted for deterministic output.
func NewSuggester(store *Store, index *PrefixIndex, specialTypes map[string]string, keywords []string) *Suggester {
	return &Suggester{
		store:        store,
		index:        index,
		specialTypes: specialTypes,
		keywords:     keywords,
	}
}

// Suggest returns category suggestions in priority order with a
// human-readable reason each. Duplicate categories collapse to the first
// suggestion that produced them. An empty result means the caller should
// fall back to its configured base category list.
func (s *Suggester) Suggest(merchant, transactionType string) []model.Suggestion {
	// Special transaction types force a category regardless of history.
	for _, keyword := range s.keywords {
		if strings.Contains(transactionType, keyword) {
			return []model.Suggestion{{
				Category: s.specialTypes[keyword],
				Reason:   fmt.Sprintf("transaction type: %s", keyword),
			}}
		}
	}

	if strings.TrimSpace(merchant) == "" {
		return nil
	}

	var suggestions []model.Suggestion
	seen := make(map[string]bool)

	if rule, ok := s.store.Get(merchant); ok {
		seen[rule.Category] = true
		suggestions = append(suggestions, model.Suggestion{
			Category: rule.Category,
			Reason:   fmt.Sprintf("exact match: %s", merchant),
		})
	}

	// First fuzzy hit wins; the bucket is scanned in registration order.
	for _, candidate := range s.index.Lookup(merchant) {
		if !strings.Contains(merchant, candidate) && !strings.Contains(candidate, merchant) {
			continue
		}
		rule, ok := s.store.Get(candidate)
		if !ok {
			// Bucket entry for an evicted merchant.
			continue
		}
		if !seen[rule.Category] {
			suggestions = append(suggestions, model.Suggestion{
				Category: rule.Category,
				Reason:   fmt.Sprintf("similar merchant: %s", candidate),
			})
		}
		break
	}

	return suggestions
}
