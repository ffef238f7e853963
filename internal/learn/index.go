package learn

import "strings"

// prefixLength is the number of leading runes used as the fuzzy-lookup key.
const prefixLength = 3

// PrefixIndex buckets merchant names by the lowercase of their first three
// runes, narrowing fuzzy matching to plausible candidates. Merchants shorter
// than three runes are never indexed and so are only ever exact-matched.
type PrefixIndex struct {
	buckets map[string][]string
}

// NewPrefixIndex creates an empty index.
func NewPrefixIndex() *PrefixIndex {
	return &PrefixIndex{buckets: make(map[string][]string)}
}

// IndexKey returns the lookup key for a merchant name. The second return
// is false for names too short to index.
func IndexKey(merchant string) (string, bool) {
	runes := []rune(merchant)
	if len(runes) < prefixLength {
		return "", false
	}
	return strings.ToLower(string(runes[:prefixLength])), true
}

// Register appends a merchant to its bucket. Duplicate entries are
// tolerated; lookups must not depend on bucket uniqueness.
func (ix *PrefixIndex) Register(merchant string) {
	key, ok := IndexKey(merchant)
	if !ok {
		return
	}
	ix.buckets[key] = append(ix.buckets[key], merchant)
}

// Lookup returns the candidate merchants sharing a prefix key with the
// given name, in registration order.
func (ix *PrefixIndex) Lookup(merchant string) []string {
	key, ok := IndexKey(merchant)
	if !ok {
		return nil
	}
	return ix.buckets[key]
}

// Rebuild replaces the index contents from a full merchant list.
func (ix *PrefixIndex) Rebuild(merchants []string) {
	ix.buckets = make(map[string][]string)
	for _, merchant := range merchants {
		ix.Register(merchant)
	}
}
