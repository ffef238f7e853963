// Package storage persists learning engine state to JSON files on disk.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yuhao-w/billtag/internal/common"
	"github.com/yuhao-w/billtag/internal/config"
	"github.com/yuhao-w/billtag/internal/model"
)

// formatVersion identifies the rules file layout.
const formatVersion = "2.0"

func init() {
	// History files store amounts as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// JSONStore reads and writes the rules and history files. Writes go to a
// temporary file in the same directory and are renamed into place, so a
// crash mid-write never corrupts the previous copy.
type JSONStore struct {
	cfg config.Config
}

// NewJSONStore creates a store bound to the paths and limits in cfg.
func NewJSONStore(cfg config.Config) *JSONStore {
	return &JSONStore{cfg: cfg}
}

// rulesDocument is the on-disk shape of the rules file.
type rulesDocument struct {
	Version           string               `json:"version"`
	SaveTime          string               `json:"save_time"`
	TotalRules        int                  `json:"total_rules"`
	Rules             map[string]ruleValue `json:"rules"`
	ManualEditedRules []string             `json:"manual_edited_rules"`
	Metadata          metadata             `json:"metadata"`
}

type metadata struct {
	Categories categoryMetadata `json:"categories"`
}

type categoryMetadata struct {
	SpecialTypes   map[string]string `json:"special_types"`
	BaseCategories []string          `json:"base_categories"`
	BillSources    []string          `json:"bill_sources"`
	PeopleOptions  []string          `json:"people_options"`
}

// ruleValue is the [category, use_count] pair a rule serializes to.
// Legacy files sometimes hold a bare category string; those are upgraded
// to a use count of 1 at decode time.
type ruleValue struct {
	Category string
	UseCount int
}

// MarshalJSON encodes the rule as a two-element array.
func (v ruleValue) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{v.Category, v.UseCount})
}

// UnmarshalJSON accepts both the [category, count] array and the legacy
// bare string shape.
func (v *ruleValue) UnmarshalJSON(data []byte) error {
	var category string
	if err := json.Unmarshal(data, &category); err == nil {
		v.Category = category
		v.UseCount = 1
		return nil
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("%w: rule value is neither string nor array", common.ErrCorruptState)
	}
	if len(parts) == 0 {
		return fmt.Errorf("%w: empty rule value", common.ErrCorruptState)
	}
	if err := json.Unmarshal(parts[0], &v.Category); err != nil {
		return fmt.Errorf("%w: rule category is not a string", common.ErrCorruptState)
	}
	v.UseCount = 1
	if len(parts) > 1 {
		var count int
		if err := json.Unmarshal(parts[1], &count); err == nil && count > 0 {
			v.UseCount = count
		}
	}
	return nil
}

// Load reads the persisted rules and history. A missing or malformed file
// yields the corresponding empty state: the session starts fresh rather
// than failing. Both structures are truncated to the configured bounds,
// rules keeping the highest use counts and history the newest entries.
func (s *JSONStore) Load() (model.Snapshot, error) {
	rules, manualEdits := s.loadRulesAndEdits()
	return model.Snapshot{
		Rules:       rules,
		ManualEdits: manualEdits,
		History:     s.loadHistory(),
	}, nil
}

func (s *JSONStore) loadRulesAndEdits() ([]model.Rule, []string) {
	data, err := os.ReadFile(s.cfg.RulesFile)
	if err != nil {
		if !os.IsNotExist(err) {
			common.LogWarn("Failed to read rules file", common.Fields{
				"path":  s.cfg.RulesFile,
				"error": err.Error(),
			})
		}
		return nil, nil
	}

	var doc rulesDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		common.LogWarn("Rules file is corrupt, starting with empty rules", common.Fields{
			"path":  s.cfg.RulesFile,
			"error": err.Error(),
		})
		return nil, nil
	}

	rules := make([]model.Rule, 0, len(doc.Rules))
	for merchant, v := range doc.Rules {
		rules = append(rules, model.Rule{
			Merchant: merchant,
			Category: v.Category,
			UseCount: v.UseCount,
		})
	}
	// JSON objects carry no order; rank by use count with name ties so
	// reloads are deterministic and truncation keeps the most-used rules.
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].UseCount != rules[j].UseCount {
			return rules[i].UseCount > rules[j].UseCount
		}
		return rules[i].Merchant < rules[j].Merchant
	})
	if len(rules) > s.cfg.MaxRules {
		common.LogWarn("Too many persisted rules, keeping the most used", common.Fields{
			"persisted": len(rules),
			"max_rules": s.cfg.MaxRules,
		})
		rules = rules[:s.cfg.MaxRules]
	}

	return rules, doc.ManualEditedRules
}

func (s *JSONStore) loadHistory() []model.HistoryEntry {
	data, err := os.ReadFile(s.cfg.HistoryFile)
	if err != nil {
		if !os.IsNotExist(err) {
			common.LogWarn("Failed to read history file", common.Fields{
				"path":  s.cfg.HistoryFile,
				"error": err.Error(),
			})
		}
		return nil
	}

	var entries []model.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		common.LogWarn("History file is corrupt, starting with empty history", common.Fields{
			"path":  s.cfg.HistoryFile,
			"error": err.Error(),
		})
		return nil
	}

	if len(entries) > s.cfg.MaxHistory {
		entries = entries[len(entries)-s.cfg.MaxHistory:]
	}
	return entries
}

// Save writes the snapshot to disk. Bounds are applied again defensively:
// snapshot rules arrive ordered by eviction priority, so truncation keeps
// the head; history keeps the newest entries.
func (s *JSONStore) Save(snap model.Snapshot) error {
	rules := snap.Rules
	if len(rules) > s.cfg.MaxRules {
		rules = rules[:s.cfg.MaxRules]
	}
	history := snap.History
	if len(history) > s.cfg.MaxHistory {
		history = history[len(history)-s.cfg.MaxHistory:]
	}

	doc := rulesDocument{
		Version:           formatVersion,
		SaveTime:          time.Now().Format(time.RFC3339),
		TotalRules:        len(rules),
		Rules:             make(map[string]ruleValue, len(rules)),
		ManualEditedRules: snap.ManualEdits,
		Metadata: metadata{
			Categories: categoryMetadata{
				BaseCategories: s.cfg.BaseCategories,
				BillSources:    s.cfg.BillSources,
				PeopleOptions:  s.cfg.PeopleOptions,
				SpecialTypes:   s.cfg.SpecialTypes,
			},
		},
	}
	for _, r := range rules {
		doc.Rules[r.Merchant] = ruleValue{Category: r.Category, UseCount: r.UseCount}
	}

	rulesData, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode rules: %w", err)
	}
	historyData, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	if err := writeFileAtomic(s.cfg.RulesFile, rulesData); err != nil {
		return fmt.Errorf("failed to write rules file: %w", err)
	}
	if err := writeFileAtomic(s.cfg.HistoryFile, historyData); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}

	common.LogInfo("Saved learning data", common.Fields{
		"rules":   len(rules),
		"history": len(history),
		"path":    s.cfg.RulesFile,
	})
	return nil
}

// writeFileAtomic writes data to a temporary file in the target directory
// and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to set file mode: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
