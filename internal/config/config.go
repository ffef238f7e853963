// Package config provides configuration for the learning engine and CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/yuhao-w/billtag/internal/common"
)

// Default capacity limits, matching the shipped configuration.
const (
	DefaultMaxRules   = 50000
	DefaultMaxHistory = 5000
)

// Config holds everything the learning engine and CLI need to run.
type Config struct {
	// RulesFile and HistoryFile are the JSON persistence paths.
	RulesFile   string
	HistoryFile string

	// MaxRules and MaxHistory bound the rule store and audit log.
	MaxRules   int
	MaxHistory int

	// BaseCategories is the fixed fallback list shown when the engine has
	// no suggestion for a merchant.
	BaseCategories []string

	// BillSources and PeopleOptions are the selectable dimensions attached
	// to every recorded decision.
	BillSources   []string
	PeopleOptions []string

	// SpecialTypes maps a transaction-type keyword to the category it
	// forces, overriding all merchant history.
	SpecialTypes map[string]string
}

// Default returns the built-in configuration. The category system mirrors
// the WeChat/Alipay bill workflow the tool was built around.
func Default() Config {
	return Config{
		RulesFile:   "bill_rules.json",
		HistoryFile: "bill_history.json",
		MaxRules:    DefaultMaxRules,
		MaxHistory:  DefaultMaxHistory,
		BaseCategories: []string{
			"餐饮", "出行", "住房贷款", "购物", "生活缴费", "娱乐", "医疗",
			"学习", "人情往来", "汽车", "投资", "其他消费", "工资", "其他",
			"父母", "党费", "运动", "其他收入", "旅游", "服务", "公积金",
			"贷款", "山姆&盒马", "水果&超市", "买菜",
		},
		BillSources:   []string{"微信", "支付宝", "银行", "现金", "其他"},
		PeopleOptions: []string{"男主人", "女主人", "家庭公用"},
		SpecialTypes: map[string]string{
			"转账":   "人情往来",
			"微信红包": "人情往来",
			"收付款":  "人情往来",
		},
	}
}

// Load builds the runtime configuration from Viper, falling back to the
// defaults for anything the config file does not set.
func Load() (Config, error) {
	cfg := Default()

	if v := viper.GetString("files.rules"); v != "" {
		cfg.RulesFile = ExpandPath(v)
	}
	if v := viper.GetString("files.history"); v != "" {
		cfg.HistoryFile = ExpandPath(v)
	}
	if v := viper.GetInt("limits.max_rules"); v > 0 {
		cfg.MaxRules = v
	}
	if v := viper.GetInt("limits.max_history"); v > 0 {
		cfg.MaxHistory = v
	}
	if v := viper.GetStringSlice("categories.base"); len(v) > 0 {
		cfg.BaseCategories = v
	}
	if v := viper.GetStringSlice("categories.bill_sources"); len(v) > 0 {
		cfg.BillSources = v
	}
	if v := viper.GetStringSlice("categories.people"); len(v) > 0 {
		cfg.PeopleOptions = v
	}
	if v := viper.GetStringMapString("categories.special_types"); len(v) > 0 {
		cfg.SpecialTypes = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the engine cannot run with.
func (c Config) Validate() error {
	if c.MaxRules <= 0 {
		return fmt.Errorf("%w: max_rules must be positive, got %d", common.ErrInvalidConfig, c.MaxRules)
	}
	if c.MaxHistory <= 0 {
		return fmt.Errorf("%w: max_history must be positive, got %d", common.ErrInvalidConfig, c.MaxHistory)
	}
	if c.RulesFile == "" || c.HistoryFile == "" {
		return fmt.Errorf("%w: rules and history file paths are required", common.ErrInvalidConfig)
	}
	for keyword, category := range c.SpecialTypes {
		if strings.TrimSpace(keyword) == "" || strings.TrimSpace(category) == "" {
			return fmt.Errorf("%w: special type mapping %q -> %q", common.ErrInvalidConfig, keyword, category)
		}
	}
	return nil
}

// SpecialTypeKeywords returns the configured keywords in sorted order so
// that suggestion output is deterministic.
func (c Config) SpecialTypeKeywords() []string {
	keywords := make([]string, 0, len(c.SpecialTypes))
	for keyword := range c.SpecialTypes {
		keywords = append(keywords, keyword)
	}
	sort.Strings(keywords)
	return keywords
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}
