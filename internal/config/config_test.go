package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultMaxRules, cfg.MaxRules)
	assert.Equal(t, DefaultMaxHistory, cfg.MaxHistory)
	assert.NotEmpty(t, cfg.BaseCategories)
	assert.Equal(t, "人情往来", cfg.SpecialTypes["转账"])
	require.NoError(t, cfg.Validate())
}

func TestLoad_OverridesFromViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("limits.max_rules", 123)
	viper.Set("limits.max_history", 45)
	viper.Set("files.rules", "my_rules.json")
	viper.Set("categories.base", []string{"餐饮", "出行"})
	viper.Set("categories.special_types", map[string]string{"转账": "人情往来"})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 123, cfg.MaxRules)
	assert.Equal(t, 45, cfg.MaxHistory)
	assert.Equal(t, "my_rules.json", cfg.RulesFile)
	assert.Equal(t, []string{"餐饮", "出行"}, cfg.BaseCategories)
	assert.Equal(t, map[string]string{"转账": "人情往来"}, cfg.SpecialTypes)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(_ *Config) {},
		},
		{
			name:    "zero max_rules",
			mutate:  func(c *Config) { c.MaxRules = 0 },
			wantErr: true,
		},
		{
			name:    "negative max_history",
			mutate:  func(c *Config) { c.MaxHistory = -1 },
			wantErr: true,
		},
		{
			name:    "missing rules file",
			mutate:  func(c *Config) { c.RulesFile = "" },
			wantErr: true,
		},
		{
			name:    "blank special type keyword",
			mutate:  func(c *Config) { c.SpecialTypes = map[string]string{" ": "人情往来"} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSpecialTypeKeywords_Sorted(t *testing.T) {
	cfg := Config{SpecialTypes: map[string]string{
		"收付款":  "人情往来",
		"转账":   "人情往来",
		"微信红包": "人情往来",
	}}

	assert.Equal(t, []string{"微信红包", "收付款", "转账"}, cfg.SpecialTypeKeywords())
}

func TestExpandPath(t *testing.T) {
	t.Setenv("BILLTAG_TEST_DIR", "/data")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, "/data/rules.json", ExpandPath("$BILLTAG_TEST_DIR/rules.json"))
	assert.NotContains(t, ExpandPath("~/rules.json"), "~")
}
