package learn

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuhao-w/billtag/internal/model"
)

func entry(merchant, category, source string, amount float64) model.HistoryEntry {
	return model.HistoryEntry{
		Merchant:   merchant,
		Category:   category,
		BillSource: source,
		Amount:     decimal.NewFromFloat(amount),
		Timestamp:  time.Now(),
	}
}

func TestLog_AppendTruncatesOldest(t *testing.T) {
	l := NewLog(3)
	for i := 0; i < 5; i++ {
		l.Append(entry(fmt.Sprintf("m-%d", i), "餐饮", "微信", -10))
	}

	require.Equal(t, 3, l.Len())
	entries := l.Entries()
	assert.Equal(t, "m-2", entries[0].Merchant)
	assert.Equal(t, "m-4", entries[2].Merchant)
}

func TestNewLogFrom_TruncatesToNewest(t *testing.T) {
	seed := []model.HistoryEntry{
		entry("m-0", "餐饮", "微信", -10),
		entry("m-1", "餐饮", "微信", -10),
		entry("m-2", "餐饮", "微信", -10),
	}

	l := NewLogFrom(seed, 2)
	require.Equal(t, 2, l.Len())
	assert.Equal(t, "m-1", l.Entries()[0].Merchant)
}

func TestLog_RemoveMostRecentMatch(t *testing.T) {
	tests := []struct {
		name        string
		seed        []model.HistoryEntry
		merchant    string
		amount      float64
		source      string
		category    string
		wantRemoved bool
		wantLen     int
	}{
		{
			name: "removes the newest matching entry only",
			seed: []model.HistoryEntry{
				entry("星巴克", "餐饮", "微信", -32),
				entry("星巴克", "餐饮", "微信", -32),
			},
			merchant:    "星巴克",
			amount:      -32,
			source:      "微信",
			category:    "餐饮",
			wantRemoved: true,
			wantLen:     1,
		},
		{
			name: "amount within tolerance matches",
			seed: []model.HistoryEntry{
				entry("星巴克", "餐饮", "微信", -32.004),
			},
			merchant:    "星巴克",
			amount:      -32,
			source:      "微信",
			category:    "餐饮",
			wantRemoved: true,
			wantLen:     0,
		},
		{
			name: "amount outside tolerance does not match",
			seed: []model.HistoryEntry{
				entry("星巴克", "餐饮", "微信", -32.02),
			},
			merchant:    "星巴克",
			amount:      -32,
			source:      "微信",
			category:    "餐饮",
			wantRemoved: false,
			wantLen:     1,
		},
		{
			name: "different bill source does not match",
			seed: []model.HistoryEntry{
				entry("星巴克", "餐饮", "支付宝", -32),
			},
			merchant:    "星巴克",
			amount:      -32,
			source:      "微信",
			category:    "餐饮",
			wantRemoved: false,
			wantLen:     1,
		},
		{
			name:        "empty log is a no-op",
			merchant:    "星巴克",
			amount:      -32,
			source:      "微信",
			category:    "餐饮",
			wantRemoved: false,
			wantLen:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLogFrom(tt.seed, 100)
			removed := l.RemoveMostRecentMatch(tt.merchant, decimal.NewFromFloat(tt.amount), tt.source, tt.category)
			assert.Equal(t, tt.wantRemoved, removed)
			assert.Equal(t, tt.wantLen, l.Len())
		})
	}
}

func TestLog_RemoveKeepsOlderSiblingIntact(t *testing.T) {
	first := entry("星巴克", "餐饮", "微信", -32)
	first.Person = "家庭公用"
	second := entry("星巴克", "餐饮", "微信", -32)
	second.Person = "男主人"

	l := NewLogFrom([]model.HistoryEntry{first, second}, 100)
	require.True(t, l.RemoveMostRecentMatch("星巴克", decimal.NewFromFloat(-32), "微信", "餐饮"))

	entries := l.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "家庭公用", entries[0].Person)
}
