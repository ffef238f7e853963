package learn

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuhao-w/billtag/internal/model"
)

func TestStore_Upsert(t *testing.T) {
	tests := []struct {
		name         string
		setup        func(s *Store)
		merchant     string
		category     string
		isManual     bool
		wantInserted bool
		wantCategory string
		wantCount    int
	}{
		{
			name:         "first classification inserts with count 1",
			setup:        func(_ *Store) {},
			merchant:     "星巴克",
			category:     "餐饮",
			wantInserted: true,
			wantCategory: "餐饮",
			wantCount:    1,
		},
		{
			name: "repeat classification increments count",
			setup: func(s *Store) {
				s.Upsert("星巴克", "餐饮", false)
			},
			merchant:     "星巴克",
			category:     "餐饮",
			wantCategory: "餐饮",
			wantCount:    2,
		},
		{
			name: "category change resets count",
			setup: func(s *Store) {
				s.Upsert("星巴克", "餐饮", false)
				s.Upsert("星巴克", "餐饮", false)
				s.Upsert("星巴克", "餐饮", false)
			},
			merchant:     "星巴克",
			category:     "娱乐",
			wantCategory: "娱乐",
			wantCount:    1,
		},
		{
			name: "manual edit blocks automatic category change",
			setup: func(s *Store) {
				s.Upsert("星巴克", "餐饮", false)
				s.Upsert("星巴克", "娱乐", true)
				s.MarkManual("星巴克")
			},
			merchant:     "星巴克",
			category:     "餐饮",
			isManual:     false,
			wantCategory: "娱乐",
			wantCount:    2,
		},
		{
			name: "manual correction overrides manual edit protection",
			setup: func(s *Store) {
				s.Upsert("星巴克", "餐饮", false)
				s.Upsert("星巴克", "娱乐", true)
				s.MarkManual("星巴克")
			},
			merchant:     "星巴克",
			category:     "购物",
			isManual:     true,
			wantCategory: "购物",
			wantCount:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			tt.setup(s)

			inserted := s.Upsert(tt.merchant, tt.category, tt.isManual)
			assert.Equal(t, tt.wantInserted, inserted)

			rule, ok := s.Get(tt.merchant)
			require.True(t, ok)
			assert.Equal(t, tt.wantCategory, rule.Category)
			assert.Equal(t, tt.wantCount, rule.UseCount)
		})
	}
}

func TestStore_Get_Unknown(t *testing.T) {
	s := NewStore()
	_, ok := s.Get("nobody")
	assert.False(t, ok)
}

func TestStore_EvictIfOverCapacity(t *testing.T) {
	s := NewStore()
	for i := 0; i < 5; i++ {
		merchant := fmt.Sprintf("merchant-%d", i)
		s.Upsert(merchant, "购物", false)
		// merchant-i confirmed i additional times
		for j := 0; j < i; j++ {
			s.Upsert(merchant, "购物", false)
		}
	}

	evicted := s.EvictIfOverCapacity(3)
	assert.Equal(t, 2, evicted)
	assert.Equal(t, 3, s.Len())

	// Least-used dropped first.
	_, ok := s.Get("merchant-0")
	assert.False(t, ok)
	_, ok = s.Get("merchant-1")
	assert.False(t, ok)
	_, ok = s.Get("merchant-4")
	assert.True(t, ok)
}

func TestStore_EvictTieBreakIsInsertionOrder(t *testing.T) {
	s := NewStore()
	s.Upsert("alpha", "购物", false)
	s.Upsert("bravo", "购物", false)
	s.Upsert("charlie", "购物", false)

	evicted := s.EvictIfOverCapacity(2)
	assert.Equal(t, 1, evicted)

	// All counts equal: the newest insertion goes first.
	_, ok := s.Get("alpha")
	assert.True(t, ok)
	_, ok = s.Get("bravo")
	assert.True(t, ok)
	_, ok = s.Get("charlie")
	assert.False(t, ok)
}

func TestStore_EvictUnderCapacityIsNoop(t *testing.T) {
	s := NewStore()
	s.Upsert("alpha", "购物", false)

	assert.Equal(t, 0, s.EvictIfOverCapacity(10))
	assert.Equal(t, 1, s.Len())
}

func TestStore_ManualEditSurvivesEviction(t *testing.T) {
	s := NewStore()
	s.Upsert("alpha", "购物", true)
	s.MarkManual("alpha")
	s.Upsert("bravo", "餐饮", false)
	s.Upsert("bravo", "餐饮", false)

	s.EvictIfOverCapacity(1)

	_, ok := s.Get("alpha")
	require.False(t, ok)
	// Sticky until the store is reset.
	assert.True(t, s.IsManualEdit("alpha"))
}

func TestStore_RulesOrderedByUseCount(t *testing.T) {
	s := NewStoreFrom([]model.Rule{
		{Merchant: "alpha", Category: "购物", UseCount: 1},
		{Merchant: "bravo", Category: "餐饮", UseCount: 7},
		{Merchant: "charlie", Category: "出行", UseCount: 3},
	}, nil)

	rules := s.Rules()
	require.Len(t, rules, 3)
	assert.Equal(t, "bravo", rules[0].Merchant)
	assert.Equal(t, "charlie", rules[1].Merchant)
	assert.Equal(t, "alpha", rules[2].Merchant)
}

func TestNewStoreFrom_NormalizesBadCounts(t *testing.T) {
	s := NewStoreFrom([]model.Rule{
		{Merchant: "alpha", Category: "购物", UseCount: 0},
		{Merchant: "", Category: "餐饮", UseCount: 2},
	}, []string{"alpha", ""})

	assert.Equal(t, 1, s.Len())
	rule, ok := s.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, 1, rule.UseCount)
	assert.True(t, s.IsManualEdit("alpha"))
	assert.False(t, s.IsManualEdit(""))
}
