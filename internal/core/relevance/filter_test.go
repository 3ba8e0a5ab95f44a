package relevance

import (
	"testing"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func testClassifier() domain.Classifier {
	return domain.Classifier{
		Categories: domain.RuleSet{
			Version: "test-1",
			Rules: []domain.KeywordRule{
				{Label: "bongs", Keywords: []string{"bong", "beaker"}},
				{Label: "pipes", Keywords: []string{"pipe", "spoon"}},
			},
		},
		Brands: domain.RuleSet{
			Version: "test-1",
			Rules: []domain.KeywordRule{
				{Label: "ROOR", Keywords: []string{"roor"}},
			},
		},
	}
}

func TestFilter(t *testing.T) {
	products := []domain.Product{
		{ID: "1", Name: "Beaker Base", Price: decimal.NewFromInt(5), StockQuantity: 0},
		{ID: "2", Name: "Glass Spoon Pipe", Price: decimal.NewFromInt(10), StockQuantity: 3, Featured: true},
		{ID: "3", Name: "Roor Straight", Price: decimal.NewFromInt(20), StockQuantity: 25, Tags: []string{"Heady Glass"}},
		{ID: "4", Name: "Grinder", Price: decimal.RequireFromString("20.01"), StockQuantity: 1, Materials: []string{"Aluminium"}},
	}

	ids := func(ps []domain.Product) (out []string) {
		for _, p := range ps {
			out = append(out, p.ID)
		}
		return out
	}

	t.Run("NoConstraints", func(t *testing.T) {
		f := NewFilter(domain.SearchFilters{}, testClassifier())
		assert.Len(t, f.Apply(products), len(products))
	})

	t.Run("PriceRangeInclusive", func(t *testing.T) {
		f := NewFilter(domain.SearchFilters{
			PriceMin: dec("10"), PriceMax: dec("20"),
		}, testClassifier())
		got := f.Apply(products)
		assert.Equal(t, []string{"2", "3"}, ids(got))
		for _, p := range got {
			assert.True(t, p.Price.GreaterThanOrEqual(decimal.NewFromInt(10)))
			assert.True(t, p.Price.LessThanOrEqual(decimal.NewFromInt(20)))
		}
	})

	t.Run("StockBuckets", func(t *testing.T) {
		cases := map[domain.StockStatus][]string{
			domain.StockAll:  {"1", "2", "3", "4"},
			domain.StockIn:   {"2", "3", "4"},
			domain.StockOut:  {"1"},
			domain.StockLow:  {"2", "4"},
			domain.StockHigh: {"3"},
		}
		for status, want := range cases {
			f := NewFilter(domain.SearchFilters{StockStatus: status}, testClassifier())
			assert.Equal(t, want, ids(f.Apply(products)), status)
		}
	})

	t.Run("Featured", func(t *testing.T) {
		yes := true
		f := NewFilter(domain.SearchFilters{Featured: &yes}, testClassifier())
		assert.Equal(t, []string{"2"}, ids(f.Apply(products)))
	})

	t.Run("TagsAndMaterialsSubstring", func(t *testing.T) {
		f := NewFilter(domain.SearchFilters{Tags: []string{"heady"}}, testClassifier())
		assert.Equal(t, []string{"3"}, ids(f.Apply(products)))

		f = NewFilter(domain.SearchFilters{Materials: []string{"wood", "ALUMIN"}}, testClassifier())
		assert.Equal(t, []string{"4"}, ids(f.Apply(products)))
	})

	t.Run("DetectedCategoryAndBrand", func(t *testing.T) {
		f := NewFilter(domain.SearchFilters{Category: "bongs"}, testClassifier())
		assert.Equal(t, []string{"1"}, ids(f.Apply(products)))

		f = NewFilter(domain.SearchFilters{Brand: "roor"}, testClassifier())
		assert.Equal(t, []string{"3"}, ids(f.Apply(products)))
	})

	t.Run("CategoryField", func(t *testing.T) {
		p := domain.Product{ID: "9", Name: "Thing", CategoryName: "Dab Rigs"}
		f := NewFilter(domain.SearchFilters{Category: "rigs"}, testClassifier())
		require.True(t, f.Keep(p))
	})
}

func TestRuleSetFirstMatchWins(t *testing.T) {
	rs := testClassifier().Categories

	label, ok := rs.Detect("Spoon Bong Hybrid")
	require.True(t, ok)
	assert.Equal(t, "bongs", label)

	reordered := domain.RuleSet{Rules: []domain.KeywordRule{rs.Rules[1], rs.Rules[0]}}
	label, ok = reordered.Detect("Spoon Bong Hybrid")
	require.True(t, ok)
	assert.Equal(t, "pipes", label)

	_, ok = rs.Detect("Rolling Tray")
	assert.False(t, ok)
}
