package relevance

import (
	"strings"
	"testing"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestScorer(t *testing.T) {
	s := NewScorer("roor")

	t.Run("ExactName", func(t *testing.T) {
		p := domain.Product{ID: "1", Name: "ROOR"}
		// equal + prefix + word + contains
		assert.Equal(t, 1950, s.Score(p, domain.ResultProduct))
	})

	t.Run("ExactOutranksContains", func(t *testing.T) {
		exact := domain.Product{ID: "1", Name: "Roor"}
		contains := domain.Product{ID: "2", Name: "Mini Roorbong"}
		assert.Equal(t, 150, s.Score(contains, domain.ResultProduct))
		assert.Greater(t,
			s.Score(exact, domain.ResultProduct),
			s.Score(contains, domain.ResultProduct),
		)
	})

	t.Run("LongNamePenaltyFloorsAtZero", func(t *testing.T) {
		p := domain.Product{ID: "1", Name: strings.Repeat("x", 101)}
		assert.Equal(t, 0, s.Score(p, domain.ResultProduct))
	})

	t.Run("LongNamePenaltyApplied", func(t *testing.T) {
		p := domain.Product{ID: "1", Name: "roor " + strings.Repeat("x", 100)}
		assert.Equal(t, 500+300+150-20, s.Score(p, domain.ResultProduct))
	})

	t.Run("BrandAffinityOnlyForProducts", func(t *testing.T) {
		p := domain.Product{ID: "1", BrandName: "ROOR"}
		assert.Equal(t, 900+450+250+120+150, s.Score(p, domain.ResultProduct))
		assert.Equal(t, 900+450+250+120, s.Score(p, domain.ResultBrand))
	})

	t.Run("BrandAffinityNeedsThreeChars", func(t *testing.T) {
		short := NewScorer("ro")
		p := domain.Product{ID: "1", BrandName: "ROOR"}
		assert.Equal(t, 450+120, short.Score(p, domain.ResultProduct))
	})

	t.Run("SKUAndManufacturer", func(t *testing.T) {
		p := domain.Product{ID: "1", SKU: "ROOR-123", Manufacturer: "Roor Glass"}
		assert.Equal(t, 400+100+350+60, s.Score(p, domain.ResultProduct))
	})

	t.Run("DescriptionWholeWord", func(t *testing.T) {
		p := domain.Product{
			ID:               "1",
			Description:      "A classic roor tube",
			ShortDescription: "roorish",
		}
		assert.Equal(t, 200+80+70, s.Score(p, domain.ResultProduct))
	})

	t.Run("TagsAndMaterialsPerElement", func(t *testing.T) {
		p := domain.Product{
			ID:        "1",
			Tags:      []string{"Roor", "roor classic", "glass"},
			Materials: []string{"roor glass", "ROOR"},
		}
		want := (200 + 100) + 100 + 75 + (150 + 75)
		assert.Equal(t, want, s.Score(p, domain.ResultProduct))
	})

	t.Run("SerializedSpecsAndAttributes", func(t *testing.T) {
		p := domain.Product{
			ID:         "1",
			Specs:      `{"maker":"ROOR"}`,
			Attributes: `{"line":"roor tech"}`,
		}
		assert.Equal(t, 80, s.Score(p, domain.ResultProduct))
	})

	t.Run("CategoryContains", func(t *testing.T) {
		p := domain.Product{ID: "1", CategoryName: "Roor Tubes"}
		assert.Equal(t, 50, s.Score(p, domain.ResultCategory))
	})

	t.Run("MerchandisingBonuses", func(t *testing.T) {
		p := domain.Product{
			ID:            "1",
			Featured:      true,
			StockQuantity: 3,
			ImageURL:      "https://cdn/x.png",
		}
		assert.Equal(t, 100+50+25, s.Score(p, domain.ResultProduct))
	})

	t.Run("TermWithRegexpMeta", func(t *testing.T) {
		s := NewScorer("7.5mm")
		p := domain.Product{ID: "1", Name: "7x5mm"}
		assert.Equal(t, 0, s.Score(p, domain.ResultProduct))
	})
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "roor", Normalize("  ROOR \t"))
	assert.Equal(t, "", Normalize("   "))
	assert.False(t, Searchable(Normalize(" a ")))
	assert.False(t, Searchable(""))
	assert.True(t, Searchable("ab"))
}
