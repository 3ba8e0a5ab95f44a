package relevance

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/niksmo/storefront/internal/core/domain"
)

const (
	tagEqualPoints         = 200
	tagContainsPoints      = 100
	materialEqualPoints    = 150
	materialContainsPoints = 75
	specsPoints            = 40
	attributesPoints       = 40
	featuredPoints         = 100
	inStockPoints          = 50
	imagePoints            = 25
	brandAffinityPoints    = 150
	brandAffinityMinTerm   = 3
	longNameLen            = 100
	longNamePenalty        = -20
)

// A textRule awards points for one product field. Zero points disable a
// match kind for that field.
type textRule struct {
	field    func(domain.Product) string
	equal    int
	prefix   int
	word     int
	contains int
}

var textRules = []textRule{
	{field: func(p domain.Product) string { return p.Name }, equal: 1000, prefix: 500, word: 300, contains: 150},
	{field: func(p domain.Product) string { return p.BrandName }, equal: 900, prefix: 450, word: 250, contains: 120},
	{field: func(p domain.Product) string { return p.SKU }, equal: 800, prefix: 400, contains: 100},
	{field: func(p domain.Product) string { return p.Manufacturer }, equal: 700, prefix: 350, contains: 60},
	{field: func(p domain.Product) string { return p.Description }, word: 200, contains: 80},
	{field: func(p domain.Product) string { return p.ShortDescription }, word: 180, contains: 70},
	{field: func(p domain.Product) string { return p.CategoryName }, contains: 50},
}

// A Scorer computes additive relevance scores for one normalised term.
type Scorer struct {
	term string
	word *regexp.Regexp
}

func NewScorer(term string) Scorer {
	return Scorer{
		term: term,
		word: regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `\b`),
	}
}

// Score sums every triggered rule and floors the total at zero.
func (s Scorer) Score(p domain.Product, t domain.ResultType) int {
	var score int

	for _, r := range textRules {
		score += s.scoreText(strings.ToLower(r.field(p)), r)
	}

	for _, tag := range p.Tags {
		score += s.scoreElem(tag, tagEqualPoints, tagContainsPoints)
	}
	for _, m := range p.Materials {
		score += s.scoreElem(m, materialEqualPoints, materialContainsPoints)
	}

	if s.contains(p.Specs) {
		score += specsPoints
	}
	if s.contains(p.Attributes) {
		score += attributesPoints
	}

	if p.Featured {
		score += featuredPoints
	}
	if p.StockQuantity > 0 {
		score += inStockPoints
	}
	if p.ImageURL != "" {
		score += imagePoints
	}

	if t == domain.ResultProduct &&
		utf8.RuneCountInString(s.term) >= brandAffinityMinTerm &&
		s.contains(p.BrandName) {
		score += brandAffinityPoints
	}

	if utf8.RuneCountInString(p.Name) > longNameLen {
		score += longNamePenalty
	}

	return max(score, 0)
}

func (s Scorer) scoreText(v string, r textRule) (score int) {
	if v == "" {
		return 0
	}
	if r.equal != 0 && v == s.term {
		score += r.equal
	}
	if r.prefix != 0 && strings.HasPrefix(v, s.term) {
		score += r.prefix
	}
	if r.word != 0 && s.word.MatchString(v) {
		score += r.word
	}
	if r.contains != 0 && strings.Contains(v, s.term) {
		score += r.contains
	}
	return score
}

func (s Scorer) scoreElem(v string, equal, contains int) (score int) {
	v = strings.ToLower(v)
	if v == s.term {
		score += equal
	}
	if strings.Contains(v, s.term) {
		score += contains
	}
	return score
}

func (s Scorer) contains(v string) bool {
	return v != "" && strings.Contains(strings.ToLower(v), s.term)
}
