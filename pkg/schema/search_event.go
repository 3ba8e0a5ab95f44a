package schema

import (
	"time"

	"github.com/hamba/avro/v2"
)

const SearchEventSchemaTextV1 = `{
	"type": "record",
	"namespace": "storefront",
	"name": "search_event",
	"fields": [
		{"name": "id", "type": "string"},
		{"name": "kind", "type": "string"},
		{"name": "query", "type": "string"},
		{"name": "result_count", "type": "long"},
		{"name": "filters", "type": {
			"type": "record",
			"name": "search_filters",
			"fields": [
				{"name": "category", "type": "string"},
				{"name": "brand", "type": "string"},
				{"name": "price_min", "type": ["null", "string"], "default": null},
				{"name": "price_max", "type": ["null", "string"], "default": null},
				{"name": "stock_status", "type": "string"},
				{"name": "featured", "type": ["null", "boolean"], "default": null},
				{"name": "materials", "type": {"type": "array", "items": "string"}},
				{"name": "tags", "type": {"type": "array", "items": "string"}}
			]
		}},
		{"name": "selected_result", "type": "string"},
		{"name": "user_agent", "type": "string"},
		{"name": "timestamp", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

type (
	SearchEventV1 struct {
		ID             string          `avro:"id"`
		Kind           string          `avro:"kind"`
		Query          string          `avro:"query"`
		ResultCount    int64           `avro:"result_count"`
		Filters        SearchFiltersV1 `avro:"filters"`
		SelectedResult string          `avro:"selected_result"`
		UserAgent      string          `avro:"user_agent"`
		Timestamp      time.Time       `avro:"timestamp"`
	}

	SearchFiltersV1 struct {
		Category    string   `avro:"category"`
		Brand       string   `avro:"brand"`
		PriceMin    *string  `avro:"price_min"`
		PriceMax    *string  `avro:"price_max"`
		StockStatus string   `avro:"stock_status"`
		Featured    *bool    `avro:"featured"`
		Materials   []string `avro:"materials"`
		Tags        []string `avro:"tags"`
	}
)

// SearchEventV1Avro panics on an invalid schema text.
func SearchEventV1Avro() avro.Schema {
	return avro.MustParse(SearchEventSchemaTextV1)
}
