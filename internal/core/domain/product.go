package domain

import "github.com/shopspring/decimal"

// A Product is a read-only projection of a product store row.
//
// Compliance flags are applied by the store read and never reach the core.
type Product struct {
	ID               string
	Name             string
	BrandName        string
	Price            decimal.Decimal
	ImageURL         string
	Description      string
	ShortDescription string
	SKU              string
	Featured         bool
	StockQuantity    int
	Tags             []string
	Materials        []string
	CategoryName     string
	Manufacturer     string
	Specs            string
	Attributes       string
}

type Brand struct {
	ID          string
	Name        string
	Description string
	LogoURL     string
}

type Category struct {
	ID          string
	Name        string
	Description string
	ImageURL    string
}

// ProductFromBrand zero-fills a brand into the product shape so brands are
// scored and ranked next to products.
func ProductFromBrand(b Brand) Product {
	return Product{
		ID:          b.ID,
		Name:        b.Name,
		BrandName:   b.Name,
		Description: b.Description,
		ImageURL:    b.LogoURL,
	}
}

// ProductFromCategory zero-fills a category into the product shape.
func ProductFromCategory(c Category) Product {
	return Product{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		ImageURL:     c.ImageURL,
		CategoryName: c.Name,
	}
}
