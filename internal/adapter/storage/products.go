package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.ProductsStorage = (*ProductsRepository)(nil)

const productColumns = `
	id, name, COALESCE(brand_name, ''), price,
	COALESCE(image_url, ''), COALESCE(description, ''),
	COALESCE(short_description, ''), COALESCE(sku, ''),
	featured, stock_quantity, tags, materials,
	COALESCE(category_name, ''), COALESCE(manufacturer, ''),
	COALESCE(specs::text, ''), COALESCE(attributes::text, '')`

// compliantPredicate hides inactive and regulated products from every
// storefront read.
const compliantPredicate = `
	is_active = true AND nicotine_product = false AND tobacco_product = false`

var searchColumns = []string{
	"name",
	"brand_name",
	"sku",
	"description",
	"short_description",
	"manufacturer",
	"category_name",
	"long_description",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type ProductsRepository struct {
	sqldb sqldb
}

func NewProductsRepository(sqldb sqldb) ProductsRepository {
	return ProductsRepository{sqldb}
}

func (r ProductsRepository) FindCandidates(
	ctx context.Context, q domain.CandidateQuery,
) ([]domain.Product, error) {
	const op = "ProductsRepository.FindCandidates"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query, args := buildCandidateQuery(q)
	ps, err := r.queryProducts(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

func (r ProductsRepository) ListCatalog(
	ctx context.Context, limit int,
) ([]domain.Product, error) {
	const op = "ProductsRepository.ListCatalog"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT ` + productColumns + `
		FROM products
		WHERE ` + compliantPredicate + `
		ORDER BY id ASC LIMIT $1;`

	ps, err := r.queryProducts(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

func (r ProductsRepository) FindBrands(
	ctx context.Context, term string, limit int,
) ([]domain.Brand, error) {
	const op = "ProductsRepository.FindBrands"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		SELECT id, name, COALESCE(description, ''), COALESCE(logo_url, '')
		FROM brands
		WHERE name ILIKE $1 ORDER BY name ASC, id ASC LIMIT $2;`

	rows, err := r.sqldb.QueryContext(ctx, query, likePattern(term), limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var bs []domain.Brand
	for rows.Next() {
		var b domain.Brand
		err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.LogoURL)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		bs = append(bs, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return bs, nil
}

func (r ProductsRepository) FindCategories(
	ctx context.Context, term string, limit int,
) ([]domain.Category, error) {
	const op = "ProductsRepository.FindCategories"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		SELECT id, name, COALESCE(description, ''), COALESCE(image_url, '')
		FROM categories
		WHERE name ILIKE $1 ORDER BY name ASC, id ASC LIMIT $2;`

	rows, err := r.sqldb.QueryContext(ctx, query, likePattern(term), limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var cs []domain.Category
	for rows.Next() {
		var c domain.Category
		err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.ImageURL)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		cs = append(cs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cs, nil
}

func (r ProductsRepository) queryProducts(
	ctx context.Context, query string, args ...any,
) ([]domain.Product, error) {
	rows, err := r.sqldb.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// array columns need pgtype scanners behind database/sql
	typeMap := pgtype.NewMap()

	var ps []domain.Product
	for rows.Next() {
		var p domain.Product
		err := rows.Scan(
			&p.ID, &p.Name, &p.BrandName, &p.Price,
			&p.ImageURL, &p.Description,
			&p.ShortDescription, &p.SKU,
			&p.Featured, &p.StockQuantity,
			typeMap.SQLScanner(&p.Tags), typeMap.SQLScanner(&p.Materials),
			&p.CategoryName, &p.Manufacturer,
			&p.Specs, &p.Attributes,
		)
		if err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ps, nil
}

func buildCandidateQuery(q domain.CandidateQuery) (string, []any) {
	args := []any{likePattern(q.Term)}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	var b strings.Builder
	b.WriteString("SELECT " + productColumns + "\n\tFROM products\n\tWHERE")
	b.WriteString(compliantPredicate)

	b.WriteString("\n\tAND (")
	for i, col := range searchColumns {
		if i != 0 {
			b.WriteString(" OR ")
		}
		b.WriteString(col + " ILIKE $1")
	}
	b.WriteString(")")

	if lo, hi, ok := q.StockStatus.Range(); ok {
		if lo != nil {
			b.WriteString("\n\tAND stock_quantity >= " + arg(*lo))
		}
		if hi != nil {
			b.WriteString("\n\tAND stock_quantity <= " + arg(*hi))
		}
	}

	if q.Featured != nil {
		b.WriteString("\n\tAND featured = " + arg(*q.Featured))
	}

	b.WriteString("\n\tORDER BY id ASC LIMIT " + arg(q.Limit) + ";")
	return b.String(), args
}

func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
