package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xajezade/tdd-bdd-final-project/internal/domain/product"
)

const (
	productColumns = "id, name, description, price, available, category"

	insertProductSQL = `INSERT INTO products (name, description, price, available, category)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	updateProductSQL = `UPDATE products
		SET name = $2, description = $3, price = $4, available = $5, category = $6
		WHERE id = $1`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`

	deleteAllProductsSQL = `DELETE FROM products`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY id`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create validates p and inserts it. The database assigns the identifier,
// which is written back to p; any identifier already set is discarded.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}

	p.ID = 0
	err := r.pool.QueryRow(ctx, insertProductSQL,
		p.Name, p.Description, p.Price, p.Available, p.Category.String(),
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.Name, err)
	}
	return nil
}

// CreateBatch validates every product and inserts them through the COPY
// protocol in one shot. Assigned identifiers are not reported back.
func (r *ProductRepository) CreateBatch(ctx context.Context, products []*product.Product) (int64, error) {
	rows := make([][]any, 0, len(products))
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return 0, err
		}
		rows = append(rows, []any{p.Name, p.Description, p.Price, p.Available, p.Category.String()})
	}

	n, err := r.pool.CopyFrom(ctx, pgx.Identifier{"products"},
		[]string{"name", "description", "price", "available", "category"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("bulk inserting products: %w", err)
	}
	return n, nil
}

// Update writes all value fields of the identified row. A product that was
// never persisted is rejected before storage is touched. Updating a row
// that no longer exists is not an error.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	if err := p.ValidateUpdate(); err != nil {
		return err
	}

	_, err := r.pool.Exec(ctx, updateProductSQL,
		p.ID, p.Name, p.Description, p.Price, p.Available, p.Category.String(),
	)
	if err != nil {
		return fmt.Errorf("updating product %d: %w", p.ID, err)
	}
	return nil
}

// Delete removes the identified row, if present.
func (r *ProductRepository) Delete(ctx context.Context, p *product.Product) error {
	if _, err := r.pool.Exec(ctx, deleteProductSQL, p.ID); err != nil {
		return fmt.Errorf("deleting product %d: %w", p.ID, err)
	}
	return nil
}

// DeleteAll removes every product.
func (r *ProductRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, deleteAllProductsSQL); err != nil {
		return fmt.Errorf("deleting all products: %w", err)
	}
	return nil
}

// All returns every product ordered by ID.
func (r *ProductRepository) All(ctx context.Context) ([]*product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Find returns the product with the given ID. Absence is reported through
// the boolean, not as an error.
func (r *ProductRepository) Find(ctx context.Context, id int64) (*product.Product, bool, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, false, fmt.Errorf("finding product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("finding product %d: %w", id, err)
	}
	return p, true, nil
}

// FindByName selects products whose name matches exactly.
func (r *ProductRepository) FindByName(name string) product.Query {
	return &productQuery{pool: r.pool, where: "name = $1", arg: name}
}

// FindByAvailability selects products by availability flag.
func (r *ProductRepository) FindByAvailability(available bool) product.Query {
	return &productQuery{pool: r.pool, where: "available = $1", arg: available}
}

// FindByCategory selects products in the given category.
func (r *ProductRepository) FindByCategory(category product.Category) product.Query {
	return &productQuery{pool: r.pool, where: "category = $1", arg: category.String()}
}

// FindByPrice selects products whose price equals the given decimal. The
// comparison happens on NUMERIC values, so "12.5" and "12.50" match the
// same rows.
func (r *ProductRepository) FindByPrice(price decimal.Decimal) product.Query {
	return &productQuery{pool: r.pool, where: "price = $1", arg: price}
}

// productQuery is a lazy single-condition selection over the products
// table. No SQL runs until Count, All, or Each is called.
type productQuery struct {
	pool  *pgxpool.Pool
	where string
	arg   any
}

func (q *productQuery) Count(ctx context.Context) (int64, error) {
	var n int64
	err := q.pool.QueryRow(ctx, "SELECT count(*) FROM products WHERE "+q.where, q.arg).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting products: %w", err)
	}
	return n, nil
}

func (q *productQuery) All(ctx context.Context) ([]*product.Product, error) {
	rows, err := q.pool.Query(ctx, q.selectSQL(), q.arg)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Each streams matching rows to fn without materializing the whole result.
func (q *productQuery) Each(ctx context.Context, fn func(p *product.Product) error) error {
	rows, err := q.pool.Query(ctx, q.selectSQL(), q.arg)
	if err != nil {
		return fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (q *productQuery) selectSQL() string {
	return "SELECT " + productColumns + " FROM products WHERE " + q.where + " ORDER BY id"
}

func scanProduct(row pgx.CollectableRow) (*product.Product, error) {
	var (
		p        product.Product
		price    decimal.Decimal
		category string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &p.Available, &category)
	if err != nil {
		return nil, err
	}
	p.Price = price

	c, err := product.ParseCategory(category)
	if err != nil {
		return nil, errors.Wrapf(err, "product %d", p.ID)
	}
	p.Category = c
	return &p, nil
}
