// Package inmemory keeps the product catalog in process memory. It backs
// unit tests and works as a lightweight stand-in for PostgreSQL.
package inmemory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/xajezade/tdd-bdd-final-project/internal/domain/product"
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository over a map. All methods
// are safe for concurrent use. The repository stores and returns detached
// copies, so mutating an entity after a call never changes repository state.
type ProductRepository struct {
	mu    sync.RWMutex
	seq   int64
	items map[int64]product.Product
}

// NewProductRepository returns an empty repository.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{items: make(map[int64]product.Product)}
}

// Create validates p, stores it, and assigns the next free identifier.
// Any identifier already set on p is discarded.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	p.ID = r.seq
	r.items[p.ID] = *p
	return nil
}

// CreateBatch validates and stores every product. Fresh identifiers are
// assigned internally but, matching the bulk path of the SQL engine, they
// are not written back to the input entities.
func (r *ProductRepository) CreateBatch(ctx context.Context, products []*product.Product) (int64, error) {
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return 0, err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range products {
		r.seq++
		item := *p
		item.ID = r.seq
		r.items[item.ID] = item
	}
	return int64(len(products)), nil
}

// Update writes all value fields of the identified row. Updating a row that
// no longer exists is not an error.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	if err := p.ValidateUpdate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[p.ID]; !ok {
		return nil
	}
	r.items[p.ID] = *p
	return nil
}

// Delete removes the identified row, if present.
func (r *ProductRepository) Delete(ctx context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, p.ID)
	return nil
}

// DeleteAll removes every product. Identifiers are not reused afterwards.
func (r *ProductRepository) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.items)
	return nil
}

// All returns every product ordered by identifier.
func (r *ProductRepository) All(ctx context.Context) ([]*product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(*product.Product) bool { return true }), nil
}

// Find returns the product with the given identifier. Absence is reported
// through the boolean, not as an error.
func (r *ProductRepository) Find(ctx context.Context, id int64) (*product.Product, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return nil, false, nil
	}
	return &p, true, nil
}

// FindByName selects products whose name matches exactly.
func (r *ProductRepository) FindByName(name string) product.Query {
	return &query{repo: r, match: func(p *product.Product) bool { return p.Name == name }}
}

// FindByAvailability selects products by availability flag.
func (r *ProductRepository) FindByAvailability(available bool) product.Query {
	return &query{repo: r, match: func(p *product.Product) bool { return p.Available == available }}
}

// FindByCategory selects products in the given category.
func (r *ProductRepository) FindByCategory(category product.Category) product.Query {
	return &query{repo: r, match: func(p *product.Product) bool { return p.Category == category }}
}

// FindByPrice selects products whose price equals the given decimal exactly.
func (r *ProductRepository) FindByPrice(price decimal.Decimal) product.Query {
	return &query{repo: r, match: func(p *product.Product) bool { return p.Price.Equal(price) }}
}

// collect copies every matching product, ordered by identifier. Callers
// hold at least a read lock.
func (r *ProductRepository) collect(match func(*product.Product) bool) []*product.Product {
	out := make([]*product.Product, 0, len(r.items))
	for _, item := range r.items {
		if match(&item) {
			out = append(out, &item)
		}
	}
	slices.SortFunc(out, func(a, b *product.Product) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// query evaluates its predicate against current repository state on every
// call, never against a snapshot taken at build time.
type query struct {
	repo  *ProductRepository
	match func(*product.Product) bool
}

func (q *query) Count(ctx context.Context) (int64, error) {
	q.repo.mu.RLock()
	defer q.repo.mu.RUnlock()

	var n int64
	for _, item := range q.repo.items {
		if q.match(&item) {
			n++
		}
	}
	return n, nil
}

func (q *query) All(ctx context.Context) ([]*product.Product, error) {
	q.repo.mu.RLock()
	defer q.repo.mu.RUnlock()

	return q.repo.collect(q.match), nil
}

// Each calls fn for every match. The matches are copied out before the
// first call, so fn may call back into the repository.
func (q *query) Each(ctx context.Context, fn func(p *product.Product) error) error {
	products, err := q.All(ctx)
	if err != nil {
		return err
	}
	for _, p := range products {
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}
