package product

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Product represents a single item in the catalog. The zero ID marks a
// product that has not been persisted yet; storage assigns the real
// identifier on create.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Available   bool
	Category    Category
}

// String renders the product in its short debug form. Unpersisted products
// print None as their id.
func (p *Product) String() string {
	if p.ID == 0 {
		return fmt.Sprintf("<Product %s id=[None]>", p.Name)
	}
	return fmt.Sprintf("<Product %s id=[%d]>", p.Name, p.ID)
}

// ValidateUpdate reports whether the product can be written as an update.
// A product whose ID was never assigned has no row to update; repositories
// must reject it before touching storage.
func (p *Product) ValidateUpdate() error {
	if p.ID == 0 {
		return &ValidationError{Reason: "update called with empty ID field"}
	}
	return p.Validate()
}

// Validate reports whether the product can be persisted. Constructing a
// Product performs no validation; repositories call this before any write.
func (p *Product) Validate() error {
	if p.Name == "" {
		return &ValidationError{Reason: "product name is required"}
	}
	if p.Price.IsNegative() {
		return &ValidationError{Reason: "product price must not be negative"}
	}
	if !p.Category.Valid() {
		return &ValidationError{Reason: fmt.Sprintf("unknown category %s", p.Category)}
	}
	return nil
}

// Repository defines the persistence contract for products.
//
// Create assigns a fresh storage identifier to the entity; any ID already
// set on it is discarded. Update refuses products whose ID was never
// assigned. Find treats absence as the ok result, not an error.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	// CreateBatch inserts many products in one round trip. Unlike Create it
	// does not report the assigned identifiers back; it returns the number
	// of rows written. Bulk ingest paths use it.
	CreateBatch(ctx context.Context, products []*Product) (int64, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, p *Product) error
	DeleteAll(ctx context.Context) error

	All(ctx context.Context) ([]*Product, error)
	Find(ctx context.Context, id int64) (*Product, bool, error)
	FindByName(name string) Query
	FindByAvailability(available bool) Query
	FindByCategory(category Category) Query
	FindByPrice(price decimal.Decimal) Query
}

// Query is a lazily evaluated product selection. Building one performs no
// storage work; Count, All, and Each consult storage when called, so every
// evaluation reflects the state at that moment.
type Query interface {
	Count(ctx context.Context) (int64, error)
	All(ctx context.Context) ([]*Product, error)
	Each(ctx context.Context, fn func(p *Product) error) error
}
