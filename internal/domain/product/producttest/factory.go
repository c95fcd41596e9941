// Package producttest builds randomized products for tests.
package producttest

import (
	"github.com/Pallinder/go-randomdata"
	"github.com/shopspring/decimal"

	"github.com/xajezade/tdd-bdd-final-project/internal/domain/product"
)

// The name pool is small on purpose: generated batches repeat names, which
// gives the by-name finders something to match.
var names = []string{
	"Hat", "Pants", "Shirt", "Apple", "Banana",
	"Pots", "Towels", "Ford", "Chevy", "Hammer", "Wrench",
}

// New returns a valid unpersisted product with randomized fields.
func New() *product.Product {
	categories := product.Categories()
	return &product.Product{
		Name:        randomdata.StringSample(names...),
		Description: randomdata.Paragraph(),
		Price:       decimal.NewFromFloat(randomdata.Decimal(1, 2000, 2)).Round(2),
		Available:   randomdata.Boolean(),
		Category:    categories[randomdata.Number(0, len(categories))],
	}
}

// Batch returns n independent random products.
func Batch(n int) []*product.Product {
	out := make([]*product.Product, n)
	for i := range out {
		out[i] = New()
	}
	return out
}
