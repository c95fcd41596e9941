package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(value string) decimal.Decimal {
	dec, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return dec
}

func TestProductString(t *testing.T) {
	p := &Product{
		Name:        "Fedora",
		Description: "A red hat",
		Price:       d("12.50"),
		Available:   true,
		Category:    CategoryCloths,
	}
	assert.Equal(t, "<Product Fedora id=[None]>", p.String())

	p.ID = 42
	assert.Equal(t, "<Product Fedora id=[42]>", p.String())
}

func TestProductValidate(t *testing.T) {
	tests := []struct {
		name    string
		product Product
		wantErr string
	}{
		{
			name:    "valid",
			product: Product{Name: "Fedora", Price: d("12.50"), Available: true, Category: CategoryCloths},
		},
		{
			name:    "zero price is allowed",
			product: Product{Name: "Free sample", Price: d("0"), Category: CategoryFood},
		},
		{
			name:    "empty name",
			product: Product{Price: d("1.00"), Category: CategoryFood},
			wantErr: "product name is required",
		},
		{
			name:    "negative price",
			product: Product{Name: "Hammer", Price: d("-0.01"), Category: CategoryTools},
			wantErr: "product price must not be negative",
		},
		{
			name:    "category outside the set",
			product: Product{Name: "Hammer", Price: d("1.00"), Category: Category(42)},
			wantErr: "unknown category Category(42)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.product.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantErr, verr.Reason)
		})
	}
}

func TestProductValidateUpdate(t *testing.T) {
	p := Product{Name: "Fedora", Price: d("12.50"), Category: CategoryCloths}

	err := p.ValidateUpdate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "update called with empty ID field", verr.Reason)

	p.ID = 7
	require.NoError(t, p.ValidateUpdate())

	p.Name = ""
	assert.Error(t, p.ValidateUpdate())
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Reason: "invalid product: missing name"}
	assert.Equal(t, "invalid product: missing name", err.Error())
	assert.NoError(t, err.Unwrap())

	wrapped := &ValidationError{Reason: "invalid price \"abc\"", Err: assert.AnError}
	assert.Contains(t, wrapped.Error(), "invalid price")
	assert.ErrorIs(t, wrapped, assert.AnError)
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "UNKNOWN", CategoryUnknown.String())
	assert.Equal(t, "CLOTHS", CategoryCloths.String())
	assert.Equal(t, "FOOD", CategoryFood.String())
	assert.Equal(t, "HOUSEWARES", CategoryHousewares.String())
	assert.Equal(t, "AUTOMOTIVE", CategoryAutomotive.String())
	assert.Equal(t, "TOOLS", CategoryTools.String())
	assert.Equal(t, "Category(9)", Category(9).String())
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		got, err := ParseCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseCategory("SPORTS")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, `unknown category "SPORTS"`, verr.Reason)

	// Names are matched exactly, not case-folded.
	_, err = ParseCategory("cloths")
	assert.Error(t, err)
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories() {
		assert.True(t, c.Valid(), c.String())
	}
	assert.False(t, Category(6).Valid())
	assert.False(t, Category(200).Valid())
}
