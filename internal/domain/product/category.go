package product

import "fmt"

// Category classifies a product. The set is closed: storage and serialized
// records carry only the symbolic names of the members below.
type Category uint8

const (
	CategoryUnknown Category = iota
	CategoryCloths
	CategoryFood
	CategoryHousewares
	CategoryAutomotive
	CategoryTools
)

var categoryNames = [...]string{
	CategoryUnknown:    "UNKNOWN",
	CategoryCloths:     "CLOTHS",
	CategoryFood:       "FOOD",
	CategoryHousewares: "HOUSEWARES",
	CategoryAutomotive: "AUTOMOTIVE",
	CategoryTools:      "TOOLS",
}

// String returns the symbolic name of the category.
func (c Category) String() string {
	if c.Valid() {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", uint8(c))
}

// Valid reports whether c is a member of the category set.
func (c Category) Valid() bool {
	return int(c) < len(categoryNames)
}

// ParseCategory maps a symbolic name back to its Category. Unknown names
// are a ValidationError.
func ParseCategory(name string) (Category, error) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), nil
		}
	}
	return CategoryUnknown, &ValidationError{Reason: fmt.Sprintf("unknown category %q", name)}
}

// Categories returns all members of the category set.
func Categories() []Category {
	out := make([]Category, len(categoryNames))
	for i := range out {
		out[i] = Category(i)
	}
	return out
}
