package product

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// Serialize renders the product as a JSON object. The price travels as a
// string so its decimal digits survive the round trip exactly; the category
// travels by symbolic name. An unpersisted product serializes a null id.
func (p *Product) Serialize() []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) {
			if p.ID == 0 {
				e.Null()
				return
			}
			e.Int64(p.ID)
		})
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("description", func(e *jx.Encoder) { e.Str(p.Description) })
		e.Field("price", func(e *jx.Encoder) { e.Str(p.Price.String()) })
		e.Field("available", func(e *jx.Encoder) { e.Bool(p.Available) })
		e.Field("category", func(e *jx.Encoder) { e.Str(p.Category.String()) })
	})
	return e.Bytes()
}

// Deserialize populates the product's value fields from a JSON object
// produced by Serialize. An id key in the payload is ignored: identity comes
// from storage, never from the record. Malformed payloads, missing keys, a
// non-boolean available flag, an unparseable price, and unknown category
// names are all reported as ValidationError. On error the product is left
// unchanged.
func (p *Product) Deserialize(data []byte) error {
	var (
		out  Product
		seen struct {
			name        bool
			description bool
			price       bool
			available   bool
			category    bool
		}
	)

	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			s, err := d.Str()
			if err != nil {
				return &ValidationError{Reason: "invalid product: bad name", Err: err}
			}
			out.Name = s
			seen.name = true
		case "description":
			s, err := d.Str()
			if err != nil {
				return &ValidationError{Reason: "invalid product: bad description", Err: err}
			}
			out.Description = s
			seen.description = true
		case "price":
			price, err := decodePrice(d)
			if err != nil {
				return err
			}
			out.Price = price
			seen.price = true
		case "available":
			if typ := d.Next(); typ != jx.Bool {
				return &ValidationError{Reason: fmt.Sprintf("invalid type for boolean [available]: %s", typ)}
			}
			b, err := d.Bool()
			if err != nil {
				return &ValidationError{Reason: "invalid product: bad available", Err: err}
			}
			out.Available = b
			seen.available = true
		case "category":
			s, err := d.Str()
			if err != nil {
				return &ValidationError{Reason: "invalid product: bad category", Err: err}
			}
			c, err := ParseCategory(s)
			if err != nil {
				return err
			}
			out.Category = c
			seen.category = true
		default:
			return d.Skip()
		}
		return nil
	})
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return verr
		}
		return &ValidationError{Reason: "invalid product: bad or no data", Err: err}
	}

	for _, f := range []struct {
		ok  bool
		key string
	}{
		{seen.name, "name"},
		{seen.description, "description"},
		{seen.price, "price"},
		{seen.available, "available"},
		{seen.category, "category"},
	} {
		if !f.ok {
			return &ValidationError{Reason: "invalid product: missing " + f.key}
		}
	}

	out.ID = p.ID
	*p = out
	return nil
}

// decodePrice reads a decimal from either a JSON string (the canonical form)
// or a bare JSON number (accepted for older dumps).
func decodePrice(d *jx.Decoder) (decimal.Decimal, error) {
	switch typ := d.Next(); typ {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Decimal{}, &ValidationError{Reason: "invalid product: bad price", Err: err}
		}
		price, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Decimal{}, &ValidationError{Reason: fmt.Sprintf("invalid price %q", s), Err: err}
		}
		return price, nil
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Decimal{}, &ValidationError{Reason: "invalid product: bad price", Err: err}
		}
		price, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Decimal{}, &ValidationError{Reason: fmt.Sprintf("invalid price %s", n), Err: err}
		}
		return price, nil
	default:
		return decimal.Decimal{}, &ValidationError{Reason: fmt.Sprintf("invalid type for price: %s", typ)}
	}
}
