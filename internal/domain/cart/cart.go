// Package cart implements the visitor shopping cart and its session binding.
package cart

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/product"
)

// Contract violations returned by AddItem.
var (
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	ErrNilProduct      = errors.New("product is required")
)

// Line pairs a product with the quantity the visitor wants.
type Line struct {
	Product  *product.Product
	Quantity int
}

// Cart is an ordered set of lines, at most one per product ID. Lines keep
// the order in which their product was first added.
//
// A Cart is owned by a single request and is not safe for concurrent use.
type Cart struct {
	lines []Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// AddItem adds quantity of p, merging into the existing line for p.ID when
// there is one.
func (c *Cart) AddItem(p *product.Product, quantity int) error {
	if p == nil {
		return ErrNilProduct
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	if i := c.index(p.ID); i >= 0 {
		c.lines[i].Quantity += quantity
		return nil
	}
	c.lines = append(c.lines, Line{Product: p, Quantity: quantity})
	return nil
}

// RemoveLine deletes the whole line for productID. Removing a product that
// is not in the cart does nothing.
func (c *Cart) RemoveLine(productID int64) {
	if i := c.index(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// ComputeTotalValue sums price × quantity, reading each price from the
// referenced product at call time.
func (c *Cart) ComputeTotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// Clear removes every line. The cart stays usable.
func (c *Cart) Clear() {
	clear(c.lines)
	c.lines = c.lines[:0]
}

// Lines returns a copy of the current lines.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Quantity returns the total number of units across all lines.
func (c *Cart) Quantity() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) index(productID int64) int {
	for i, l := range c.lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}
