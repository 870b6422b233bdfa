package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/product"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// ShippingDetails is where a visitor wants the order delivered. Field rules
// are declared as validate tags and enforced by the checkout validator.
type ShippingDetails struct {
	Name    string `json:"name" validate:"notblank,max=128"`
	Line1   string `json:"line1" validate:"notblank,max=128"`
	Line2   string `json:"line2,omitempty" validate:"max=128"`
	Line3   string `json:"line3,omitempty" validate:"max=128"`
	City    string `json:"city" validate:"notblank,max=128"`
	State   string `json:"state,omitempty" validate:"max=128"`
	Zip     string `json:"zip" validate:"notblank,max=16"`
	Country string `json:"country" validate:"notblank,max=128"`
}

// Line is a snapshot of a cart line taken at submission time.
type Line struct {
	Product  product.Product
	Quantity int
}

// Order is a submitted cart plus shipping details. Orders are append-only;
// only the Shipped flag changes after persistence.
type Order struct {
	ID        int64
	Shipping  ShippingDetails
	Shipped   bool
	Lines     []Line
	CreatedAt time.Time
}

// Total sums the snapshot line prices.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// ListFilter narrows List. A nil Shipped returns every order.
type ListFilter struct {
	Shipped *bool
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Save stores a new order, assigning its ID and CreatedAt.
	Save(ctx context.Context, o *Order) error
	List(ctx context.Context, filter ListFilter) ([]Order, error)
	MarkShipped(ctx context.Context, id int64) error
}
