// Package checkout turns a visitor's cart and shipping details into a
// persisted order.
package checkout

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/order"
)

// Status is the terminal state of a checkout attempt.
type Status string

const (
	// Accepted means the order was stored and the cart cleared.
	Accepted Status = "accepted"
	// Rejected means a precondition failed and nothing was stored.
	Rejected Status = "rejected"
)

// Reason names the precondition that rejected a checkout.
type Reason string

const (
	ReasonEmptyCart       Reason = "empty cart"
	ReasonInvalidShipping Reason = "invalid shipping details"
)

// Problem is a single failed shipping field rule.
type Problem struct {
	Field   string
	Message string
}

// Result is the outcome of Checkout. Order is set only when Accepted;
// Reason and Problems only when Rejected.
type Result struct {
	Status   Status
	Reason   Reason
	Problems []Problem
	Order    *order.Order
}

// Validator checks shipping details and returns every failed rule. An empty
// result means the details are acceptable.
type Validator interface {
	Validate(details order.ShippingDetails) []Problem
}

// Workflow validates and submits orders.
type Workflow struct {
	validator Validator
	orders    order.Repository
	now       func() time.Time
}

// NewWorkflow creates a Workflow that validates with v and stores accepted
// orders in orders.
func NewWorkflow(v Validator, orders order.Repository) *Workflow {
	return &Workflow{
		validator: v,
		orders:    orders,
		now:       time.Now,
	}
}

// Checkout checks the cart and shipping details in order, stores the order
// exactly once and clears c on success. A nil cart is treated as empty. A rejected checkout is a Result,
// not an error; only ledger failures are returned as errors, and in that
// case the cart is left as it was.
func (w *Workflow) Checkout(ctx context.Context, c *cart.Cart, details order.ShippingDetails) (*Result, error) {
	if c == nil || c.IsEmpty() {
		return &Result{Status: Rejected, Reason: ReasonEmptyCart}, nil
	}

	if problems := w.validator.Validate(details); len(problems) > 0 {
		return &Result{
			Status:   Rejected,
			Reason:   ReasonInvalidShipping,
			Problems: problems,
		}, nil
	}

	o := &order.Order{
		Shipping:  details,
		Lines:     snapshot(c),
		CreatedAt: w.now().UTC(),
	}
	if err := w.orders.Save(ctx, o); err != nil {
		return nil, errors.Wrap(err, "save order")
	}

	c.Clear()
	return &Result{Status: Accepted, Order: o}, nil
}

// snapshot copies the products out of the cart so later price changes do
// not alter the stored order.
func snapshot(c *cart.Cart) []order.Line {
	lines := c.Lines()
	out := make([]order.Line, len(lines))
	for i, l := range lines {
		out[i] = order.Line{Product: *l.Product, Quantity: l.Quantity}
	}
	return out
}
