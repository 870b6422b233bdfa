// Package memory provides in-process product and order repositories used
// by tests and local runs.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
)

var (
	_ product.Repository = (*ProductRepository)(nil)
	_ order.Repository   = (*OrderRepository)(nil)
)

// ProductRepository is a fixed product set.
type ProductRepository struct {
	mu       sync.RWMutex
	products []product.Product
	listErr  error
}

// NewProductRepository returns a repository holding a copy of products.
func NewProductRepository(products ...product.Product) *ProductRepository {
	return &ProductRepository{products: slices.Clone(products)}
}

// FailList makes subsequent List calls return err; nil restores normal
// behaviour.
func (r *ProductRepository) FailList(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listErr = err
}

// List returns a copy of every product in insertion order.
func (r *ProductRepository) List(_ context.Context) ([]product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	return slices.Clone(r.products), nil
}

// GetByID returns a copy of the product with the given ID.
func (r *ProductRepository) GetByID(_ context.Context, id int64) (*product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, product.ErrNotFound
}

// OrderRepository is an append-only in-memory order ledger.
type OrderRepository struct {
	mu      sync.Mutex
	orders  []order.Order
	nextID  int64
	saveErr error
	now     func() time.Time
}

// NewOrderRepository returns an empty ledger.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{now: time.Now}
}

// FailSave makes subsequent Save calls return err; nil restores normal
// behaviour.
func (r *OrderRepository) FailSave(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveErr = err
}

// Save appends a copy of o and assigns its ID.
func (r *OrderRepository) Save(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}

	r.nextID++
	o.ID = r.nextID
	if o.CreatedAt.IsZero() {
		o.CreatedAt = r.now().UTC()
	}

	stored := *o
	stored.Lines = slices.Clone(o.Lines)
	r.orders = append(r.orders, stored)
	return nil
}

// List returns copies of the stored orders ordered by ID.
func (r *OrderRepository) List(_ context.Context, filter order.ListFilter) ([]order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]order.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if filter.Shipped != nil && o.Shipped != *filter.Shipped {
			continue
		}
		o.Lines = slices.Clone(o.Lines)
		out = append(out, o)
	}
	slices.SortFunc(out, func(a, b order.Order) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// MarkShipped sets the shipped flag on order id.
func (r *OrderRepository) MarkShipped(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.orders {
		if r.orders[i].ID == id {
			r.orders[i].Shipped = true
			return nil
		}
	}
	return order.ErrNotFound
}
