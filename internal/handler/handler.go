// Package handler exposes the storefront over JSON HTTP routes.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/checkout"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/session"
)

const meterName = "github.com/xenking/storefront/internal/handler"

// Config holds non-dependency settings for the Handler.
type Config struct {
	// PageSize is the number of products per catalog page.
	PageSize int
}

// Handler serves catalog, cart, checkout and order administration routes.
type Handler struct {
	catalog  *catalog.Catalog
	carts    *cart.Store
	sessions *session.Manager
	checkout *checkout.Workflow
	orders   order.Repository
	pageSize int

	checkouts metric.Int64Counter
}

// New constructs a Handler. mp provides the checkout outcome counter.
func New(
	cfg Config,
	cat *catalog.Catalog,
	carts *cart.Store,
	sessions *session.Manager,
	workflow *checkout.Workflow,
	orders order.Repository,
	mp metric.MeterProvider,
) (*Handler, error) {
	if cfg.PageSize <= 0 {
		return nil, errors.Errorf("invalid page size %d", cfg.PageSize)
	}

	checkouts, err := mp.Meter(meterName).Int64Counter("storefront.checkout.outcomes",
		metric.WithDescription("Checkout attempts by outcome"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create checkout counter")
	}

	return &Handler{
		catalog:   cat,
		carts:     carts,
		sessions:  sessions,
		checkout:  workflow,
		orders:    orders,
		pageSize:  cfg.PageSize,
		checkouts: checkouts,
	}, nil
}

// Router returns a chi router with every storefront route registered.
// Callers may mount additional routes on it.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/products", h.listProducts)
	r.Get("/products/page/{page}", h.listProductsPage)
	r.Get("/categories", h.categories)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.getCart)
		r.Post("/lines", h.addLine)
		r.Delete("/lines/{productId}", h.removeLine)
	})
	r.Post("/checkout", h.submitCheckout)

	r.Get("/orders", h.listOrders)
	r.Post("/orders/{id}/ship", h.shipOrder)
	return r
}
