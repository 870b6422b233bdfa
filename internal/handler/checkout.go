package handler

import (
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/checkout"
	"github.com/xenking/storefront/internal/domain/order"
)

func (h *Handler) submitCheckout(w http.ResponseWriter, r *http.Request) {
	var details order.ShippingDetails
	if !decodeBody(w, r, &details) {
		return
	}

	ctx := r.Context()
	lg := zctx.From(ctx)
	sess, c := h.loadCart(w, r)

	res, err := h.checkout.Checkout(ctx, c, details)
	if err != nil {
		writeError(w, r, err)
		return
	}

	attrs := []attribute.KeyValue{attribute.String("status", string(res.Status))}
	if res.Status == checkout.Rejected {
		attrs = append(attrs, attribute.String("reason", string(res.Reason)))
		h.checkouts.Add(ctx, 1, metric.WithAttributes(attrs...))
		lg.Info("Checkout rejected", zap.String("reason", string(res.Reason)), zap.Int("problems", len(res.Problems)))
		writeJSON(w, http.StatusUnprocessableEntity, toCheckoutDTO(res))
		return
	}
	h.checkouts.Add(ctx, 1, metric.WithAttributes(attrs...))

	// The order is stored; a failure to persist the emptied cart must not
	// turn the response into an error.
	if err := h.carts.Save(ctx, sess, c); err != nil {
		lg.Error("Clear cart after checkout", zap.Int64("order_id", res.Order.ID), zap.Error(err))
	}

	lg.Info("Order placed",
		zap.Int64("order_id", res.Order.ID),
		zap.String("total", res.Order.Total().StringFixed(2)),
	)
	writeJSON(w, http.StatusCreated, toCheckoutDTO(res))
}
