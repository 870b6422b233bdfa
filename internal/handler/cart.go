package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/session"
)

// safeReturnURL keeps local absolute paths only; anything else becomes "/".
func safeReturnURL(raw string) string {
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "/"
	}
	return raw
}

func (h *Handler) loadCart(w http.ResponseWriter, r *http.Request) (*session.Handle, *cart.Cart) {
	sess := h.sessions.Open(w, r)
	return sess, h.carts.Load(r.Context(), sess)
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	_, c := h.loadCart(w, r)
	writeJSON(w, http.StatusOK, toCartDTO(c, safeReturnURL(r.URL.Query().Get("returnUrl"))))
}

func (h *Handler) addLine(w http.ResponseWriter, r *http.Request) {
	var req addLineRequest
	if !decodeBody(w, r, &req) {
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	ctx := r.Context()
	p, err := h.catalog.Product(ctx, req.ProductID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	sess, c := h.loadCart(w, r)
	if err := c.AddItem(p, qty); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.carts.Save(ctx, sess, c); err != nil {
		writeError(w, r, err)
		return
	}

	zctx.From(ctx).Debug("Added to cart",
		zap.Int64("product_id", p.ID),
		zap.Int("quantity", qty),
		zap.Int("lines", c.Len()),
	)
	writeJSON(w, http.StatusOK, toCartDTO(c, safeReturnURL(req.ReturnURL)))
}

func (h *Handler) removeLine(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid product id")
		return
	}

	sess, c := h.loadCart(w, r)
	c.RemoveLine(id)
	if err := h.carts.Save(r.Context(), sess, c); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartDTO(c, safeReturnURL(r.URL.Query().Get("returnUrl"))))
}
