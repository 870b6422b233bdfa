package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/storefront/internal/domain/order"
)

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	var filter order.ListFilter
	if raw := r.URL.Query().Get("shipped"); raw != "" {
		shipped, err := strconv.ParseBool(raw)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid shipped filter")
			return
		}
		filter.Shipped = &shipped
	}

	orders, err := h.orders.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]orderDTO, len(orders))
	for i, o := range orders {
		out[i] = toOrderDTO(o)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) shipOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid order id")
		return
	}
	if err := h.orders.MarkShipped(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
