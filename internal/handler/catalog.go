package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/storefront/internal/domain/catalog"
)

// parsePage reads a 1-based page number. Anything that is not a positive
// integer renders the first page.
func parsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.renderPage(w, r, q.Get("category"), parsePage(q.Get("page")))
}

func (h *Handler) listProductsPage(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, r.URL.Query().Get("category"), parsePage(chi.URLParam(r, "page")))
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, category string, page int) {
	p, err := h.catalog.ListPage(r.Context(), catalog.Query{
		Category: category,
		Page:     page,
		PageSize: h.pageSize,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPageDTO(p))
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	m, err := h.catalog.Menu(r.Context(), r.URL.Query().Get("selected"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, menuDTO{Categories: m.Categories, Selected: m.Selected})
}
