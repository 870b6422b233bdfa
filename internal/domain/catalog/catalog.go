// Package catalog implements category-filtered, paginated product browsing.
package catalog

import (
	"cmp"
	"context"
	"slices"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/product"
)

// Contract violations returned by ListPage.
var (
	ErrInvalidPage     = errors.New("page number must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be greater than 0")
)

// PagingInfo describes the position of a page within a filtered listing.
type PagingInfo struct {
	CurrentPage  int
	ItemsPerPage int
	TotalItems   int
}

// TotalPages returns ceil(TotalItems / ItemsPerPage).
func (p PagingInfo) TotalPages() int {
	if p.ItemsPerPage <= 0 {
		return 0
	}
	return (p.TotalItems + p.ItemsPerPage - 1) / p.ItemsPerPage
}

// Query selects a page of products. An empty Category lists every product.
type Query struct {
	Category string
	Page     int
	PageSize int
}

// Page is one page of a listing.
type Page struct {
	Products []product.Product
	Paging   PagingInfo
	// Category echoes the filter the page was built with.
	Category string
}

// Menu is the category navigation: every category plus the active one.
type Menu struct {
	Categories []string
	Selected   string
}

// Catalog answers browse queries over a product repository.
type Catalog struct {
	products product.Repository
}

// New creates a Catalog reading from the given repository.
func New(products product.Repository) *Catalog {
	return &Catalog{products: products}
}

// ListPage filters by category, orders by ascending ID and returns the
// requested page. TotalItems counts the filtered set. Pages past the end are
// empty, not an error.
func (c *Catalog) ListPage(ctx context.Context, q Query) (*Page, error) {
	if q.Page < 1 {
		return nil, ErrInvalidPage
	}
	if q.PageSize <= 0 {
		return nil, ErrInvalidPageSize
	}

	all, err := c.products.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	filtered := filterByCategory(all, q.Category)
	slices.SortFunc(filtered, func(a, b product.Product) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return &Page{
		Products: paginate(filtered, q.Page, q.PageSize),
		Paging: PagingInfo{
			CurrentPage:  q.Page,
			ItemsPerPage: q.PageSize,
			TotalItems:   len(filtered),
		},
		Category: q.Category,
	}, nil
}

// ListCategories returns the distinct non-empty category labels in ordinal
// order. The empty label means "no filter" and is never listed.
func (c *Catalog) ListCategories(ctx context.Context) ([]string, error) {
	all, err := c.products.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	categories := make([]string, 0, len(all))
	for _, p := range all {
		if p.Category != "" {
			categories = append(categories, p.Category)
		}
	}
	slices.Sort(categories)
	return slices.Compact(categories), nil
}

// Menu returns the navigation menu with selected marked as active.
func (c *Catalog) Menu(ctx context.Context, selected string) (*Menu, error) {
	categories, err := c.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return &Menu{Categories: categories, Selected: selected}, nil
}

// Product returns a single product by ID.
func (c *Catalog) Product(ctx context.Context, id int64) (*product.Product, error) {
	p, err := c.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get product %d", id)
	}
	return p, nil
}

// filterByCategory copies the matching products so that sorting never
// reorders the repository's slice.
func filterByCategory(products []product.Product, category string) []product.Product {
	out := make([]product.Product, 0, len(products))
	for _, p := range products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

func paginate(products []product.Product, page, size int) []product.Product {
	if page-1 > len(products)/size {
		return []product.Product{}
	}
	start := (page - 1) * size
	if start >= len(products) {
		return []product.Product{}
	}
	end := min(start+size, len(products))
	return products[start:end]
}
