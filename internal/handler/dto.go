package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/checkout"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
)

type productDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       string `json:"price"`
}

func toProductDTO(p product.Product) productDTO {
	return productDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price.StringFixed(2),
	}
}

type pagingDTO struct {
	CurrentPage  int `json:"currentPage"`
	ItemsPerPage int `json:"itemsPerPage"`
	TotalItems   int `json:"totalItems"`
	TotalPages   int `json:"totalPages"`
}

type pageDTO struct {
	Products []productDTO `json:"products"`
	Paging   pagingDTO    `json:"paging"`
	Category string       `json:"category,omitempty"`
}

func toPageDTO(p *catalog.Page) pageDTO {
	products := make([]productDTO, len(p.Products))
	for i, prod := range p.Products {
		products[i] = toProductDTO(prod)
	}
	return pageDTO{
		Products: products,
		Paging: pagingDTO{
			CurrentPage:  p.Paging.CurrentPage,
			ItemsPerPage: p.Paging.ItemsPerPage,
			TotalItems:   p.Paging.TotalItems,
			TotalPages:   p.Paging.TotalPages(),
		},
		Category: p.Category,
	}
}

type menuDTO struct {
	Categories []string `json:"categories"`
	Selected   string   `json:"selected,omitempty"`
}

type lineDTO struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

type cartDTO struct {
	Lines     []lineDTO `json:"lines"`
	ItemCount int       `json:"itemCount"`
	Total     string    `json:"total"`
	ReturnURL string    `json:"returnUrl"`
}

func toCartDTO(c *cart.Cart, returnURL string) cartDTO {
	lines := c.Lines()
	out := make([]lineDTO, len(lines))
	for i, l := range lines {
		out[i] = newLineDTO(*l.Product, l.Quantity)
	}
	return cartDTO{
		Lines:     out,
		ItemCount: c.Quantity(),
		Total:     c.ComputeTotalValue().StringFixed(2),
		ReturnURL: returnURL,
	}
}

func newLineDTO(p product.Product, qty int) lineDTO {
	return lineDTO{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price.StringFixed(2),
		Quantity:  qty,
		Subtotal:  p.Price.Mul(decimal.NewFromInt(int64(qty))).StringFixed(2),
	}
}

type addLineRequest struct {
	ProductID int64  `json:"productId"`
	Quantity  *int   `json:"quantity"`
	ReturnURL string `json:"returnUrl"`
}

type problemDTO struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type checkoutDTO struct {
	Status   string       `json:"status"`
	Reason   string       `json:"reason,omitempty"`
	Problems []problemDTO `json:"problems,omitempty"`
	OrderID  int64        `json:"orderId,omitempty"`
	Total    string       `json:"total,omitempty"`
}

func toCheckoutDTO(res *checkout.Result) checkoutDTO {
	out := checkoutDTO{Status: string(res.Status), Reason: string(res.Reason)}
	for _, p := range res.Problems {
		out.Problems = append(out.Problems, problemDTO{Field: p.Field, Message: p.Message})
	}
	if res.Order != nil {
		out.OrderID = res.Order.ID
		out.Total = res.Order.Total().StringFixed(2)
	}
	return out
}

type orderDTO struct {
	ID        int64                 `json:"id"`
	Shipping  order.ShippingDetails `json:"shipping"`
	Shipped   bool                  `json:"shipped"`
	CreatedAt time.Time             `json:"createdAt"`
	Lines     []lineDTO             `json:"lines"`
	Total     string                `json:"total"`
}

func toOrderDTO(o order.Order) orderDTO {
	lines := make([]lineDTO, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = newLineDTO(l.Product, l.Quantity)
	}
	return orderDTO{
		ID:        o.ID,
		Shipping:  o.Shipping,
		Shipped:   o.Shipped,
		CreatedAt: o.CreatedAt,
		Lines:     lines,
		Total:     o.Total().StringFixed(2),
	}
}
