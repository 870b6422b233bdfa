package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (name, line1, line2, line3, city, state, zip, country, shipped, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	insertOrderLineSQL = `INSERT INTO order_lines
		(order_id, position, product_id, name, description, category, price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	listOrdersSQL = `SELECT id, name, line1, line2, line3, city, state, zip, country, shipped, created_at
		FROM orders
		WHERE $1::boolean IS NULL OR shipped = $1
		ORDER BY id`

	listOrderLinesSQL = `SELECT order_id, product_id, name, description, category, price, quantity
		FROM order_lines
		WHERE order_id = ANY($1)
		ORDER BY order_id, position`

	markShippedSQL = `UPDATE orders SET shipped = TRUE WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
// An order and its lines are written in one transaction.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Save persists o and its lines, filling in ID and CreatedAt from the row.
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	createdAt := o.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var (
		id      int64
		created time.Time
	)
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		s := o.Shipping
		if err := tx.QueryRow(ctx, insertOrderSQL,
			s.Name, s.Line1, s.Line2, s.Line3, s.City, s.State, s.Zip, s.Country,
			o.Shipped, createdAt,
		).Scan(&id, &created); err != nil {
			return fmt.Errorf("inserting order: %w", err)
		}

		if len(o.Lines) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for i, l := range o.Lines {
			p := l.Product
			batch.Queue(insertOrderLineSQL, id, i, p.ID, p.Name, p.Description, p.Category, p.Price, l.Quantity)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting order lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving order: %w", err)
	}

	o.ID = id
	o.CreatedAt = created.UTC()
	return nil
}

// List returns orders matching filter ordered by ID, lines included.
func (r *OrderRepository) List(ctx context.Context, filter order.ListFilter) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL, filter.Shipped)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, len(orders))
	byID := make(map[int64]*order.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		byID[orders[i].ID] = &orders[i]
	}

	lineRows, err := r.pool.Query(ctx, listOrderLinesSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("listing order lines: %w", err)
	}
	var (
		orderID int64
		l       order.Line
	)
	_, err = pgx.ForEachRow(lineRows, []any{
		&orderID, &l.Product.ID, &l.Product.Name, &l.Product.Description,
		&l.Product.Category, &l.Product.Price, &l.Quantity,
	}, func() error {
		if o, ok := byID[orderID]; ok {
			o.Lines = append(o.Lines, l)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing order lines: %w", err)
	}
	return orders, nil
}

// MarkShipped sets the shipped flag on order id.
func (r *OrderRepository) MarkShipped(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, markShippedSQL, id)
	if err != nil {
		return fmt.Errorf("marking order %d shipped: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o order.Order
		s = &o.Shipping
	)
	err := row.Scan(&o.ID, &s.Name, &s.Line1, &s.Line2, &s.Line3, &s.City, &s.State, &s.Zip, &s.Country,
		&o.Shipped, &o.CreatedAt)
	o.CreatedAt = o.CreatedAt.UTC()
	return o, err
}
