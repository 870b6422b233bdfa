//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("storefront"),
		tcpostgres.WithUsername("storefront"),
		tcpostgres.WithPassword("storefront"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, RunMigrations(ctx, pool))
	// Migrations are idempotent.
	require.NoError(t, RunMigrations(ctx, pool))
	return pool
}

func TestProductRepository(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewProductRepository(pool)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, repo.Upsert(ctx,
		product.Product{ID: 2, Name: "Lifejacket", Category: "Watersports", Price: decimal.RequireFromString("48.95")},
		product.Product{ID: 1, Name: "Kayak", Description: "A boat for one person", Category: "Watersports", Price: decimal.NewFromInt(275)},
	))

	all, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(1), all[0].ID)
	assert.Equal(t, "A boat for one person", all[0].Description)
	assert.True(t, decimal.RequireFromString("48.95").Equal(all[1].Price))

	p, err := repo.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Lifejacket", p.Name)

	_, err = repo.GetByID(ctx, 99)
	require.ErrorIs(t, err, product.ErrNotFound)

	// Re-seeding replaces fields in place.
	require.NoError(t, repo.Upsert(ctx,
		product.Product{ID: 2, Name: "Lifejacket", Category: "Watersports", Price: decimal.NewFromInt(50)},
	))
	p, err = repo.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50).Equal(p.Price))
}

func TestOrderRepository(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewOrderRepository(pool)

	kayak := product.Product{ID: 1, Name: "Kayak", Category: "Watersports", Price: decimal.NewFromInt(275)}
	ball := product.Product{ID: 3, Name: "Soccer Ball", Category: "Soccer", Price: decimal.RequireFromString("19.50")}

	first := &order.Order{
		Shipping: order.ShippingDetails{Name: "Joe", Line1: "1 Main St", City: "Springfield", Zip: "12345", Country: "US"},
		Lines: []order.Line{
			{Product: kayak, Quantity: 1},
			{Product: ball, Quantity: 2},
		},
		CreatedAt: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Save(ctx, first))
	assert.NotZero(t, first.ID)
	assert.True(t, time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC).Equal(first.CreatedAt))

	second := &order.Order{
		Shipping: order.ShippingDetails{Name: "Ann", Line1: "2 Side St", City: "Shelbyville", Zip: "54321", Country: "US"},
		Lines:    []order.Line{{Product: ball, Quantity: 1}},
	}
	require.NoError(t, repo.Save(ctx, second))
	assert.Greater(t, second.ID, first.ID)
	assert.False(t, second.CreatedAt.IsZero())

	all, err := repo.List(ctx, order.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
	require.Len(t, all[0].Lines, 2)
	assert.Equal(t, "Kayak", all[0].Lines[0].Product.Name)
	assert.Equal(t, 2, all[0].Lines[1].Quantity)
	assert.True(t, decimal.NewFromInt(314).Equal(all[0].Total()))

	require.NoError(t, repo.MarkShipped(ctx, second.ID))
	require.ErrorIs(t, repo.MarkShipped(ctx, 12345), order.ErrNotFound)

	shipped := true
	got, err := repo.List(ctx, order.ListFilter{Shipped: &shipped})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ann", got[0].Shipping.Name)
	assert.True(t, got[0].Shipped)

	pending := false
	got, err = repo.List(ctx, order.ListFilter{Shipped: &pending})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Joe", got[0].Shipping.Name)
}
