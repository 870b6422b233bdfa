//go:build integration

package app

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap/zaptest"

	"github.com/xenking/storefront/internal/session"
	"github.com/xenking/storefront/internal/storage/postgres"
	"github.com/xenking/storefront/pkg/health"
)

func TestRoutes_Postgres(t *testing.T) {
	ctx := zctx.Base(context.Background(), zaptest.NewLogger(t))

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

	pool, err := postgres.NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.RunMigrations(ctx, pool))

	products := postgres.NewProductRepository(pool)
	require.NoError(t, products.Upsert(ctx, seedProducts()...))

	hs := health.New()
	hs.Register(health.Readiness, health.Check{Name: "postgres", Timeout: time.Second, Func: health.PingCheck(pool)})
	hs.SetReady(true)

	routes, err := newRoutes(ctx, testConfig(), stores{
		products: products,
		orders:   postgres.NewOrderRepository(pool),
		sessions: session.NewMemoryBackend(),
	}, hs, noop.NewMeterProvider())
	require.NoError(t, err)

	shopFlow(t, newClient(t, routes))
}
