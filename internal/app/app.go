package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/checkout"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/handler"
	"github.com/xenking/storefront/internal/session"
	"github.com/xenking/storefront/internal/storage/postgres"
	"github.com/xenking/storefront/pkg/health"
	"github.com/xenking/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	healthSvc := health.New()
	healthSvc.Register(health.Readiness, health.Check{
		Name:    "postgres",
		Timeout: 5 * time.Second,
		Func:    health.PingCheck(pool),
	})
	healthSvc.Register(health.Liveness, health.Check{
		Name:    "goroutines",
		Timeout: time.Second,
		Func:    health.GoroutineCountCheck(10000),
	})

	backend, closeBackend, err := newSessionBackend(ctx, lg, cfg.Redis, healthSvc)
	if err != nil {
		return errors.Wrap(err, "create session backend")
	}
	defer closeBackend()

	routes, err := newRoutes(ctx, cfg, stores{
		products: postgres.NewProductRepository(pool),
		orders:   postgres.NewOrderRepository(pool),
		sessions: backend,
	}, healthSvc, m.MeterProvider(),
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	)
	if err != nil {
		return err
	}

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           routes,
	}

	healthSvc.Start(ctx, 10*time.Second)
	defer healthSvc.Stop()
	healthSvc.SetReady(true)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gCtx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	return g.Wait()
}

// newSessionBackend connects to Redis when configured; otherwise sessions
// live in process memory and are swept every minute.
func newSessionBackend(
	ctx context.Context,
	lg *zap.Logger,
	cfg RedisConfig,
	hs *health.Health,
) (session.Backend, func(), error) {
	if cfg.Addr == "" {
		lg.Warn("Redis address not set, using in-memory sessions")
		mem := session.NewMemoryBackend()
		mem.StartCleanup(ctx, time.Minute)
		return mem, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	backend := session.NewRedisBackend(client)
	closeClient := func() {
		if err := client.Close(); err != nil {
			lg.Warn("Close redis client", zap.Error(err))
		}
	}
	if err := backend.Ping(ctx); err != nil {
		closeClient()
		return nil, nil, errors.Wrap(err, "ping redis")
	}

	hs.Register(health.Readiness, health.Check{
		Name:    "redis",
		Timeout: 2 * time.Second,
		Func:    health.PingCheck(backend),
	})
	lg.Info("Using Redis sessions", zap.String("addr", cfg.Addr))
	return backend, closeClient, nil
}

// stores are the persistence adapters behind the HTTP routes.
type stores struct {
	products product.Repository
	orders   order.Repository
	sessions session.Backend
}

// newRoutes builds the domain services over st and returns the fully
// wrapped HTTP handler, probes included.
func newRoutes(
	ctx context.Context,
	cfg *Config,
	st stores,
	hs *health.Health,
	mp metric.MeterProvider,
	otelOpts ...otelhttp.Option,
) (http.Handler, error) {
	h, err := handler.New(
		handler.Config{PageSize: cfg.Catalog.PageSize},
		catalog.New(st.products),
		cart.NewStore(),
		session.NewManager(st.sessions, session.Config{
			CookieName: cfg.Session.CookieName,
			TTL:        cfg.Session.TTL,
			Secure:     cfg.Session.Secure,
		}),
		checkout.NewWorkflow(checkout.NewShippingValidator(), st.orders),
		st.orders,
		mp,
	)
	if err != nil {
		return nil, errors.Wrap(err, "create handler")
	}

	router := h.Router()
	router.Get("/livez", hs.Handler(health.Liveness))
	router.Get("/readyz", hs.Handler(health.Readiness))
	find := httpmiddleware.MakeRouteFinder(router)

	return httpmiddleware.Wrap(router,
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(zctx.From(ctx)),
		httpmiddleware.Recovery(),
		httpmiddleware.Instrument("storefront", find, otelOpts...),
		httpmiddleware.LogRequests(find),
		httpmiddleware.Labeler(find),
	), nil
}
