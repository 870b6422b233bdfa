package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/db"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/storage/postgres"
)

type productJSON struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "", "path to products JSON file (default: embedded catalog)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile string) error {
	products, err := readProducts(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products")
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	if err := postgres.NewProductRepository(pool).Upsert(ctx, products...); err != nil {
		return errors.Wrap(err, "upsert products")
	}
	for _, p := range products {
		slog.Info("upserted product", slog.Int64("id", p.ID), slog.String("name", p.Name))
	}
	return nil
}

func readProducts(path string) ([]product.Product, error) {
	data := db.SeedProducts
	if path != "" {
		slog.Info("reading products file", slog.String("path", path))
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read products file")
		}
		data = b
	}
	return parseProducts(data)
}

func parseProducts(data []byte) ([]product.Product, error) {
	var raw []productJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parse products JSON")
	}

	seen := make(map[int64]struct{}, len(raw))
	out := make([]product.Product, 0, len(raw))
	for _, p := range raw {
		switch {
		case p.ID <= 0:
			return nil, errors.Errorf("product %q: id must be positive", p.Name)
		case p.Name == "" || p.Category == "":
			return nil, errors.Errorf("product %d: name and category are required", p.ID)
		case p.Price.IsNegative():
			return nil, errors.Errorf("product %d: negative price", p.ID)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, errors.Errorf("product %d: duplicate id", p.ID)
		}
		seen[p.ID] = struct{}{}

		out = append(out, product.Product{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Category:    p.Category,
			Price:       p.Price,
		})
	}
	return out, nil
}
