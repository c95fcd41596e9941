// Command seed-db creates the schema and loads the starter catalog from a
// JSON file. An already populated catalog is left alone unless -fresh is set.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xajezade/tdd-bdd-final-project/internal/domain/product"
	"github.com/xajezade/tdd-bdd-final-project/internal/storage/postgres"
)

func main() {
	var (
		databaseURI  string
		productsFile string
		fresh        bool
	)

	flag.StringVar(&databaseURI, "database-uri", "", "PostgreSQL connection URI (or DATABASE_URI env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.BoolVar(&fresh, "fresh", false, "delete existing products before seeding")
	flag.Parse()

	if databaseURI == "" {
		databaseURI = os.Getenv("DATABASE_URI")
	}
	if databaseURI == "" {
		slog.Error("database URI is required: set --database-uri or DATABASE_URI")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURI, productsFile, fresh); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURI, productsFile string, fresh bool) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURI)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := postgres.NewProductRepository(pool)

	if fresh {
		slog.Info("deleting existing products")

		if err := repo.DeleteAll(ctx); err != nil {
			return errors.Wrap(err, "delete existing products")
		}
	} else {
		existing, err := repo.All(ctx)
		if err != nil {
			return errors.Wrap(err, "check existing products")
		}
		if len(existing) > 0 {
			slog.Info("catalog already seeded, nothing to do", slog.Int("products", len(existing)))
			return nil
		}
	}

	if err := seedProducts(ctx, repo, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	return nil
}

func seedProducts(ctx context.Context, repo *postgres.ProductRepository, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var count int
	d := jx.DecodeBytes(data)
	if err := d.Arr(func(d *jx.Decoder) error {
		raw, err := d.Raw()
		if err != nil {
			return errors.Wrap(err, "read record")
		}

		var p product.Product
		if err := p.Deserialize(raw); err != nil {
			return errors.Wrapf(err, "record %d", count)
		}
		if err := repo.Create(ctx, &p); err != nil {
			return errors.Wrapf(err, "create product %q", p.Name)
		}

		slog.Info("created product", slog.Int64("id", p.ID), slog.String("name", p.Name))
		count++
		return nil
	}); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("seeded products", slog.Int("count", count))

	return nil
}
