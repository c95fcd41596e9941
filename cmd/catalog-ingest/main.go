// Command catalog-ingest bulk-loads product catalog drops into the database.
//
// A drop is a directory of gzip-compressed JSONL files, one serialized
// product per line. Records already seen in this run (in any file of the
// drop) are skipped via a shared bloom filter, malformed lines are counted
// and skipped, and everything else is written through the COPY protocol in
// batches. Each run leaves an import_batches audit row.
package main

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/google/uuid"
	pgzip "github.com/klauspost/pgzip"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xajezade/tdd-bdd-final-project/internal/config"
	"github.com/xajezade/tdd-bdd-final-project/internal/domain/product"
	"github.com/xajezade/tdd-bdd-final-project/internal/storage/postgres"
	"github.com/xajezade/tdd-bdd-final-project/internal/storage/telemetry"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.DatabaseURI == "" {
			return errors.New("database URI is required: set PRODUCTS_DATABASE_URI or DATABASE_URI")
		}
		return run(ctx, lg, m, cfg)
	})
}

// fileResult holds per-file counters, merged once all workers finish.
type fileResult struct {
	imported int64
	skipped  int64
}

func run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *config.Config) error {
	files, err := filepath.Glob(filepath.Join(cfg.Ingest.DataDir, cfg.Ingest.Pattern))
	if err != nil {
		return errors.Wrap(err, "glob catalog files")
	}
	if len(files) == 0 {
		lg.Info("No catalog files found",
			zap.String("dir", cfg.Ingest.DataDir),
			zap.String("pattern", cfg.Ingest.Pattern),
		)
		return nil
	}

	lg.Info("Starting catalog ingest",
		zap.Int("files", len(files)),
		zap.Int("batch_size", cfg.Ingest.BatchSize),
	)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURI)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo, err := telemetry.NewRepository(postgres.NewProductRepository(pool), m.TracerProvider(), m.MeterProvider())
	if err != nil {
		return errors.Wrap(err, "create repository")
	}

	ing := &ingester{
		repo:      repo,
		batchSize: cfg.Ingest.BatchSize,
		seen:      bloom.NewWithEstimates(cfg.Ingest.BloomCapacity, cfg.Ingest.BloomFalsePositiveRate),
	}

	startedAt := time.Now()

	results, err := ing.ingestAll(ctx, lg, files)
	if err != nil {
		return err
	}

	var total fileResult
	for _, r := range results {
		total.imported += r.imported
		total.skipped += r.skipped
	}

	label := cfg.Ingest.BatchLabel
	if label == "" {
		label = cfg.Ingest.DataDir
	}

	batch := postgres.ImportBatch{
		ID:         uuid.New().String(),
		Source:     label,
		Imported:   total.imported,
		Skipped:    total.skipped,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	}
	if err := postgres.NewBatchRepository(pool).Record(ctx, batch); err != nil {
		return errors.Wrap(err, "record import batch")
	}

	lg.Info("Catalog ingest complete",
		zap.String("batch_id", batch.ID),
		zap.Int64("imported", total.imported),
		zap.Int64("skipped", total.skipped),
		zap.Duration("took", time.Since(startedAt)),
	)
	return nil
}

// ingester shares the duplicate filter and the batch writer across file
// workers.
type ingester struct {
	repo      product.Repository
	batchSize int

	mu   sync.Mutex
	seen *bloom.BloomFilter
}

// ingestAll processes every file concurrently, one worker per file.
func (ing *ingester) ingestAll(ctx context.Context, lg *zap.Logger, files []string) ([]fileResult, error) {
	results := make([]fileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(ing.ingestFile(ctx, lg, f, &results[i]))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (ing *ingester) ingestFile(ctx context.Context, lg *zap.Logger, path string, result *fileResult) func() error {
	return func() error {
		lg := lg.With(zap.String("file", filepath.Base(path)))

		batch := make([]*product.Product, 0, ing.batchSize)
		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			n, err := ing.repo.CreateBatch(ctx, batch)
			if err != nil {
				return errors.Wrapf(err, "write batch for %s", path)
			}
			result.imported += n
			batch = batch[:0]
			return nil
		}

		var lineNo int
		if err := streamGzFile(ctx, path, func(line []byte) error {
			lineNo++

			var p product.Product
			if err := p.Deserialize(line); err != nil {
				lg.Warn("Skipping malformed record", zap.Int("line", lineNo), zap.Error(err))
				result.skipped++
				return nil
			}

			if ing.isDuplicate(p.Serialize()) {
				result.skipped++
				return nil
			}

			batch = append(batch, &p)
			if len(batch) == ing.batchSize {
				return flush()
			}
			return nil
		}); err != nil {
			return err
		}

		if err := flush(); err != nil {
			return err
		}

		lg.Info("File complete",
			zap.Int("lines", lineNo),
			zap.Int64("imported", result.imported),
			zap.Int64("skipped", result.skipped),
		)
		return nil
	}
}

// isDuplicate reports whether the canonical record bytes were seen before in
// this run, remembering them if not. False positives drop unique records at
// the filter's configured rate.
func (ing *ingester) isDuplicate(record []byte) bool {
	ing.mu.Lock()
	defer ing.mu.Unlock()
	return ing.seen.TestAndAdd(record)
}

// streamGzFile opens a gzip-compressed file and calls fn for each non-empty
// line.
func streamGzFile(ctx context.Context, path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(scanner.Bytes()) == 0 {
			continue
		}
		if err := fn(scanner.Bytes()); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}
