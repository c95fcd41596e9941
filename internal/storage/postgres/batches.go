package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const insertImportBatchSQL = `INSERT INTO import_batches (id, source, imported, skipped, started_at, finished_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

// ImportBatch is the audit record of one bulk-ingest run.
type ImportBatch struct {
	ID         string
	Source     string
	Imported   int64
	Skipped    int64
	StartedAt  time.Time
	FinishedAt time.Time
}

// BatchRepository records bulk-ingest runs.
type BatchRepository struct {
	pool *pgxpool.Pool
}

// NewBatchRepository returns a BatchRepository that uses the given pool.
func NewBatchRepository(pool *pgxpool.Pool) *BatchRepository {
	return &BatchRepository{pool: pool}
}

// Record inserts the audit row for one completed run.
func (r *BatchRepository) Record(ctx context.Context, b ImportBatch) error {
	_, err := r.pool.Exec(ctx, insertImportBatchSQL,
		b.ID, b.Source, b.Imported, b.Skipped, b.StartedAt, b.FinishedAt)
	if err != nil {
		return fmt.Errorf("recording import batch %s: %w", b.ID, err)
	}
	return nil
}
