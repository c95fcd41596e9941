package telemetry

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/xajezade/tdd-bdd-final-project/internal/domain/product"
	"github.com/xajezade/tdd-bdd-final-project/internal/domain/product/producttest"
	"github.com/xajezade/tdd-bdd-final-project/internal/storage/inmemory"
)

func newTestRepository(t *testing.T, inner product.Repository) *Repository {
	t.Helper()
	repo, err := NewRepository(inner, tracenoop.NewTracerProvider(), metricnoop.NewMeterProvider())
	require.NoError(t, err)
	return repo
}

func TestRepositoryDelegates(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, inmemory.NewProductRepository())

	p := producttest.New()
	require.NoError(t, repo.Create(ctx, p))
	assert.NotZero(t, p.ID)

	got, found, err := repo.Find(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, p.Name, got.Name)

	p.Description = "changed"
	require.NoError(t, repo.Update(ctx, p))

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "changed", all[0].Description)

	count, err := repo.FindByName(p.Name).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	n, err := repo.CreateBatch(ctx, producttest.Batch(3))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	require.NoError(t, repo.Delete(ctx, p))
	require.NoError(t, repo.DeleteAll(ctx))

	all, err = repo.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRepositoryPropagatesValidationErrors(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, inmemory.NewProductRepository())

	p := producttest.New()
	err := repo.Update(ctx, p)

	var verr *product.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "update called with empty ID field", verr.Reason)
}

func TestRepositoryPropagatesStorageErrors(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, failingRepo{})

	assert.ErrorIs(t, repo.Create(ctx, producttest.New()), errFail)

	_, err := repo.CreateBatch(ctx, producttest.Batch(2))
	assert.ErrorIs(t, err, errFail)

	assert.ErrorIs(t, repo.DeleteAll(ctx), errFail)

	_, _, err = repo.Find(ctx, 1)
	assert.ErrorIs(t, err, errFail)

	_, err = repo.FindByAvailability(true).Count(ctx)
	assert.ErrorIs(t, err, errFail)

	err = repo.FindByCategory(product.CategoryTools).Each(ctx, func(*product.Product) error { return nil })
	assert.ErrorIs(t, err, errFail)
}

var errFail = errors.New("storage offline")

// failingRepo returns errFail from every operation.
type failingRepo struct{}

func (failingRepo) Create(context.Context, *product.Product) error { return errFail }

func (failingRepo) CreateBatch(context.Context, []*product.Product) (int64, error) {
	return 0, errFail
}

func (failingRepo) Update(context.Context, *product.Product) error { return errFail }

func (failingRepo) Delete(context.Context, *product.Product) error { return errFail }

func (failingRepo) DeleteAll(context.Context) error { return errFail }

func (failingRepo) All(context.Context) ([]*product.Product, error) { return nil, errFail }

func (failingRepo) Find(context.Context, int64) (*product.Product, bool, error) {
	return nil, false, errFail
}

func (failingRepo) FindByName(string) product.Query { return failingQuery{} }

func (failingRepo) FindByAvailability(bool) product.Query { return failingQuery{} }

func (failingRepo) FindByCategory(product.Category) product.Query { return failingQuery{} }

func (failingRepo) FindByPrice(decimal.Decimal) product.Query { return failingQuery{} }

type failingQuery struct{}

func (failingQuery) Count(context.Context) (int64, error) { return 0, errFail }

func (failingQuery) All(context.Context) ([]*product.Product, error) { return nil, errFail }

func (failingQuery) Each(context.Context, func(p *product.Product) error) error { return errFail }
