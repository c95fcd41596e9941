// Package telemetry decorates a product repository with OpenTelemetry spans
// and operation counters. It works over any product.Repository, so both the
// PostgreSQL and the in-memory engines can be observed the same way.
package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xajezade/tdd-bdd-final-project/internal/domain/product"
)

const scopeName = "github.com/xajezade/tdd-bdd-final-project/internal/storage/telemetry"

var _ product.Repository = (*Repository)(nil)

// Repository wraps another product.Repository, recording one span per
// operation and counting outcomes on the products.operations counter.
type Repository struct {
	inner      product.Repository
	tracer     trace.Tracer
	operations metric.Int64Counter
}

// NewRepository decorates inner with the given providers. Noop providers
// are fine.
func NewRepository(inner product.Repository, tp trace.TracerProvider, mp metric.MeterProvider) (*Repository, error) {
	operations, err := mp.Meter(scopeName).Int64Counter("products.operations",
		metric.WithDescription("Product repository operations by outcome"),
	)
	if err != nil {
		return nil, err
	}
	return &Repository{
		inner:      inner,
		tracer:     tp.Tracer(scopeName),
		operations: operations,
	}, nil
}

// record closes the span and counts the operation outcome.
func (r *Repository) record(ctx context.Context, span trace.Span, op string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	r.operations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("result", result),
	))
	span.End()
}

func (r *Repository) Create(ctx context.Context, p *product.Product) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Create")
	err := r.inner.Create(ctx, p)
	if err == nil {
		span.SetAttributes(attribute.Int64("product.id", p.ID))
	}
	r.record(ctx, span, "create", err)
	return err
}

func (r *Repository) CreateBatch(ctx context.Context, products []*product.Product) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.CreateBatch",
		trace.WithAttributes(attribute.Int("batch.size", len(products))))
	n, err := r.inner.CreateBatch(ctx, products)
	r.record(ctx, span, "create_batch", err)
	return n, err
}

func (r *Repository) Update(ctx context.Context, p *product.Product) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Update",
		trace.WithAttributes(attribute.Int64("product.id", p.ID)))
	err := r.inner.Update(ctx, p)
	r.record(ctx, span, "update", err)
	return err
}

func (r *Repository) Delete(ctx context.Context, p *product.Product) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Delete",
		trace.WithAttributes(attribute.Int64("product.id", p.ID)))
	err := r.inner.Delete(ctx, p)
	r.record(ctx, span, "delete", err)
	return err
}

func (r *Repository) DeleteAll(ctx context.Context) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.DeleteAll")
	err := r.inner.DeleteAll(ctx)
	r.record(ctx, span, "delete_all", err)
	return err
}

func (r *Repository) All(ctx context.Context) ([]*product.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.All")
	products, err := r.inner.All(ctx)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(products)))
	}
	r.record(ctx, span, "all", err)
	return products, err
}

func (r *Repository) Find(ctx context.Context, id int64) (*product.Product, bool, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Find",
		trace.WithAttributes(attribute.Int64("product.id", id)))
	p, found, err := r.inner.Find(ctx, id)
	if err == nil {
		span.SetAttributes(attribute.Bool("product.found", found))
	}
	r.record(ctx, span, "find", err)
	return p, found, err
}

func (r *Repository) FindByName(name string) product.Query {
	return &query{
		inner: r.inner.FindByName(name),
		repo:  r,
		span:  "ProductRepository.FindByName",
		op:    "find_by_name",
		attrs: []attribute.KeyValue{attribute.String("product.name", name)},
	}
}

func (r *Repository) FindByAvailability(available bool) product.Query {
	return &query{
		inner: r.inner.FindByAvailability(available),
		repo:  r,
		span:  "ProductRepository.FindByAvailability",
		op:    "find_by_availability",
		attrs: []attribute.KeyValue{attribute.Bool("product.available", available)},
	}
}

func (r *Repository) FindByCategory(category product.Category) product.Query {
	return &query{
		inner: r.inner.FindByCategory(category),
		repo:  r,
		span:  "ProductRepository.FindByCategory",
		op:    "find_by_category",
		attrs: []attribute.KeyValue{attribute.String("product.category", category.String())},
	}
}

func (r *Repository) FindByPrice(price decimal.Decimal) product.Query {
	return &query{
		inner: r.inner.FindByPrice(price),
		repo:  r,
		span:  "ProductRepository.FindByPrice",
		op:    "find_by_price",
		attrs: []attribute.KeyValue{attribute.String("product.price", price.String())},
	}
}

// query wraps a lazy selection so its evaluations are traced as well.
type query struct {
	inner product.Query
	repo  *Repository
	span  string
	op    string
	attrs []attribute.KeyValue
}

func (q *query) Count(ctx context.Context) (int64, error) {
	ctx, span := q.repo.tracer.Start(ctx, q.span+".Count", trace.WithAttributes(q.attrs...))
	n, err := q.inner.Count(ctx)
	q.repo.record(ctx, span, q.op, err)
	return n, err
}

func (q *query) All(ctx context.Context) ([]*product.Product, error) {
	ctx, span := q.repo.tracer.Start(ctx, q.span+".All", trace.WithAttributes(q.attrs...))
	products, err := q.inner.All(ctx)
	q.repo.record(ctx, span, q.op, err)
	return products, err
}

func (q *query) Each(ctx context.Context, fn func(p *product.Product) error) error {
	ctx, span := q.repo.tracer.Start(ctx, q.span+".Each", trace.WithAttributes(q.attrs...))
	err := q.inner.Each(ctx, fn)
	q.repo.record(ctx, span, q.op, err)
	return err
}
