package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"shopper/internal/core/apperror"
)

var tracer = otel.Tracer("shopper/postgres")

// Store executes listing SQL against the pool and returns generic rows.
// Listings are schema-driven, so results come back as maps rather than
// scanned structs.
type Store struct {
	pool *Pool
}

// NewStore creates a Store over the connection pool.
func NewStore(pool *Pool) *Store {
	return &Store{pool: pool}
}

// Select runs a query and collects every row into a column-keyed map.
func (s *Store) Select(ctx context.Context, sql string, args []any) ([]map[string]any, error) {
	ctx, span := tracer.Start(ctx, "postgres.select",
		trace.WithAttributes(attribute.String("db.statement", sql)))
	defer span.End()

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.NewDataStore(err)
	}

	result, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.NewDataStore(err)
	}
	return result, nil
}

// Count runs a single-value count query.
func (s *Store) Count(ctx context.Context, sql string, args []any) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.count",
		trace.WithAttributes(attribute.String("db.statement", sql)))
	defer span.End()

	var total int64
	if err := s.pool.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		span.RecordError(err)
		return 0, apperror.NewDataStore(err)
	}
	return total, nil
}

// Exec runs a mutation and returns the affected row count.
func (s *Store) Exec(ctx context.Context, sql string, args []any) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.exec",
		trace.WithAttributes(attribute.String("db.statement", sql)))
	defer span.End()

	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		span.RecordError(err)
		return 0, apperror.NewDataStore(err)
	}
	return tag.RowsAffected(), nil
}
