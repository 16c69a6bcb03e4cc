// Package listing is the application layer of the admin listing engine.
// It ties the filter grammar, the query repository, the response cache
// and the audit trail together behind two operations: List and BulkApply.
package listing

import (
	"context"
	"time"

	"shopper/internal/domain/filter"
)

// Row is one result record. Listings are schema-driven, so rows are
// generic maps rather than per-entity structs; included relations hang
// off the row under the relation name.
type Row = map[string]any

// PageResult is one page of a listing, with the pagination frame the
// API layer needs to render meta and links.
type PageResult struct {
	Data     []Row `json:"data"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PerPage  int   `json:"per_page"`
	LastPage int   `json:"last_page"`
}

// Repo executes compiled listing queries and bulk mutations against the
// data store.
type Repo interface {
	List(ctx context.Context, cfg *filter.EntityConfig, q *filter.ParsedQuery) (*PageResult, error)
	BulkApply(ctx context.Context, cfg *filter.EntityConfig, action filter.Action, ids []string) (int64, error)
}

// CacheStore is a tag-aware response cache. Get reports a miss with
// (false, nil); errors from any method must be treated as soft by the
// caller and never fail the request.
type CacheStore interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration, tags ...string) error
	InvalidateTag(ctx context.Context, tag string) error
}

// Auditor records bulk mutations for the audit trail. Failures are
// logged, not propagated.
type Auditor interface {
	RecordBulk(ctx context.Context, entity string, action filter.Action, ids []string, affected int64) error
}

// EntityTag is the cache tag under which every cached page mentioning
// the entity is registered.
func EntityTag(entity string) string {
	return "entity:" + entity
}
