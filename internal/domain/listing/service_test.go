package listing_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopper/internal/core/apperror"
	"shopper/internal/domain/filter"
	"shopper/internal/domain/listing"
	"shopper/internal/infrastructure/cache"
)

type fakeRepo struct {
	listCalls int
	bulkCalls int
	affected  int64

	lastAction filter.Action
	lastIDs    []string
}

func (f *fakeRepo) List(_ context.Context, _ *filter.EntityConfig, q *filter.ParsedQuery) (*listing.PageResult, error) {
	f.listCalls++
	return &listing.PageResult{
		Data:     []listing.Row{{"id": "p1"}},
		Total:    1,
		Page:     q.Page,
		PerPage:  q.PerPage,
		LastPage: 1,
	}, nil
}

func (f *fakeRepo) BulkApply(_ context.Context, _ *filter.EntityConfig, action filter.Action, ids []string) (int64, error) {
	f.bulkCalls++
	f.lastAction = action
	f.lastIDs = ids
	return f.affected, nil
}

type fakeAuditor struct {
	entity   string
	action   filter.Action
	ids      []string
	affected int64
}

func (f *fakeAuditor) RecordBulk(_ context.Context, entity string, action filter.Action, ids []string, affected int64) error {
	f.entity = entity
	f.action = action
	f.ids = ids
	f.affected = affected
	return nil
}

// brokenCache fails every operation; the service must ignore it.
type brokenCache struct{}

func (brokenCache) Get(context.Context, string, any) (bool, error) {
	return false, errors.New("redis down")
}
func (brokenCache) Set(context.Context, string, any, time.Duration, ...string) error {
	return errors.New("redis down")
}
func (brokenCache) InvalidateTag(context.Context, string) error {
	return errors.New("redis down")
}

func registry() *filter.Registry {
	r := filter.NewRegistry()
	r.Register(&filter.EntityConfig{
		Entity:     "products",
		Table:      "products",
		Columns:    []string{"id", "name", "status", "brand_id"},
		Filterable: []string{"name", "status", "brand_id"},
		Sortable:   []string{"name"},
		Relations: []filter.Relation{
			{Name: "brand", Entity: "brands", Table: "brands", ForeignKey: "brand_id", LocalKey: "id", Kind: filter.BelongsTo},
		},
		StateColumn:  "status",
		EnableValue:  "active",
		DisableValue: "disabled",
		Actions:      []filter.Action{filter.ActionEnable, filter.ActionDisable, filter.ActionDelete},
	})
	return r
}

func TestList_ServesSecondRequestFromCache(t *testing.T) {
	repo := &fakeRepo{}
	svc := listing.NewService(registry(), repo,
		listing.WithCache(cache.NewMemoryStore(), time.Minute))
	ctx := context.Background()

	first, err := svc.List(ctx, "products", filter.Params{"status": "active"})
	require.NoError(t, err)
	second, err := svc.List(ctx, "products", filter.Params{"status": "active"})
	require.NoError(t, err)

	assert.Equal(t, 1, repo.listCalls)
	assert.Equal(t, first.Total, second.Total)
}

func TestList_CacheKeyIgnoresFilterOrder(t *testing.T) {
	repo := &fakeRepo{}
	svc := listing.NewService(registry(), repo,
		listing.WithCache(cache.NewMemoryStore(), time.Minute))
	ctx := context.Background()

	_, err := svc.List(ctx, "products", filter.Params{
		"status": "active",
		"name":   map[string]string{"like": "run"},
	})
	require.NoError(t, err)

	_, err = svc.List(ctx, "products", filter.Params{
		"name":   map[string]string{"like": "run"},
		"status": "active",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, repo.listCalls)
}

// richRepo returns rows spanning the JSON value kinds so the cached
// round trip is exercised against strings, numbers, booleans, nulls
// and nested objects alike.
type richRepo struct {
	listCalls int
}

func (f *richRepo) List(_ context.Context, _ *filter.EntityConfig, q *filter.ParsedQuery) (*listing.PageResult, error) {
	f.listCalls++
	return &listing.PageResult{
		Data: []listing.Row{
			{
				"id":       "p1",
				"name":     "Trail Runner",
				"price":    149.99,
				"stock":    float64(12),
				"active":   true,
				"brand_id": nil,
				"brand":    map[string]any{"id": "b1", "name": "Nike"},
			},
			{
				"id":     "p2",
				"name":   "Road Flat",
				"price":  89.5,
				"stock":  float64(0),
				"active": false,
				"brand":  nil,
			},
		},
		Total:    2,
		Page:     q.Page,
		PerPage:  q.PerPage,
		LastPage: 1,
	}, nil
}

func (f *richRepo) BulkApply(context.Context, *filter.EntityConfig, filter.Action, []string) (int64, error) {
	return 0, nil
}

func TestList_CachedResponseMatchesUncached(t *testing.T) {
	cachedRepo := &richRepo{}
	cached := listing.NewService(registry(), cachedRepo,
		listing.WithCache(cache.NewMemoryStore(), time.Minute))
	plain := listing.NewService(registry(), &richRepo{})
	ctx := context.Background()

	params := filter.Params{"status": "active", "include": "brand"}

	fresh, err := cached.List(ctx, "products", params)
	require.NoError(t, err)
	hit, err := cached.List(ctx, "products", params)
	require.NoError(t, err)
	require.Equal(t, 1, cachedRepo.listCalls)
	uncached, err := plain.List(ctx, "products", params)
	require.NoError(t, err)

	// Clients must not be able to tell a cache hit from a computed
	// page: all three serialize to the same bytes.
	freshJSON, err := json.Marshal(fresh)
	require.NoError(t, err)
	hitJSON, err := json.Marshal(hit)
	require.NoError(t, err)
	uncachedJSON, err := json.Marshal(uncached)
	require.NoError(t, err)

	assert.Equal(t, string(freshJSON), string(hitJSON))
	assert.Equal(t, string(freshJSON), string(uncachedJSON))
}

func TestList_CacheFailureDegradesToCompute(t *testing.T) {
	repo := &fakeRepo{}
	svc := listing.NewService(registry(), repo,
		listing.WithCache(brokenCache{}, time.Minute))

	page, err := svc.List(context.Background(), "products", filter.Params{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, repo.listCalls)
}

func TestList_WithoutCacheAlwaysComputes(t *testing.T) {
	repo := &fakeRepo{}
	svc := listing.NewService(registry(), repo)
	ctx := context.Background()

	_, err := svc.List(ctx, "products", filter.Params{})
	require.NoError(t, err)
	_, err = svc.List(ctx, "products", filter.Params{})
	require.NoError(t, err)

	assert.Equal(t, 2, repo.listCalls)
}

func TestBulkApply_InvalidatesCachedPages(t *testing.T) {
	repo := &fakeRepo{affected: 1}
	svc := listing.NewService(registry(), repo,
		listing.WithCache(cache.NewMemoryStore(), time.Minute))
	ctx := context.Background()

	_, err := svc.List(ctx, "products", filter.Params{})
	require.NoError(t, err)

	affected, err := svc.BulkApply(ctx, "products", filter.ActionDisable, []string{"p1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	_, err = svc.List(ctx, "products", filter.Params{})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
}

func TestBulkApply_InvalidatesPagesEmbeddingTheEntity(t *testing.T) {
	r := registry()
	r.Register(&filter.EntityConfig{
		Entity:  "brands",
		Table:   "brands",
		Columns: []string{"id", "name"},
		Actions: []filter.Action{filter.ActionDelete},
	})
	repo := &fakeRepo{affected: 1}
	svc := listing.NewService(r, repo,
		listing.WithCache(cache.NewMemoryStore(), time.Minute))
	ctx := context.Background()

	// Product pages that include brand rows carry the brands tag too.
	_, err := svc.List(ctx, "products", filter.Params{"include": "brand"})
	require.NoError(t, err)

	_, err = svc.BulkApply(ctx, "brands", filter.ActionDelete, []string{"b1"})
	require.NoError(t, err)

	_, err = svc.List(ctx, "products", filter.Params{"include": "brand"})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
}

func TestBulkApply_RejectsUnsupportedAction(t *testing.T) {
	r := registry()
	r.Register(&filter.EntityConfig{
		Entity:  "orders",
		Table:   "orders",
		Actions: []filter.Action{filter.ActionDelete},
	})
	svc := listing.NewService(r, &fakeRepo{})

	_, err := svc.BulkApply(context.Background(), "orders", filter.ActionEnable, []string{"o1"})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidBulkAction))
}

func TestBulkApply_RejectsEmptyIDs(t *testing.T) {
	svc := listing.NewService(registry(), &fakeRepo{})

	_, err := svc.BulkApply(context.Background(), "products", filter.ActionEnable, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestBulkApply_RecordsAudit(t *testing.T) {
	repo := &fakeRepo{affected: 3}
	auditor := &fakeAuditor{}
	svc := listing.NewService(registry(), repo, listing.WithAuditor(auditor))

	_, err := svc.BulkApply(context.Background(), "products", filter.ActionEnable, []string{"p1", "p2", "p3"})
	require.NoError(t, err)

	assert.Equal(t, "products", auditor.entity)
	assert.Equal(t, filter.ActionEnable, auditor.action)
	assert.Equal(t, []string{"p1", "p2", "p3"}, auditor.ids)
	assert.Equal(t, int64(3), auditor.affected)
}
