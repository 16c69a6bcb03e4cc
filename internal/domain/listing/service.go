package listing

import (
	"context"
	"time"

	"shopper/internal/core/apperror"
	"shopper/internal/domain/filter"
	"shopper/pkg/logger"
)

const cacheKeyPrefix = "listing:v1:"

// Service is the listing engine entry point used by HTTP handlers.
type Service struct {
	registry *filter.Registry
	repo     Repo
	cache    CacheStore
	auditor  Auditor
	ttl      time.Duration
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithCache enables the response cache with the given TTL.
func WithCache(store CacheStore, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = store
		s.ttl = ttl
	}
}

// WithAuditor enables the bulk-mutation audit trail.
func WithAuditor(a Auditor) Option {
	return func(s *Service) {
		s.auditor = a
	}
}

// NewService builds a listing Service over the registry and repository.
func NewService(registry *filter.Registry, repo Repo, opts ...Option) *Service {
	s := &Service{
		registry: registry,
		repo:     repo,
		ttl:      5 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry exposes the entity registry for transport-layer lookups.
func (s *Service) Registry() *filter.Registry {
	return s.registry
}

// List parses the raw parameters for an entity, serves the page from
// cache when possible, and otherwise executes the compiled query and
// caches the result under the entity's tags.
func (s *Service) List(ctx context.Context, entity string, params filter.Params) (*PageResult, error) {
	q, err := s.registry.Parse(entity, params)
	if err != nil {
		return nil, err
	}
	cfg, err := s.registry.Get(entity)
	if err != nil {
		return nil, err
	}

	key := cacheKeyPrefix + filter.Signature(q)
	log := logger.FromContext(ctx).With("entity", cfg.Entity)

	if s.cache != nil {
		var cached PageResult
		hit, cerr := s.cache.Get(ctx, key, &cached)
		if cerr != nil {
			log.Warnw("listing cache read failed", "error", cerr)
		} else if hit {
			return &cached, nil
		}
	}

	page, err := s.repo.List(ctx, cfg, q)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cerr := s.cache.Set(ctx, key, page, s.ttl, s.cacheTags(cfg, q)...); cerr != nil {
			log.Warnw("listing cache write failed", "error", cerr)
		}
	}
	return page, nil
}

// cacheTags returns the invalidation tags for a cached page: the listed
// entity plus every entity reachable through its includes, so a bulk
// mutation on a related entity also evicts pages that embed its rows.
func (s *Service) cacheTags(cfg *filter.EntityConfig, q *filter.ParsedQuery) []string {
	tags := []string{EntityTag(cfg.Entity)}
	seen := map[string]struct{}{cfg.Entity: {}}
	for _, inc := range q.Include {
		rel, ok := cfg.RelationByName(inc)
		if !ok {
			continue
		}
		if _, dup := seen[rel.Entity]; dup {
			continue
		}
		seen[rel.Entity] = struct{}{}
		tags = append(tags, EntityTag(rel.Entity))
	}
	return tags
}

// BulkApply runs a state mutation over a set of entity IDs, invalidates
// the entity's cached pages and records an audit entry.
func (s *Service) BulkApply(ctx context.Context, entity string, action filter.Action, ids []string) (int64, error) {
	cfg, err := s.registry.Get(entity)
	if err != nil {
		return 0, err
	}
	if !cfg.SupportsAction(action) {
		return 0, apperror.NewInvalidBulkAction(cfg.Entity, string(action))
	}
	if len(ids) == 0 {
		return 0, apperror.NewValidation("ids must not be empty")
	}

	affected, err := s.repo.BulkApply(ctx, cfg, action, ids)
	if err != nil {
		return 0, err
	}

	log := logger.FromContext(ctx).With("entity", cfg.Entity, "action", action)

	if s.cache != nil {
		if cerr := s.cache.InvalidateTag(ctx, EntityTag(cfg.Entity)); cerr != nil {
			log.Warnw("listing cache invalidation failed", "error", cerr)
		}
	}
	if s.auditor != nil {
		if aerr := s.auditor.RecordBulk(ctx, cfg.Entity, action, ids, affected); aerr != nil {
			log.Warnw("bulk audit record failed", "error", aerr)
		}
	}
	return affected, nil
}
