package properties

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Invalidator drops a cached view of the property collection.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// ServiceConfig holds service configuration.
type ServiceConfig struct {
	// InvalidateOnWrite drops the id set and cached list responses after
	// every successful create, update and delete. When false, cached views
	// are only refreshed by TTL expiry.
	InvalidateOnWrite bool

	// Invalidators run in order after writes when InvalidateOnWrite is set.
	// The IDCache is always included.
	Invalidators []Invalidator
}

// Service serves property reads through the identifier cache and writes
// straight to the repository.
type Service struct {
	repo         Repository
	ids          *IDCache
	invalidate   bool
	invalidators []Invalidator
	logger       zerolog.Logger
}

// NewService creates a property service.
func NewService(repo Repository, ids *IDCache, cfg ServiceConfig, logger zerolog.Logger) *Service {
	if repo == nil {
		panic("repository cannot be nil")
	}
	if ids == nil {
		panic("id cache cannot be nil")
	}

	invalidators := append([]Invalidator{ids}, cfg.Invalidators...)

	return &Service{
		repo:         repo,
		ids:          ids,
		invalidate:   cfg.InvalidateOnWrite,
		invalidators: invalidators,
		logger:       logger,
	}
}

// List returns every property in the cached id set that still exists.
// Properties are ordered as in the id set; ids deleted since the set was
// cached are silently absent.
func (s *Service) List(ctx context.Context) ([]Property, error) {
	ids, err := s.ids.ResolveIDs(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Property{}, nil
	}

	found, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find properties by id: %w", err)
	}

	return orderByIDs(ids, found), nil
}

// Get returns a single property, bypassing every cache.
func (s *Service) Get(ctx context.Context, id int64) (*Property, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and stores a new property.
func (s *Service) Create(ctx context.Context, p *Property) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	s.afterWrite(ctx, "create", p.ID)
	return nil
}

// Update validates and replaces an existing property.
func (s *Service) Update(ctx context.Context, p *Property) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	s.afterWrite(ctx, "update", p.ID)
	return nil
}

// Delete removes a property.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.afterWrite(ctx, "delete", id)
	return nil
}

// afterWrite runs the invalidators. Failures are logged and never fail the
// write; the affected entries fall back to TTL expiry.
func (s *Service) afterWrite(ctx context.Context, op string, id int64) {
	if !s.invalidate {
		return
	}
	for _, inv := range s.invalidators {
		if err := inv.Invalidate(ctx); err != nil {
			s.logger.Warn().
				Err(err).
				Str("operation", op).
				Int64("property_id", id).
				Msg("Cache invalidation failed, entries will expire by TTL")
		}
	}
}

// orderByIDs arranges found in the order of ids, dropping nothing and
// inventing nothing.
func orderByIDs(ids []int64, found []Property) []Property {
	byID := make(map[int64]Property, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	out := make([]Property, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
			delete(byID, id)
		}
	}
	return out
}
