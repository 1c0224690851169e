package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"bookshelf-backend/internal/domains/entry/model"
	"bookshelf-backend/internal/domains/entry/repository"
	"bookshelf-backend/internal/domains/entry/resolver"
	"bookshelf-backend/pkg/cache"

	"github.com/rs/zerolog/log"
)

// EntryService implements ServiceInterface.
type EntryService struct {
	repo    repository.Repository
	cache   cache.Cache
	listTTL time.Duration

	// listGen counts list invalidations. A list read only fills the cache
	// when no mutation happened while it was reading the store.
	listGen atomic.Uint64
}

// NewService - constructor with DI
func NewService(repo repository.Repository, cache cache.Cache, listTTL time.Duration) *EntryService {
	return &EntryService{
		repo:    repo,
		cache:   cache,
		listTTL: listTTL,
	}
}

var _ ServiceInterface = (*EntryService)(nil)

// CreateEntry refuses an exact-title duplicate, then inserts.
func (s *EntryService) CreateEntry(ctx context.Context, req model.CreateEntryRequest) (*model.EntryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	exists, err := s.repo.ExistsByTitle(ctx, req.Title)
	if err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}
	if exists {
		return nil, model.ErrDuplicateEntry
	}

	created, err := s.repo.Create(ctx, req.ToEntry())
	if err != nil {
		return nil, err
	}
	s.invalidateList(ctx)

	log.Info().Str("title", created.Title).Msg("[EntryService] Entry created")
	resp := model.ToResponse(created)
	return &resp, nil
}

// ListEntries returns every entry, read through the cache.
func (s *EntryService) ListEntries(ctx context.Context) ([]model.EntryResponse, error) {
	var cached []model.EntryResponse
	found, err := s.cache.Get(ctx, model.CacheKeyAllEntries, &cached)
	if err != nil {
		log.Warn().Err(err).Str("key", model.CacheKeyAllEntries).Msg("[EntryService] Cache read failed")
	}
	if found {
		return cached, nil
	}

	gen := s.listGen.Load()
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	result := model.ToResponses(entries)
	if s.listGen.Load() != gen {
		return result, nil
	}
	// A mutation landing between this check and Set can still leave a stale
	// payload in a shared cache until listTTL expires.
	if err := s.cache.Set(ctx, model.CacheKeyAllEntries, result, s.listTTL); err != nil {
		log.Warn().Err(err).Str("key", model.CacheKeyAllEntries).Msg("[EntryService] Cache write failed")
	}
	return result, nil
}

// GetEntry resolves query against the stored titles and returns the match.
func (s *EntryService) GetEntry(ctx context.Context, query string) (*model.EntryResponse, error) {
	title, err := s.resolveTitle(ctx, query)
	if err != nil {
		return nil, err
	}

	e, err := s.repo.GetByTitle(ctx, title)
	if err != nil {
		return nil, err
	}

	resp := model.ToResponse(e)
	return &resp, nil
}

// UpdateEntry resolves req.Title and merges the present fields into the entry.
func (s *EntryService) UpdateEntry(ctx context.Context, req model.UpdateEntryRequest) (*model.EntryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	title, err := s.resolveTitle(ctx, req.Title)
	if err != nil {
		return nil, err
	}

	var changed []string
	updated, err := s.repo.Update(ctx, title, func(e *model.Entry) error {
		changed = model.Merge(e, req)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(changed) > 0 {
		s.invalidateList(ctx)
	}

	log.Info().
		Str("query", req.Title).
		Str("title", title).
		Strs("changed", changed).
		Msg("[EntryService] Entry updated")

	resp := model.ToResponse(updated)
	return &resp, nil
}

// DeleteEntry resolves query, deletes the match and echoes the query back.
func (s *EntryService) DeleteEntry(ctx context.Context, query string) (string, error) {
	title, err := s.resolveTitle(ctx, query)
	if err != nil {
		return "", err
	}

	if err := s.repo.Delete(ctx, title); err != nil {
		return "", err
	}
	s.invalidateList(ctx)

	log.Info().Str("query", query).Str("title", title).Msg("[EntryService] Entry deleted")
	return model.DeletedMessage(query), nil
}

// Health pings the store and the cache. Cache failure only degrades.
func (s *EntryService) Health(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := s.cache.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("[EntryService] Cache ping failed")
	}
	return nil
}

// ============================================
// HELPERS
// ============================================

func (s *EntryService) resolveTitle(ctx context.Context, query string) (string, error) {
	titles, err := s.repo.ListTitles(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve title: %w", err)
	}

	title, ok := resolver.Resolve(query, titles)
	if !ok {
		return "", model.ErrEntryNotFound
	}
	return title, nil
}

func (s *EntryService) invalidateList(ctx context.Context) {
	s.listGen.Add(1)
	if err := s.cache.Delete(ctx, model.CacheKeyAllEntries); err != nil {
		log.Warn().Err(err).Str("key", model.CacheKeyAllEntries).Msg("[EntryService] Cache invalidation failed")
	}
}
