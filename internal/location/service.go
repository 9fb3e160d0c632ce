package location

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	listCacheKey = "carehub:locations"
	listCacheTTL = 5 * time.Minute
)

// Cache is the subset of the Redis cache the service needs.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type Service struct {
	repo  Repository
	cache Cache
	log   *zap.Logger
}

func NewService(repo Repository, cache Cache, log *zap.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

// List serves the location list from the cache and falls back to the
// repository on a miss or a cache error.
func (s *Service) List(ctx context.Context) ([]Location, error) {
	var cached []Location
	if s.cache != nil {
		hit, err := s.cache.GetJSON(ctx, listCacheKey, &cached)
		if err != nil {
			s.log.Warn("read location cache", zap.Error(err))
		} else if hit {
			return cached, nil
		}
	}

	locations, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, listCacheKey, locations, listCacheTTL); err != nil {
			s.log.Warn("write location cache", zap.Error(err))
		}
	}
	return locations, nil
}

func (s *Service) GetByID(ctx context.Context, id int) (Location, error) {
	if id <= 0 {
		return Location{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, name, province string) (Location, error) {
	l, err := s.repo.Create(ctx, Location{Name: strings.TrimSpace(name), Province: strings.TrimSpace(province)})
	if err != nil {
		return Location{}, err
	}
	s.invalidate(ctx)
	return l, nil
}

// Update changes the fields that are set and keeps the rest.
func (s *Service) Update(ctx context.Context, id int, name, province *string) (Location, error) {
	l, err := s.GetByID(ctx, id)
	if err != nil {
		return Location{}, err
	}
	if name != nil {
		l.Name = strings.TrimSpace(*name)
	}
	if province != nil {
		l.Province = strings.TrimSpace(*province)
	}
	updated, err := s.repo.Update(ctx, l)
	if err != nil {
		return Location{}, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, listCacheKey); err != nil {
		s.log.Warn("invalidate location cache", zap.Error(err))
	}
}
