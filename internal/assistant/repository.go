package assistant

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var ErrNotFound = errors.New("assistant not found")

type Repository interface {
	List(ctx context.Context, f Filter) ([]Profile, error)
	GetByID(ctx context.Context, userID int) (Profile, error)
	// Upsert creates the profile or replaces its editable fields.
	Upsert(ctx context.Context, p Profile) (Profile, error)
}

type InMemoryRepository struct {
	mu       sync.RWMutex
	profiles map[int]Profile
}

func NewInMemoryRepository(seed []Profile) *InMemoryRepository {
	r := &InMemoryRepository{profiles: make(map[int]Profile, len(seed))}
	for _, p := range seed {
		r.profiles[p.UserID] = p
	}
	return r
}

func (r *InMemoryRepository) List(ctx context.Context, f Filter) ([]Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		if f.LocationID > 0 && (p.LocationID == nil || *p.LocationID != f.LocationID) {
			continue
		}
		if f.Available != nil && p.Available != *f.Available {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, userID int) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

func (r *InMemoryRepository) Upsert(ctx context.Context, p Profile) (Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := r.profiles[p.UserID]; ok {
		p.CreatedAt = existing.CreatedAt
	} else {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Skills == nil {
		p.Skills = []string{}
	}
	r.profiles[p.UserID] = p
	return p, nil
}
