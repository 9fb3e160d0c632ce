package location

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	ErrNotFound   = errors.New("location not found")
	ErrNameExists = errors.New("location name already exists")
	ErrInUse      = errors.New("location is still referenced")
)

type Repository interface {
	List(ctx context.Context) ([]Location, error)
	GetByID(ctx context.Context, id int) (Location, error)
	Create(ctx context.Context, l Location) (Location, error)
	Update(ctx context.Context, l Location) (Location, error)
	Delete(ctx context.Context, id int) error
}

type InMemoryRepository struct {
	mu        sync.RWMutex
	locations map[int]Location
	nextID    int
}

func NewInMemoryRepository(seed []Location) *InMemoryRepository {
	r := &InMemoryRepository{locations: make(map[int]Location, len(seed)), nextID: 1}
	for _, l := range seed {
		r.locations[l.ID] = l
		if l.ID >= r.nextID {
			r.nextID = l.ID + 1
		}
	}
	return r
}

func (r *InMemoryRepository) List(ctx context.Context) ([]Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Location, 0, len(r.locations))
	for _, l := range r.locations {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int) (Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.locations[id]
	if !ok {
		return Location{}, ErrNotFound
	}
	return l, nil
}

func (r *InMemoryRepository) nameTaken(name string, except int) bool {
	for id, l := range r.locations {
		if id != except && strings.EqualFold(l.Name, name) {
			return true
		}
	}
	return false
}

func (r *InMemoryRepository) Create(ctx context.Context, l Location) (Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nameTaken(l.Name, 0) {
		return Location{}, ErrNameExists
	}
	l.ID = r.nextID
	r.nextID++
	l.CreatedAt = time.Now().UTC()
	r.locations[l.ID] = l
	return l, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, l Location) (Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.locations[l.ID]
	if !ok {
		return Location{}, ErrNotFound
	}
	if r.nameTaken(l.Name, l.ID) {
		return Location{}, ErrNameExists
	}
	l.CreatedAt = existing.CreatedAt
	r.locations[l.ID] = l
	return l, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.locations[id]; !ok {
		return ErrNotFound
	}
	delete(r.locations, id)
	return nil
}
