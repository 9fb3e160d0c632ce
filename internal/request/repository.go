package request

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	ErrNotFound        = errors.New("request not found")
	ErrForbidden       = errors.New("not the owner of this request")
	ErrStatusConflict  = errors.New("request status does not allow this change")
	ErrUnknownLocation = errors.New("location does not exist")
	ErrEmptyField      = errors.New("title and description must not be blank")
)

type Repository interface {
	List(ctx context.Context, f Filter) ([]Request, error)
	ListByOwner(ctx context.Context, userID int) ([]Request, error)
	GetByID(ctx context.Context, id int) (Request, error)
	Create(ctx context.Context, r Request) (Request, error)
	// Update rewrites the editable fields of an open request.
	Update(ctx context.Context, r Request) (Request, error)
	// Transition moves a request to status `to` when its current status is
	// one of `from`; otherwise it reports ErrStatusConflict.
	Transition(ctx context.Context, id int, from []Status, to Status) (Request, error)
	CountByStatus(ctx context.Context, userID int) (map[Status]int, error)
}

type InMemoryRepository struct {
	mu       sync.RWMutex
	requests map[int]Request
	nextID   int
}

func NewInMemoryRepository(seed []Request) *InMemoryRepository {
	r := &InMemoryRepository{requests: make(map[int]Request, len(seed)), nextID: 1}
	for _, req := range seed {
		r.requests[req.ID] = req
		if req.ID >= r.nextID {
			r.nextID = req.ID + 1
		}
	}
	return r
}

func (r *InMemoryRepository) sorted(keep func(Request) bool) []Request {
	out := make([]Request, 0)
	for _, req := range r.requests {
		if keep(req) {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *InMemoryRepository) List(ctx context.Context, f Filter) ([]Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f = f.normalized()
	q := strings.ToLower(strings.TrimSpace(f.Query))
	all := r.sorted(func(req Request) bool {
		switch {
		case f.Status != "" && req.Status != f.Status:
			return false
		case f.LocationID > 0 && req.LocationID != f.LocationID:
			return false
		case f.CareType != "" && req.CareType != f.CareType:
			return false
		case q != "" && !strings.Contains(strings.ToLower(req.Title), q):
			return false
		}
		return true
	})
	if f.Offset >= len(all) {
		return []Request{}, nil
	}
	all = all[f.Offset:]
	if len(all) > f.Limit {
		all = all[:f.Limit]
	}
	return all, nil
}

func (r *InMemoryRepository) ListByOwner(ctx context.Context, userID int) ([]Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(func(req Request) bool { return req.UserID == userID }), nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int) (Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	return req, nil
}

func (r *InMemoryRepository) Create(ctx context.Context, req Request) (Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	req.CreatedAt, req.UpdatedAt = now, now
	if req.Status == "" {
		req.Status = StatusOpen
	}
	r.requests[req.ID] = req
	return req, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, req Request) (Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.requests[req.ID]
	if !ok {
		return Request{}, ErrNotFound
	}
	if existing.Status != StatusOpen {
		return Request{}, ErrStatusConflict
	}
	existing.LocationID = req.LocationID
	existing.Title = req.Title
	existing.Description = req.Description
	existing.CareType = req.CareType
	existing.StartDate = req.StartDate
	existing.Hours = req.Hours
	existing.Budget = req.Budget
	existing.UpdatedAt = time.Now().UTC()
	r.requests[req.ID] = existing
	return existing, nil
}

func (r *InMemoryRepository) Transition(ctx context.Context, id int, from []Status, to Status) (Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	if !statusIn(req.Status, from) {
		return Request{}, ErrStatusConflict
	}
	req.Status = to
	req.UpdatedAt = time.Now().UTC()
	r.requests[id] = req
	return req, nil
}

// Assign hands an open request to an assistant. The application package
// calls it when an offer is accepted.
func (r *InMemoryRepository) Assign(ctx context.Context, id, assistantID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return ErrNotFound
	}
	if req.Status != StatusOpen {
		return ErrStatusConflict
	}
	req.Status = StatusAssigned
	req.AssistantID = &assistantID
	req.UpdatedAt = time.Now().UTC()
	r.requests[id] = req
	return nil
}

func (r *InMemoryRepository) CountByStatus(ctx context.Context, userID int) (map[Status]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := map[Status]int{}
	for _, req := range r.requests {
		if req.UserID == userID {
			counts[req.Status]++
		}
	}
	return counts, nil
}

func statusIn(s Status, set []Status) bool {
	for _, candidate := range set {
		if s == candidate {
			return true
		}
	}
	return false
}
