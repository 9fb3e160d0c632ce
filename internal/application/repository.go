package application

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/wichananm65/carehub-backend/internal/request"
)

var (
	ErrNotFound       = errors.New("application not found")
	ErrAlreadyApplied = errors.New("already applied to this request")
	ErrNotPending     = errors.New("application is no longer pending")
	ErrRequestNotOpen = errors.New("request is not open")
	ErrForbidden      = errors.New("not allowed to manage this application")
)

type Repository interface {
	Create(ctx context.Context, a Application) (Application, error)
	GetByID(ctx context.Context, id int) (Application, error)
	ListByRequest(ctx context.Context, requestID int) ([]Application, error)
	ListByAssistant(ctx context.Context, assistantID int) ([]Application, error)
	// Accept marks a pending application accepted, rejects the other pending
	// applications of the request and assigns the request, all or nothing.
	Accept(ctx context.Context, a Application) error
	SetStatus(ctx context.Context, id int, from, to Status) (Application, error)
	CountByStatus(ctx context.Context, assistantID int) (map[Status]int, error)
	CountPendingForOwner(ctx context.Context, ownerID int) (int, error)
	LatestForOwner(ctx context.Context, ownerID, limit int) ([]Application, error)
}

// RequestStore is what the in-memory repository needs from the request
// repository to emulate the joins and the accept transaction.
type RequestStore interface {
	GetByID(ctx context.Context, id int) (request.Request, error)
	Assign(ctx context.Context, id, assistantID int) error
}

type InMemoryRepository struct {
	mu       sync.Mutex
	apps     map[int]Application
	nextID   int
	requests RequestStore
}

func NewInMemoryRepository(seed []Application, requests RequestStore) *InMemoryRepository {
	r := &InMemoryRepository{apps: make(map[int]Application, len(seed)), nextID: 1, requests: requests}
	for _, a := range seed {
		r.apps[a.ID] = a
		if a.ID >= r.nextID {
			r.nextID = a.ID + 1
		}
	}
	return r
}

// filter returns matching applications, newest first.
func (r *InMemoryRepository) filter(keep func(Application) bool) []Application {
	out := make([]Application, 0)
	for _, a := range r.apps {
		if keep(a) {
			out = append(out, a)
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

func (r *InMemoryRepository) Create(ctx context.Context, a Application) (Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.requests != nil {
		req, err := r.requests.GetByID(ctx, a.RequestID)
		if err != nil {
			return Application{}, err
		}
		if req.Status != request.StatusOpen {
			return Application{}, ErrRequestNotOpen
		}
	}
	for _, existing := range r.apps {
		if existing.RequestID == a.RequestID && existing.AssistantID == a.AssistantID {
			return Application{}, ErrAlreadyApplied
		}
	}
	a.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	if a.Status == "" {
		a.Status = StatusPending
	}
	r.apps[a.ID] = a
	return a, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int) (Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.apps[id]
	if !ok {
		return Application{}, ErrNotFound
	}
	return a, nil
}

func (r *InMemoryRepository) ListByRequest(ctx context.Context, requestID int) ([]Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(a Application) bool { return a.RequestID == requestID }), nil
}

func (r *InMemoryRepository) ListByAssistant(ctx context.Context, assistantID int) ([]Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(a Application) bool { return a.AssistantID == assistantID }), nil
}

func (r *InMemoryRepository) Accept(ctx context.Context, a Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.apps[a.ID]
	if !ok {
		return ErrNotFound
	}
	if current.Status != StatusPending {
		return ErrNotPending
	}
	if err := r.requests.Assign(ctx, current.RequestID, current.AssistantID); err != nil {
		if errors.Is(err, request.ErrStatusConflict) {
			return ErrRequestNotOpen
		}
		return err
	}

	now := time.Now().UTC()
	for id, other := range r.apps {
		if other.RequestID != current.RequestID {
			continue
		}
		switch {
		case id == current.ID:
			other.Status = StatusAccepted
		case other.Status == StatusPending:
			other.Status = StatusRejected
		default:
			continue
		}
		other.UpdatedAt = now
		r.apps[id] = other
	}
	return nil
}

func (r *InMemoryRepository) SetStatus(ctx context.Context, id int, from, to Status) (Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.apps[id]
	if !ok {
		return Application{}, ErrNotFound
	}
	if a.Status != from {
		return Application{}, ErrNotPending
	}
	a.Status = to
	a.UpdatedAt = time.Now().UTC()
	r.apps[id] = a
	return a, nil
}

func (r *InMemoryRepository) CountByStatus(ctx context.Context, assistantID int) (map[Status]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := map[Status]int{}
	for _, a := range r.apps {
		if a.AssistantID == assistantID {
			counts[a.Status]++
		}
	}
	return counts, nil
}

func (r *InMemoryRepository) ownedBy(ctx context.Context, ownerID int) func(Application) bool {
	return func(a Application) bool {
		req, err := r.requests.GetByID(ctx, a.RequestID)
		return err == nil && req.UserID == ownerID
	}
}

func (r *InMemoryRepository) CountPendingForOwner(ctx context.Context, ownerID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	owned := r.ownedBy(ctx, ownerID)
	n := 0
	for _, a := range r.apps {
		if a.Status == StatusPending && owned(a) {
			n++
		}
	}
	return n, nil
}

func (r *InMemoryRepository) LatestForOwner(ctx context.Context, ownerID, limit int) ([]Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.filter(r.ownedBy(ctx, ownerID))
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
