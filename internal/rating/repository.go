package rating

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"
)

var (
	ErrAlreadyRated = errors.New("request already rated")
	ErrNotRatable   = errors.New("only completed requests with an assistant can be rated")
	ErrForbidden    = errors.New("only the request owner can rate")
)

type Repository interface {
	Create(ctx context.Context, r Rating) (Rating, error)
	ListByAssistant(ctx context.Context, assistantID, limit int) ([]Rating, error)
	Summaries(ctx context.Context, assistantIDs []int) (map[int]Summary, error)
}

type InMemoryRepository struct {
	mu      sync.RWMutex
	ratings []Rating
	nextID  int
}

func NewInMemoryRepository(seed []Rating) *InMemoryRepository {
	r := &InMemoryRepository{ratings: append([]Rating(nil), seed...), nextID: 1}
	for _, rt := range seed {
		if rt.ID >= r.nextID {
			r.nextID = rt.ID + 1
		}
	}
	return r
}

func (r *InMemoryRepository) Create(ctx context.Context, rt Rating) (Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.ratings {
		if existing.RequestID == rt.RequestID {
			return Rating{}, ErrAlreadyRated
		}
	}
	rt.ID = r.nextID
	r.nextID++
	rt.CreatedAt = time.Now().UTC()
	r.ratings = append(r.ratings, rt)
	return rt, nil
}

func (r *InMemoryRepository) ListByAssistant(ctx context.Context, assistantID, limit int) ([]Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Rating, 0)
	for _, rt := range r.ratings {
		if rt.AssistantID == assistantID {
			out = append(out, rt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *InMemoryRepository) Summaries(ctx context.Context, assistantIDs []int) (map[int]Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[int]bool, len(assistantIDs))
	for _, id := range assistantIDs {
		wanted[id] = true
	}
	totals := map[int]int{}
	out := map[int]Summary{}
	for _, rt := range r.ratings {
		if !wanted[rt.AssistantID] {
			continue
		}
		totals[rt.AssistantID] += rt.Score
		s := out[rt.AssistantID]
		s.Count++
		out[rt.AssistantID] = s
	}
	for id, s := range out {
		s.Average = roundAverage(float64(totals[id]) / float64(s.Count))
		out[id] = s
	}
	return out, nil
}

// roundAverage keeps two decimals, matching round(avg(score), 2) in SQL.
func roundAverage(v float64) float64 {
	return math.Round(v*100) / 100
}
