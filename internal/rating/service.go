package rating

import (
	"context"
	"strings"

	"github.com/wichananm65/carehub-backend/internal/auth"
	"github.com/wichananm65/carehub-backend/internal/metrics"
	"github.com/wichananm65/carehub-backend/internal/request"
)

// Requests looks up the request being rated.
type Requests interface {
	GetByID(ctx context.Context, id int) (request.Request, error)
}

type Service struct {
	repo     Repository
	requests Requests
	metrics  *metrics.Metrics
}

func NewService(repo Repository, requests Requests, m *metrics.Metrics) *Service {
	return &Service{repo: repo, requests: requests, metrics: m}
}

type Input struct {
	Score   int    `json:"score" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// Rate records the owner's score for the assistant who completed a request.
func (s *Service) Rate(ctx context.Context, caller auth.Identity, requestID int, in Input) (Rating, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return Rating{}, err
	}
	if req.UserID != caller.UserID {
		return Rating{}, ErrForbidden
	}
	if req.Status != request.StatusCompleted || req.AssistantID == nil {
		return Rating{}, ErrNotRatable
	}
	created, err := s.repo.Create(ctx, Rating{
		RequestID:   requestID,
		AssistantID: *req.AssistantID,
		UserID:      caller.UserID,
		Score:       in.Score,
		Comment:     strings.TrimSpace(in.Comment),
	})
	if err != nil {
		return Rating{}, err
	}
	s.metrics.Event("rating_submitted")
	return created, nil
}

func (s *Service) ForAssistant(ctx context.Context, assistantID, limit int) ([]Rating, error) {
	return s.repo.ListByAssistant(ctx, assistantID, limit)
}

func (s *Service) Summary(ctx context.Context, assistantID int) (Summary, error) {
	all, err := s.repo.Summaries(ctx, []int{assistantID})
	if err != nil {
		return Summary{}, err
	}
	return all[assistantID], nil
}

func (s *Service) Summaries(ctx context.Context, assistantIDs []int) (map[int]Summary, error) {
	return s.repo.Summaries(ctx, assistantIDs)
}
