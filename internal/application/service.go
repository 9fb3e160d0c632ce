package application

import (
	"context"
	"errors"
	"strings"

	"github.com/wichananm65/carehub-backend/internal/auth"
	"github.com/wichananm65/carehub-backend/internal/metrics"
	"github.com/wichananm65/carehub-backend/internal/request"
	"github.com/wichananm65/carehub-backend/internal/user"
	"go.uber.org/zap"
)

// Requests looks up the request an application belongs to.
type Requests interface {
	GetByID(ctx context.Context, id int) (request.Request, error)
}

// Users resolves assistant names for the owner's offer list.
type Users interface {
	GetByID(ctx context.Context, id int) (user.User, error)
}

type Service struct {
	repo     Repository
	requests Requests
	users    Users
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewService(repo Repository, requests Requests, users Users, m *metrics.Metrics, log *zap.Logger) *Service {
	return &Service{repo: repo, requests: requests, users: users, metrics: m, log: log}
}

// Input is what an assistant submits when applying.
type Input struct {
	Message      string  `json:"message" validate:"max=2000"`
	ProposedRate float64 `json:"proposedRate" validate:"gte=0"`
}

func (s *Service) Apply(ctx context.Context, assistantID, requestID int, in Input) (Application, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return Application{}, err
	}
	if req.Status != request.StatusOpen {
		return Application{}, ErrRequestNotOpen
	}
	created, err := s.repo.Create(ctx, Application{
		RequestID:    requestID,
		AssistantID:  assistantID,
		Message:      strings.TrimSpace(in.Message),
		ProposedRate: in.ProposedRate,
		Status:       StatusPending,
	})
	if err != nil {
		return Application{}, err
	}
	s.metrics.Event("application_submitted")
	return created, nil
}

// ListForRequest returns the offers on a request to its owner or an admin.
func (s *Service) ListForRequest(ctx context.Context, caller auth.Identity, requestID int) ([]Offer, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !canManage(caller, req) {
		return nil, ErrForbidden
	}
	apps, err := s.repo.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return s.offers(ctx, apps), nil
}

func (s *Service) Accept(ctx context.Context, caller auth.Identity, id int) (Application, error) {
	a, _, err := s.ownerView(ctx, caller, id)
	if err != nil {
		return Application{}, err
	}
	if err := s.repo.Accept(ctx, a); err != nil {
		return Application{}, err
	}
	s.metrics.Event("application_accepted")
	s.log.Info("application accepted",
		zap.Int("application_id", a.ID),
		zap.Int("request_id", a.RequestID),
		zap.Int("assistant_id", a.AssistantID))
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Reject(ctx context.Context, caller auth.Identity, id int) (Application, error) {
	if _, _, err := s.ownerView(ctx, caller, id); err != nil {
		return Application{}, err
	}
	return s.repo.SetStatus(ctx, id, StatusPending, StatusRejected)
}

func (s *Service) Withdraw(ctx context.Context, caller auth.Identity, id int) (Application, error) {
	a, err := s.get(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if a.AssistantID != caller.UserID {
		return Application{}, ErrForbidden
	}
	if a.Status != StatusPending {
		return Application{}, ErrNotPending
	}
	return s.repo.SetStatus(ctx, id, StatusPending, StatusWithdrawn)
}

// Mine lists the caller's applications with the state of each request.
func (s *Service) Mine(ctx context.Context, assistantID int) ([]Submission, error) {
	apps, err := s.repo.ListByAssistant(ctx, assistantID)
	if err != nil {
		return nil, err
	}
	return s.submissions(ctx, apps), nil
}

// Accepted lists the jobs the assistant has won, newest first.
func (s *Service) Accepted(ctx context.Context, assistantID, limit int) ([]Submission, error) {
	apps, err := s.repo.ListByAssistant(ctx, assistantID)
	if err != nil {
		return nil, err
	}
	won := make([]Application, 0, limit)
	for _, a := range apps {
		if a.Status == StatusAccepted && len(won) < limit {
			won = append(won, a)
		}
	}
	return s.submissions(ctx, won), nil
}

func (s *Service) CountByStatus(ctx context.Context, assistantID int) (map[Status]int, error) {
	return s.repo.CountByStatus(ctx, assistantID)
}

func (s *Service) PendingForOwner(ctx context.Context, ownerID int) (int, error) {
	return s.repo.CountPendingForOwner(ctx, ownerID)
}

func (s *Service) LatestForOwner(ctx context.Context, ownerID, limit int) ([]Offer, error) {
	apps, err := s.repo.LatestForOwner(ctx, ownerID, limit)
	if err != nil {
		return nil, err
	}
	return s.offers(ctx, apps), nil
}

func (s *Service) get(ctx context.Context, id int) (Application, error) {
	if id <= 0 {
		return Application{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// ownerView loads a pending application together with its request, checking
// that the caller manages the request and that the request is still open.
func (s *Service) ownerView(ctx context.Context, caller auth.Identity, id int) (Application, request.Request, error) {
	a, err := s.get(ctx, id)
	if err != nil {
		return Application{}, request.Request{}, err
	}
	req, err := s.requests.GetByID(ctx, a.RequestID)
	if err != nil {
		return Application{}, request.Request{}, err
	}
	if !canManage(caller, req) {
		return Application{}, request.Request{}, ErrForbidden
	}
	if a.Status != StatusPending {
		return Application{}, request.Request{}, ErrNotPending
	}
	if req.Status != request.StatusOpen {
		return Application{}, request.Request{}, ErrRequestNotOpen
	}
	return a, req, nil
}

func canManage(caller auth.Identity, req request.Request) bool {
	return req.UserID == caller.UserID || caller.Role == auth.RoleAdmin
}

// offers attaches assistant names; a missing account leaves the name blank.
func (s *Service) offers(ctx context.Context, apps []Application) []Offer {
	out := make([]Offer, 0, len(apps))
	names := map[int]string{}
	for _, a := range apps {
		name, ok := names[a.AssistantID]
		if !ok && s.users != nil {
			u, err := s.users.GetByID(ctx, a.AssistantID)
			if err != nil && !errors.Is(err, user.ErrNotFound) {
				s.log.Warn("load assistant for offer", zap.Int("assistant_id", a.AssistantID), zap.Error(err))
			}
			if err == nil {
				name = u.DisplayName()
			}
			names[a.AssistantID] = name
		}
		out = append(out, Offer{Application: a, AssistantName: name})
	}
	return out
}

func (s *Service) submissions(ctx context.Context, apps []Application) []Submission {
	out := make([]Submission, 0, len(apps))
	for _, a := range apps {
		sub := Submission{Application: a}
		req, err := s.requests.GetByID(ctx, a.RequestID)
		if err != nil {
			s.log.Warn("load request for submission", zap.Int("request_id", a.RequestID), zap.Error(err))
		} else {
			sub.RequestTitle = req.Title
			sub.RequestStatus = string(req.Status)
		}
		out = append(out, sub)
	}
	return out
}
