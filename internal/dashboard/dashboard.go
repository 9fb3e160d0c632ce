// Package dashboard aggregates the per-role home screens.
package dashboard

import (
	"context"

	"github.com/wichananm65/carehub-backend/internal/application"
	"github.com/wichananm65/carehub-backend/internal/rating"
	"github.com/wichananm65/carehub-backend/internal/request"
	"golang.org/x/sync/errgroup"
)

const latestLimit = 5

type Requests interface {
	CountByStatus(ctx context.Context, ownerID int) (map[request.Status]int, error)
}

type Applications interface {
	CountByStatus(ctx context.Context, assistantID int) (map[application.Status]int, error)
	PendingForOwner(ctx context.Context, ownerID int) (int, error)
	LatestForOwner(ctx context.Context, ownerID, limit int) ([]application.Offer, error)
	Accepted(ctx context.Context, assistantID, limit int) ([]application.Submission, error)
}

type Ratings interface {
	Summary(ctx context.Context, assistantID int) (rating.Summary, error)
}

// UserView is the home screen of an account that posts requests.
type UserView struct {
	Requests      map[request.Status]int `json:"requests"`
	PendingOffers int                    `json:"pendingOffers"`
	LatestOffers  []application.Offer    `json:"latestOffers"`
}

// AssistantView is the home screen of an assistant.
type AssistantView struct {
	Applications map[application.Status]int `json:"applications"`
	Rating       rating.Summary             `json:"rating"`
	AcceptedJobs []application.Submission   `json:"acceptedJobs"`
}

type Service struct {
	requests     Requests
	applications Applications
	ratings      Ratings
}

func NewService(requests Requests, applications Applications, ratings Ratings) *Service {
	return &Service{requests: requests, applications: applications, ratings: ratings}
}

// ForUser reads the counters concurrently. The first failure cancels the rest.
func (s *Service) ForUser(ctx context.Context, userID int) (UserView, error) {
	var v UserView
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		v.Requests, err = s.requests.CountByStatus(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		v.PendingOffers, err = s.applications.PendingForOwner(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		v.LatestOffers, err = s.applications.LatestForOwner(ctx, userID, latestLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return UserView{}, err
	}
	v.Requests = fillStatuses(v.Requests, request.StatusOpen, request.StatusAssigned, request.StatusCompleted, request.StatusCancelled)
	return v, nil
}

func (s *Service) ForAssistant(ctx context.Context, assistantID int) (AssistantView, error) {
	var v AssistantView
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		v.Applications, err = s.applications.CountByStatus(ctx, assistantID)
		return err
	})
	g.Go(func() (err error) {
		v.Rating, err = s.ratings.Summary(ctx, assistantID)
		return err
	})
	g.Go(func() (err error) {
		v.AcceptedJobs, err = s.applications.Accepted(ctx, assistantID, latestLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return AssistantView{}, err
	}
	v.Applications = fillStatuses(v.Applications, application.StatusPending, application.StatusAccepted, application.StatusRejected, application.StatusWithdrawn)
	return v, nil
}

// fillStatuses makes every known status present so the front end can render zeros.
func fillStatuses[S comparable](counts map[S]int, all ...S) map[S]int {
	if counts == nil {
		counts = make(map[S]int, len(all))
	}
	for _, st := range all {
		if _, ok := counts[st]; !ok {
			counts[st] = 0
		}
	}
	return counts
}
