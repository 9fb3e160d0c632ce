package request

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wichananm65/carehub-backend/internal/auth"
	"github.com/wichananm65/carehub-backend/internal/location"
	"github.com/wichananm65/carehub-backend/internal/metrics"
)

// Locations resolves the service area a request is posted in.
type Locations interface {
	GetByID(ctx context.Context, id int) (location.Location, error)
}

type Service struct {
	repo      Repository
	locations Locations
	metrics   *metrics.Metrics
}

func NewService(repo Repository, locations Locations, m *metrics.Metrics) *Service {
	return &Service{repo: repo, locations: locations, metrics: m}
}

// Input is the writable part of a request.
type Input struct {
	LocationID  int        `json:"locationId" validate:"required,gt=0"`
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"required,max=5000"`
	CareType    string     `json:"careType" validate:"required,oneof=elderly child disability medical companionship housekeeping"`
	StartDate   *time.Time `json:"startDate"`
	Hours       int        `json:"hours" validate:"gt=0,lte=744"`
	Budget      float64    `json:"budget" validate:"gte=0"`
}

// Patch is a partial edit of a request; nil fields are left unchanged.
type Patch struct {
	LocationID  *int       `json:"locationId" validate:"omitempty,gt=0"`
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,min=1,max=5000"`
	CareType    *string    `json:"careType" validate:"omitempty,oneof=elderly child disability medical companionship housekeeping"`
	StartDate   *time.Time `json:"startDate"`
	Hours       *int       `json:"hours" validate:"omitempty,gt=0,lte=744"`
	Budget      *float64   `json:"budget" validate:"omitempty,gte=0"`
}

func (s *Service) Create(ctx context.Context, ownerID int, in Input) (Request, error) {
	if err := s.checkLocation(ctx, in.LocationID); err != nil {
		return Request{}, err
	}
	created, err := s.repo.Create(ctx, Request{
		UserID:      ownerID,
		LocationID:  in.LocationID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		CareType:    in.CareType,
		StartDate:   in.StartDate,
		Hours:       in.Hours,
		Budget:      in.Budget,
		Status:      StatusOpen,
	})
	if err != nil {
		return Request{}, err
	}
	s.metrics.Event("request_created")
	return created, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]Listing, error) {
	requests, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return listings(requests), nil
}

func (s *Service) Get(ctx context.Context, id int) (Listing, error) {
	req, err := s.GetByID(ctx, id)
	if err != nil {
		return Listing{}, err
	}
	return newListing(req), nil
}

func (s *Service) GetByID(ctx context.Context, id int) (Request, error) {
	if id <= 0 {
		return Request{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Mine(ctx context.Context, ownerID int) ([]Listing, error) {
	requests, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return listings(requests), nil
}

func (s *Service) CountByStatus(ctx context.Context, ownerID int) (map[Status]int, error) {
	return s.repo.CountByStatus(ctx, ownerID)
}

// Update applies a partial edit to an open request owned by the caller.
func (s *Service) Update(ctx context.Context, caller auth.Identity, id int, in Patch) (Request, error) {
	req, err := s.owned(ctx, caller, id)
	if err != nil {
		return Request{}, err
	}
	if req.Status != StatusOpen {
		return Request{}, ErrStatusConflict
	}
	if in.LocationID != nil && *in.LocationID != req.LocationID {
		if err := s.checkLocation(ctx, *in.LocationID); err != nil {
			return Request{}, err
		}
		req.LocationID = *in.LocationID
	}
	if in.Title != nil {
		if req.Title = strings.TrimSpace(*in.Title); req.Title == "" {
			return Request{}, ErrEmptyField
		}
	}
	if in.Description != nil {
		if req.Description = strings.TrimSpace(*in.Description); req.Description == "" {
			return Request{}, ErrEmptyField
		}
	}
	if in.CareType != nil {
		req.CareType = *in.CareType
	}
	if in.StartDate != nil {
		req.StartDate = in.StartDate
	}
	if in.Hours != nil {
		req.Hours = *in.Hours
	}
	if in.Budget != nil {
		req.Budget = *in.Budget
	}
	return s.repo.Update(ctx, req)
}

// Cancel withdraws an open or assigned request.
func (s *Service) Cancel(ctx context.Context, caller auth.Identity, id int) (Request, error) {
	if _, err := s.owned(ctx, caller, id); err != nil {
		return Request{}, err
	}
	req, err := s.repo.Transition(ctx, id, []Status{StatusOpen, StatusAssigned}, StatusCancelled)
	if err != nil {
		return Request{}, err
	}
	s.metrics.Event("request_cancelled")
	return req, nil
}

// Complete closes an assigned request once the care has been delivered.
func (s *Service) Complete(ctx context.Context, caller auth.Identity, id int) (Request, error) {
	if _, err := s.owned(ctx, caller, id); err != nil {
		return Request{}, err
	}
	req, err := s.repo.Transition(ctx, id, []Status{StatusAssigned}, StatusCompleted)
	if err != nil {
		return Request{}, err
	}
	s.metrics.Event("request_completed")
	return req, nil
}

// owned loads a request the caller may manage: their own, or any for admins.
func (s *Service) owned(ctx context.Context, caller auth.Identity, id int) (Request, error) {
	req, err := s.GetByID(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if req.UserID != caller.UserID && caller.Role != auth.RoleAdmin {
		return Request{}, ErrForbidden
	}
	return req, nil
}

func (s *Service) checkLocation(ctx context.Context, id int) error {
	if s.locations == nil {
		return nil
	}
	_, err := s.locations.GetByID(ctx, id)
	if errors.Is(err, location.ErrNotFound) {
		return ErrUnknownLocation
	}
	return err
}

func listings(requests []Request) []Listing {
	out := make([]Listing, 0, len(requests))
	for _, r := range requests {
		out = append(out, newListing(r))
	}
	return out
}
