package assistant

import (
	"context"
	"errors"
	"strings"

	"github.com/wichananm65/carehub-backend/internal/auth"
	"github.com/wichananm65/carehub-backend/internal/location"
	"github.com/wichananm65/carehub-backend/internal/rating"
	"github.com/wichananm65/carehub-backend/internal/user"
)

const recentRatings = 5

var ErrUnknownLocation = errors.New("location does not exist")

type Users interface {
	GetByID(ctx context.Context, id int) (user.User, error)
}

type Ratings interface {
	Summaries(ctx context.Context, assistantIDs []int) (map[int]rating.Summary, error)
	ForAssistant(ctx context.Context, assistantID, limit int) ([]rating.Rating, error)
}

type Locations interface {
	GetByID(ctx context.Context, id int) (location.Location, error)
}

type Service struct {
	repo      Repository
	users     Users
	ratings   Ratings
	locations Locations
}

func NewService(repo Repository, users Users, ratings Ratings, locations Locations) *Service {
	return &Service{repo: repo, users: users, ratings: ratings, locations: locations}
}

// Input is the editable part of an assistant profile.
type Input struct {
	Bio             string   `json:"bio" validate:"max=2000"`
	Skills          []string `json:"skills" validate:"max=20,dive,min=1,max=50"`
	HourlyRate      float64  `json:"hourlyRate" validate:"gte=0"`
	ExperienceYears int      `json:"experienceYears" validate:"gte=0,lte=80"`
	LocationID      *int     `json:"locationId" validate:"omitempty,gt=0"`
	Available       *bool    `json:"available"`
}

// Provision gives every new assistant account an empty, available profile.
func (s *Service) Provision(ctx context.Context, u user.User) error {
	if u.Role != auth.RoleAssistant {
		return nil
	}
	_, err := s.repo.Upsert(ctx, Profile{UserID: u.ID, Skills: []string{}, Available: true})
	return err
}

// List returns the directory, skipping profiles whose account is gone.
func (s *Service) List(ctx context.Context, f Filter) ([]Card, error) {
	profiles, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.UserID)
	}
	summaries, err := s.ratings.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	cards := make([]Card, 0, len(profiles))
	for _, p := range profiles {
		card, err := s.card(ctx, p, summaries[p.UserID])
		if errors.Is(err, user.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func (s *Service) Get(ctx context.Context, id int) (Detail, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	summaries, err := s.ratings.Summaries(ctx, []int{id})
	if err != nil {
		return Detail{}, err
	}
	card, err := s.card(ctx, p, summaries[id])
	if errors.Is(err, user.ErrNotFound) {
		return Detail{}, ErrNotFound
	}
	if err != nil {
		return Detail{}, err
	}
	recent, err := s.ratings.ForAssistant(ctx, id, recentRatings)
	if err != nil {
		return Detail{}, err
	}
	return Detail{Card: card, RecentRatings: recent}, nil
}

func (s *Service) Profile(ctx context.Context, userID int) (Profile, error) {
	return s.repo.GetByID(ctx, userID)
}

// Save replaces the caller's profile. Availability is kept when omitted.
func (s *Service) Save(ctx context.Context, userID int, in Input) (Profile, error) {
	if in.LocationID != nil {
		if _, err := s.locations.GetByID(ctx, *in.LocationID); err != nil {
			if errors.Is(err, location.ErrNotFound) {
				return Profile{}, ErrUnknownLocation
			}
			return Profile{}, err
		}
	}

	available := true
	if current, err := s.repo.GetByID(ctx, userID); err == nil {
		available = current.Available
	} else if !errors.Is(err, ErrNotFound) {
		return Profile{}, err
	}
	if in.Available != nil {
		available = *in.Available
	}

	skills := make([]string, 0, len(in.Skills))
	for _, sk := range in.Skills {
		if sk = strings.TrimSpace(sk); sk != "" {
			skills = append(skills, sk)
		}
	}
	return s.repo.Upsert(ctx, Profile{
		UserID:          userID,
		Bio:             strings.TrimSpace(in.Bio),
		Skills:          skills,
		HourlyRate:      in.HourlyRate,
		ExperienceYears: in.ExperienceYears,
		LocationID:      in.LocationID,
		Available:       available,
	})
}

func (s *Service) card(ctx context.Context, p Profile, summary rating.Summary) (Card, error) {
	u, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		return Card{}, err
	}
	return Card{
		Profile:   p,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		AvatarURL: u.AvatarURL,
		Rating:    summary,
	}, nil
}
