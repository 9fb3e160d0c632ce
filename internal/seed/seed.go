// Package seed loads demo locations and accounts from a YAML fixture.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/wichananm65/carehub-backend/internal/assistant"
	"github.com/wichananm65/carehub-backend/internal/auth"
	"github.com/wichananm65/carehub-backend/internal/location"
	"github.com/wichananm65/carehub-backend/internal/user"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Fixture struct {
	Locations []LocationSeed `yaml:"locations"`
	Accounts  []AccountSeed  `yaml:"accounts"`
}

type LocationSeed struct {
	Name     string `yaml:"name"`
	Province string `yaml:"province"`
}

type AccountSeed struct {
	Email     string         `yaml:"email"`
	Password  string         `yaml:"password"`
	FirstName string         `yaml:"firstName"`
	LastName  string         `yaml:"lastName"`
	Phone     string         `yaml:"phone"`
	Role      auth.Role      `yaml:"role"`
	Assistant *AssistantSeed `yaml:"assistant"`
}

// AssistantSeed fills the profile of an assistant account. Location refers
// to a location by name.
type AssistantSeed struct {
	Bio             string   `yaml:"bio"`
	Skills          []string `yaml:"skills"`
	HourlyRate      float64  `yaml:"hourlyRate"`
	ExperienceYears int      `yaml:"experienceYears"`
	Location        string   `yaml:"location"`
	Available       *bool    `yaml:"available"`
}

// Load reads a fixture, rejecting unknown keys.
func Load(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return Fixture{}, fmt.Errorf("parse seed file: %w", err)
	}
	for i, a := range f.Accounts {
		if a.Email == "" || a.Password == "" {
			return Fixture{}, fmt.Errorf("account %d: email and password are required", i+1)
		}
		if !a.Role.Valid() {
			return Fixture{}, fmt.Errorf("account %s: invalid role %q", a.Email, a.Role)
		}
		if a.Assistant != nil && a.Role != auth.RoleAssistant {
			return Fixture{}, fmt.Errorf("account %s: only assistants have a profile", a.Email)
		}
	}
	return f, nil
}

type Locations interface {
	List(ctx context.Context) ([]location.Location, error)
	Create(ctx context.Context, name, province string) (location.Location, error)
}

type Accounts interface {
	CreateAccount(ctx context.Context, u user.User) (user.User, error)
}

type Profiles interface {
	Save(ctx context.Context, userID int, in assistant.Input) (assistant.Profile, error)
}

// Result counts what a run created. Existing rows are skipped.
type Result struct {
	Locations int
	Accounts  int
	Skipped   int
}

type Seeder struct {
	locations Locations
	accounts  Accounts
	profiles  Profiles
	log       *zap.Logger
}

func NewSeeder(locations Locations, accounts Accounts, profiles Profiles, log *zap.Logger) *Seeder {
	return &Seeder{locations: locations, accounts: accounts, profiles: profiles, log: log}
}

// Apply is idempotent: locations are matched by name and accounts by email.
func (s *Seeder) Apply(ctx context.Context, f Fixture) (Result, error) {
	var res Result

	existing, err := s.locations.List(ctx)
	if err != nil {
		return res, fmt.Errorf("list locations: %w", err)
	}
	ids := make(map[string]int, len(existing)+len(f.Locations))
	for _, l := range existing {
		ids[strings.ToLower(l.Name)] = l.ID
	}
	for _, l := range f.Locations {
		if _, ok := ids[strings.ToLower(l.Name)]; ok {
			res.Skipped++
			continue
		}
		created, err := s.locations.Create(ctx, l.Name, l.Province)
		if err != nil {
			return res, fmt.Errorf("create location %s: %w", l.Name, err)
		}
		ids[strings.ToLower(created.Name)] = created.ID
		res.Locations++
	}

	for _, a := range f.Accounts {
		created, err := s.accounts.CreateAccount(ctx, user.User{
			Email:     a.Email,
			Password:  a.Password,
			FirstName: a.FirstName,
			LastName:  a.LastName,
			Phone:     a.Phone,
			Role:      a.Role,
		})
		if errors.Is(err, user.ErrEmailExists) {
			s.log.Info("seed account exists", zap.String("email", a.Email))
			res.Skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("create account %s: %w", a.Email, err)
		}
		res.Accounts++

		if a.Assistant == nil {
			continue
		}
		in := assistant.Input{
			Bio:             a.Assistant.Bio,
			Skills:          a.Assistant.Skills,
			HourlyRate:      a.Assistant.HourlyRate,
			ExperienceYears: a.Assistant.ExperienceYears,
			Available:       a.Assistant.Available,
		}
		if name := a.Assistant.Location; name != "" {
			id, ok := ids[strings.ToLower(name)]
			if !ok {
				return res, fmt.Errorf("account %s: unknown location %q", a.Email, name)
			}
			in.LocationID = &id
		}
		if _, err := s.profiles.Save(ctx, created.ID, in); err != nil {
			return res, fmt.Errorf("save profile %s: %w", a.Email, err)
		}
	}

	s.log.Info("seed applied",
		zap.Int("locations", res.Locations),
		zap.Int("accounts", res.Accounts),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}
