package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/wichananm65/carehub-backend/internal/auth"
	"golang.org/x/crypto/bcrypt"
)

// Provisioner prepares role-specific records for a freshly registered
// account, e.g. the empty profile of an assistant.
type Provisioner interface {
	Provision(ctx context.Context, u User) error
}

type Service struct {
	repo        Repository
	provisioner Provisioner
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// WithProvisioner sets the hook Register calls after the user row exists.
func (s *Service) WithProvisioner(p Provisioner) *Service {
	s.provisioner = p
	return s
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int) (User, error) {
	if id <= 0 {
		return User{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

// Register creates a user or assistant account. Admins are only created by
// the seed command.
func (s *Service) Register(ctx context.Context, u User) (User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = auth.RoleUser
	}
	if u.Role != auth.RoleUser && u.Role != auth.RoleAssistant {
		return User{}, ErrInvalidRole
	}

	if _, err := s.repo.GetByEmail(ctx, u.Email); err == nil {
		return User{}, ErrEmailExists
	} else if err != ErrNotFound {
		return User{}, err
	}

	created, err := s.create(ctx, u)
	if err != nil {
		return User{}, err
	}
	if err := s.provision(ctx, created); err != nil {
		return User{}, err
	}
	return created, nil
}

// CreateAccount stores an account with any role, hashing the password. It is
// meant for seeding, not for the public sign-up flow.
func (s *Service) CreateAccount(ctx context.Context, u User) (User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if !u.Role.Valid() {
		return User{}, ErrInvalidRole
	}
	created, err := s.create(ctx, u)
	if err != nil {
		return User{}, err
	}
	if err := s.provision(ctx, created); err != nil {
		return User{}, err
	}
	return created, nil
}

// provision runs the role hook for a new account. On failure the account is
// removed again so the same sign-up can be retried.
func (s *Service) provision(ctx context.Context, created User) error {
	if s.provisioner == nil {
		return nil
	}
	err := s.provisioner.Provision(ctx, created)
	if err == nil {
		return nil
	}
	if delErr := s.repo.Delete(ctx, created.ID); delErr != nil {
		return fmt.Errorf("provision %s profile: %w (cleanup failed: %v)", created.Role, err, delErr)
	}
	return fmt.Errorf("provision %s profile: %w", created.Role, err)
}

func (s *Service) create(ctx context.Context, u User) (User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	u.Password = string(hashed)
	return s.repo.Create(ctx, u)
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// ProfileUpdate carries the fields a caller may change on their own account.
// Nil fields are left untouched.
type ProfileUpdate struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=30"`
	Password  *string `json:"password" validate:"omitempty,min=8"`
}

func (s *Service) UpdateProfile(ctx context.Context, id int, in ProfileUpdate) (User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if in.FirstName != nil {
		u.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		u.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Phone != nil {
		u.Phone = strings.TrimSpace(*in.Phone)
	}
	u.Password = ""
	if in.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		u.Password = string(hashed)
	}
	return s.repo.Update(ctx, u)
}

// SetAvatar replaces the avatar URL and returns the updated user together with
// the URL it replaced, so the caller can remove the old object.
func (s *Service) SetAvatar(ctx context.Context, id int, url *string) (User, *string, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return User{}, nil, err
	}
	previous := u.AvatarURL
	u.AvatarURL = url
	u.Password = ""
	updated, err := s.repo.Update(ctx, u)
	if err != nil {
		return User{}, nil, err
	}
	return updated, previous, nil
}
