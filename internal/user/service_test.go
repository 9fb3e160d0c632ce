package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/carehub-backend/internal/auth"
)

type provisionRecorder struct {
	got []User
	err error
}

func (p *provisionRecorder) Provision(ctx context.Context, u User) error {
	p.got = append(p.got, u)
	return p.err
}

func TestRegister_DefaultsAndProvisioning(t *testing.T) {
	ctx := context.Background()
	prov := &provisionRecorder{}
	svc := NewService(NewInMemoryRepository(nil)).WithProvisioner(prov)

	u, err := svc.Register(ctx, User{Email: " Bob@Example.com ", Password: "password1", FirstName: "Bob"})
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", u.Email)
	assert.Equal(t, auth.RoleUser, u.Role)
	assert.NotEqual(t, "password1", u.Password)
	require.Len(t, prov.got, 1)

	_, err = svc.Register(ctx, User{Email: "bob@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = svc.Register(ctx, User{Email: "root@example.com", Password: "password1", Role: auth.RoleAdmin})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestRegister_ProvisionFailure(t *testing.T) {
	prov := &provisionRecorder{err: errors.New("boom")}
	ctx := context.Background()
	repo := NewInMemoryRepository(nil)
	svc := NewService(repo).WithProvisioner(prov)

	_, err := svc.Register(ctx, User{Email: "c@example.com", Password: "password1", Role: auth.RoleAssistant})
	assert.ErrorIs(t, err, prov.err)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users, "a failed sign-up must not leave the account behind")

	prov.err = nil
	created, err := svc.Register(ctx, User{Email: "c@example.com", Password: "password1", Role: auth.RoleAssistant})
	require.NoError(t, err)
	assert.Equal(t, "c@example.com", created.Email)
}

func TestCreateAccount_ProvisionFailure(t *testing.T) {
	ctx := context.Background()
	prov := &provisionRecorder{err: errors.New("boom")}
	repo := NewInMemoryRepository(nil)
	svc := NewService(repo).WithProvisioner(prov)

	_, err := svc.CreateAccount(ctx, User{Email: "d@example.com", Password: "password1", Role: auth.RoleAssistant})
	assert.ErrorIs(t, err, prov.err)
	_, err = repo.GetByEmail(ctx, "d@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewInMemoryRepository(nil))
	_, err := svc.CreateAccount(ctx, User{Email: "admin@example.com", Password: "admin-pass", Role: auth.RoleAdmin})
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, "admin@example.com", "admin-pass")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, u.Role)

	_, err = svc.Authenticate(ctx, "admin@example.com", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "ghost@example.com", "admin-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSetAvatar_ReturnsPrevious(t *testing.T) {
	ctx := context.Background()
	old := "/uploads/avatars/old.png"
	repo := NewInMemoryRepository([]User{{ID: 1, Email: "a@example.com", AvatarURL: &old}})
	svc := NewService(repo)

	next := "/uploads/avatars/new.png"
	updated, previous, err := svc.SetAvatar(ctx, 1, &next)
	require.NoError(t, err)
	require.NotNil(t, previous)
	assert.Equal(t, old, *previous)
	assert.Equal(t, next, *updated.AvatarURL)

	_, _, err = svc.SetAvatar(ctx, 2, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}
