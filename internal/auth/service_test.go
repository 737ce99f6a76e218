package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/freightbox-tms/freightbox/internal/shared"
)

type memoryUserRepo struct {
	nextID int64
	users  map[int64]User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[int64]User)}
}

func (m *memoryUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memoryUserRepo) GetByID(_ context.Context, id int64) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := u
	return &cp, nil
}

func (m *memoryUserRepo) Create(_ context.Context, user User) (int64, error) {
	m.nextID++
	user.ID = m.nextID
	m.users[user.ID] = user
	return user.ID, nil
}

func newTestAuthService(repo Repository) *Service {
	return NewService(repo, "test-secret", time.Hour)
}

func TestRegisterHashesPassword(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newTestAuthService(repo)

	user, err := svc.Register(context.Background(), "ops@freightbox.in", "Ops", "s3cret-pass", "")
	require.NoError(t, err)
	require.Equal(t, RoleOperator, user.Role)
	require.True(t, user.IsActive)
	require.NotEqual(t, "s3cret-pass", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), "ops@freightbox.in", "Ops", "s3cret-pass", "")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "ops@freightbox.in", "Again", "other-pass", "")
	require.Error(t, err)
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newTestAuthService(repo)

	user, err := svc.Register(context.Background(), "admin@freightbox.in", "Admin", "hunter2hunter2", RoleAdmin)
	require.NoError(t, err)

	token, got, err := svc.Login(context.Background(), "admin@freightbox.in", "hunter2hunter2")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, RoleAdmin, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), "ops@freightbox.in", "Ops", "s3cret-pass", "")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "ops@freightbox.in", "wrong-pass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newTestAuthService(newMemoryUserRepo())

	_, _, err := svc.Login(context.Background(), "ghost@freightbox.in", "whatever")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginDisabledAccount(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newTestAuthService(repo)

	user, err := svc.Register(context.Background(), "ops@freightbox.in", "Ops", "s3cret-pass", "")
	require.NoError(t, err)

	stored := repo.users[user.ID]
	stored.IsActive = false
	repo.users[user.ID] = stored

	_, _, err = svc.Login(context.Background(), "ops@freightbox.in", "s3cret-pass")
	require.ErrorIs(t, err, ErrAccountDisabled)
}

func TestVerifyTokenRejectsTampering(t *testing.T) {
	svc := newTestAuthService(newMemoryUserRepo())
	other := NewService(newMemoryUserRepo(), "different-secret", time.Hour)

	user, err := other.Register(context.Background(), "ops@freightbox.in", "Ops", "s3cret-pass", "")
	require.NoError(t, err)
	token, _, err := other.Login(context.Background(), "ops@freightbox.in", "s3cret-pass")
	require.NoError(t, err)
	require.NotNil(t, user)

	_, err = svc.VerifyToken(token)
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
