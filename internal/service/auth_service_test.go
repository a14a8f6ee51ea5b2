package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/doctors-portal/api/internal/domain"
)

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) Upsert(ctx context.Context, u *domain.User) (*domain.User, error) {
	if existing, ok := f.users[u.Email]; ok {
		existing.Name = u.Name
		if u.PasswordHash != "" {
			existing.PasswordHash = u.PasswordHash
		}
		return existing, nil
	}
	f.users[u.Email] = u
	return u, nil
}

func (f *fakeUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateRole(ctx context.Context, email string, role domain.Role) error {
	u, ok := f.users[email]
	if !ok {
		return ErrUserNotFound
	}
	u.Role = role
	return nil
}

type fakeIssuer struct{}

func (fakeIssuer) Sign(claims *domain.Claims) (string, time.Time, error) {
	return "token-for-" + claims.Email, time.Now().Add(24 * time.Hour), nil
}

func newAuthService(t *testing.T, repo UserRepository) *AuthService {
	t.Helper()
	auditSvc := NewAuditService(fakeAuditRepo{}, testCollector(), zap.NewNop())
	t.Cleanup(auditSvc.Shutdown)
	return NewAuthService(repo, fakeIssuer{}, auditSvc, testCollector(), zap.NewNop())
}

func TestUpsertUser_CreatesPatientAndIssuesToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(t, repo)

	user, token, err := svc.UpsertUser(context.Background(), "A@X.com", "Alice", "")
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, domain.RolePatient, user.Role)
	require.NotNil(t, token)
	assert.Equal(t, "token-for-a@x.com", token.AccessToken)
	assert.Equal(t, "Bearer", token.TokenType)
}

func TestUpsertUser_ExistingAccountKeepsRole(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users["a@x.com"] = &domain.User{Email: "a@x.com", Name: "Alice", Role: domain.RoleAdmin}
	svc := newAuthService(t, repo)

	user, _, err := svc.UpsertUser(context.Background(), "a@x.com", "Alice Cooper", "")
	require.NoError(t, err)

	assert.Equal(t, domain.RoleAdmin, user.Role)
	assert.Equal(t, "Alice Cooper", user.Name)
}

func TestUpsertUser_HashesPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(t, repo)

	user, _, err := svc.UpsertUser(context.Background(), "a@x.com", "Alice", "hunter2hunter2")
	require.NoError(t, err)

	assert.NotEqual(t, "hunter2hunter2", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2hunter2")))
}

func TestIsAdmin(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users["root@x.com"] = &domain.User{Email: "root@x.com", Role: domain.RoleAdmin}
	repo.users["a@x.com"] = &domain.User{Email: "a@x.com", Role: domain.RolePatient}
	svc := newAuthService(t, repo)

	admin, err := svc.IsAdmin(context.Background(), "root@x.com")
	require.NoError(t, err)
	assert.True(t, admin)

	admin, err = svc.IsAdmin(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.False(t, admin)

	// Unknown emails are simply not admins.
	admin, err = svc.IsAdmin(context.Background(), "nobody@x.com")
	require.NoError(t, err)
	assert.False(t, admin)
}

func TestGrantAdmin_RequiresAdministratorCaller(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users["root@x.com"] = &domain.User{Email: "root@x.com", Role: domain.RoleAdmin}
	repo.users["a@x.com"] = &domain.User{Email: "a@x.com", Role: domain.RolePatient}
	svc := newAuthService(t, repo)

	patient := &domain.Claims{Email: "a@x.com", Role: domain.RolePatient}
	err := svc.GrantAdmin(context.Background(), "a@x.com", patient, "")
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.GrantAdmin(context.Background(), "a@x.com", nil, "")
	assert.ErrorIs(t, err, ErrForbidden)

	admin := &domain.Claims{Email: "root@x.com", Role: domain.RoleAdmin}
	err = svc.GrantAdmin(context.Background(), "a@x.com", admin, "")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, repo.users["a@x.com"].Role)

	err = svc.GrantAdmin(context.Background(), "nobody@x.com", admin, "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
