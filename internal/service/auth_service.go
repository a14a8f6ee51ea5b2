package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/doctors-portal/api/internal/domain"
	"github.com/doctors-portal/api/pkg/auth"
	"github.com/doctors-portal/api/pkg/metrics"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Upsert(ctx context.Context, u *domain.User) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	UpdateRole(ctx context.Context, email string, role domain.Role) error
}

type IssuedToken struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	TokenType   string    `json:"tokenType"` // Always "Bearer"
}

type AuthService struct {
	userRepo UserRepository
	issuer   auth.TokenIssuer
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewAuthService(userRepo UserRepository, issuer auth.TokenIssuer, auditSvc *AuditService, m *metrics.Collector, log *zap.Logger) *AuthService {
	return &AuthService{userRepo: userRepo, issuer: issuer, auditSvc: auditSvc, metrics: m, log: log}
}

// UpsertUser creates or updates the profile stored under the given email and
// issues a fresh bearer token for it. New accounts start as patients; an
// existing account keeps whatever role it already holds.
func (s *AuthService) UpsertUser(ctx context.Context, email, name, password string) (*domain.User, *IssuedToken, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil, &ValidationError{Fields: []string{"email is required"}}
	}

	u := &domain.User{
		Email: email,
		Name:  strings.TrimSpace(name),
		Role:  domain.RolePatient,
	}

	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, nil, fmt.Errorf("hashing password: %w", err)
		}
		u.PasswordHash = string(hash)
	}

	saved, err := s.userRepo.Upsert(ctx, u)
	if err != nil {
		s.log.Error("failed to upsert user", zap.String("email", email), zap.Error(err))
		return nil, nil, fmt.Errorf("upserting user: %w", err)
	}

	token, expiresAt, err := s.issuer.Sign(&domain.Claims{Email: saved.Email, Role: saved.Role})
	if err != nil {
		s.log.Error("failed to sign token", zap.Error(err))
		return nil, nil, fmt.Errorf("signing token: %w", err)
	}

	s.log.Info("user upserted", zap.String("email", saved.Email), zap.String("role", string(saved.Role)))

	return saved, &IssuedToken{AccessToken: token, ExpiresAt: expiresAt, TokenType: "Bearer"}, nil
}

// IsAdmin reports whether the email holds the administrator role. Unknown
// emails are simply not admins.
func (s *AuthService) IsAdmin(ctx context.Context, email string) (bool, error) {
	u, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("looking up user: %w", err)
	}
	return u.IsAdmin(), nil
}

// GrantAdmin promotes the target account to administrator. Only an existing
// administrator may do this; the router enforces it too, but the service
// re-checks so no alternate entry point can skip it.
func (s *AuthService) GrantAdmin(ctx context.Context, targetEmail string, caller *domain.Claims, ip string) error {
	if caller == nil || caller.Role != domain.RoleAdmin {
		return ErrForbidden
	}

	targetEmail = strings.ToLower(strings.TrimSpace(targetEmail))
	if _, err := s.userRepo.GetByEmail(ctx, targetEmail); err != nil {
		return err
	}

	if err := s.userRepo.UpdateRole(ctx, targetEmail, domain.RoleAdmin); err != nil {
		s.log.Error("failed to grant admin role", zap.String("email", targetEmail), zap.Error(err))
		return fmt.Errorf("granting admin role: %w", err)
	}

	s.metrics.AdminGrantsTotal.Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		ActorEmail:   caller.Email,
		ActorRole:    string(caller.Role),
		Action:       "update",
		ResourceType: "user",
		ResourceID:   targetEmail,
		IPAddress:    ip,
		Changes:      `{"role":"admin"}`,
	})

	s.log.Info("admin role granted",
		zap.String("target", targetEmail),
		zap.String("granted_by", caller.Email),
	)

	return nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.userRepo.List(ctx)
}
