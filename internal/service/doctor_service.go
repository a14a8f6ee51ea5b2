package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/doctors-portal/api/internal/domain"
	"github.com/doctors-portal/api/internal/domain/doctor"
	"github.com/doctors-portal/api/pkg/metrics"
)

type DoctorService struct {
	repo     doctor.Repository
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewDoctorService(repo doctor.Repository, auditSvc *AuditService, m *metrics.Collector, log *zap.Logger) *DoctorService {
	return &DoctorService{repo: repo, auditSvc: auditSvc, metrics: m, log: log}
}

func (s *DoctorService) AddDoctor(ctx context.Context, cmd *doctor.AddDoctorCommand, caller *domain.Claims, ip string) (*doctor.Doctor, error) {
	if err := validateAddDoctorCommand(cmd); err != nil {
		return nil, err
	}

	d := &doctor.Doctor{
		Name:      strings.TrimSpace(cmd.Name),
		Email:     strings.ToLower(strings.TrimSpace(cmd.Email)),
		Specialty: strings.TrimSpace(cmd.Specialty),
		ImageURL:  cmd.ImageURL,
	}

	if err := s.repo.Create(ctx, d); err != nil {
		s.log.Error("failed to add doctor", zap.String("email", d.Email), zap.Error(err))
		return nil, err
	}

	s.metrics.DoctorRosterEvents.WithLabelValues("added").Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		ActorEmail:   caller.Email,
		ActorRole:    string(caller.Role),
		Action:       "create",
		ResourceType: "doctor",
		ResourceID:   d.Email,
		IPAddress:    ip,
	})

	return d, nil
}

func (s *DoctorService) RemoveDoctor(ctx context.Context, email string, caller *domain.Claims, ip string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	if err := s.repo.DeleteByEmail(ctx, email); err != nil {
		return err
	}

	s.metrics.DoctorRosterEvents.WithLabelValues("removed").Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		ActorEmail:   caller.Email,
		ActorRole:    string(caller.Role),
		Action:       "delete",
		ResourceType: "doctor",
		ResourceID:   email,
		IPAddress:    ip,
	})

	return nil
}

func (s *DoctorService) ListDoctors(ctx context.Context) ([]*doctor.Doctor, error) {
	return s.repo.List(ctx)
}

func validateAddDoctorCommand(cmd *doctor.AddDoctorCommand) error {
	var errs []string

	if strings.TrimSpace(cmd.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(cmd.Email) == "" {
		errs = append(errs, "email is required")
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
