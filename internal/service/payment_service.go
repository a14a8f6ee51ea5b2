package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/doctors-portal/api/internal/domain"
	"github.com/doctors-portal/api/internal/domain/booking"
	"github.com/doctors-portal/api/internal/domain/treatment"
	"github.com/doctors-portal/api/pkg/metrics"
)

// PaymentProvider is the external processor capability. The core never talks
// to a specific payment SDK directly.
type PaymentProvider interface {
	CreateIntent(ctx context.Context, amount int64, bookingID string) (clientSecret string, err error)
}

type PaymentService struct {
	provider   PaymentProvider
	bookings   booking.Repository
	treatments treatment.Repository
	auditSvc   *AuditService
	metrics    *metrics.Collector
	log        *zap.Logger
}

func NewPaymentService(
	provider PaymentProvider,
	bookings booking.Repository,
	treatments treatment.Repository,
	auditSvc *AuditService,
	m *metrics.Collector,
	log *zap.Logger,
) *PaymentService {
	return &PaymentService{
		provider:   provider,
		bookings:   bookings,
		treatments: treatments,
		auditSvc:   auditSvc,
		metrics:    m,
		log:        log,
	}
}

// CreatePaymentIntent opens a payment with the external processor for the
// booking's treatment price and returns the client secret the browser needs
// to complete the charge. Only the booking's owner may start a payment.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, bookingID uuid.UUID, caller *domain.Claims, ip string) (string, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return "", err
	}

	if caller.Role != domain.RoleAdmin && b.Patient != caller.Email {
		return "", ErrForbidden
	}
	if b.Paid {
		return "", booking.ErrAlreadyPaid
	}

	t, err := s.treatments.GetByName(ctx, b.Treatment)
	if err != nil {
		return "", fmt.Errorf("resolving treatment price: %w", err)
	}

	secret, err := s.provider.CreateIntent(ctx, t.Price, b.ID.String())
	if err != nil {
		s.metrics.PaymentIntents.WithLabelValues("error").Inc()
		s.log.Error("payment intent creation failed",
			zap.String("booking_id", b.ID.String()),
			zap.Error(err),
		)
		return "", fmt.Errorf("creating payment intent: %w", err)
	}

	s.metrics.PaymentIntents.WithLabelValues("created").Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		ActorEmail:   caller.Email,
		ActorRole:    string(caller.Role),
		Action:       "create",
		ResourceType: "payment_intent",
		ResourceID:   b.ID.String(),
		IPAddress:    ip,
	})

	return secret, nil
}
