package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/doctors-portal/api/internal/domain"
	"github.com/doctors-portal/api/internal/domain/booking"
	"github.com/doctors-portal/api/internal/domain/treatment"
	"github.com/doctors-portal/api/pkg/metrics"
)

type BookingService struct {
	repo       booking.Repository
	treatments treatment.Repository
	auditSvc   *AuditService
	metrics    *metrics.Collector
	log        *zap.Logger
}

func NewBookingService(
	repo booking.Repository,
	treatments treatment.Repository,
	auditSvc *AuditService,
	m *metrics.Collector,
	log *zap.Logger,
) *BookingService {
	return &BookingService{repo: repo, treatments: treatments, auditSvc: auditSvc, metrics: m, log: log}
}

// SubmitBooking admits a booking request into the ledger. The uniqueness rule
// is one booking per (treatment, date, patient); the slot is not part of the
// key, so two patients racing for the same slot are both admitted and slot
// exclusivity is kept by hiding taken slots from the availability view.
// Re-submitting the same intent is not an error: the prior booking is returned
// with Accepted=false.
func (s *BookingService) SubmitBooking(ctx context.Context, cmd *booking.SubmitBookingCommand, ip string) (*booking.AdmissionResult, error) {
	if err := validateSubmitCommand(cmd); err != nil {
		return nil, err
	}
	// Patient identity is an email; the user layer stores emails lowercased,
	// so the ledger does too.
	cmd.Patient = strings.ToLower(strings.TrimSpace(cmd.Patient))

	t, err := s.treatments.GetByName(ctx, cmd.Treatment)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(t.Slots, cmd.Slot) {
		return nil, treatment.ErrUnknownSlot
	}

	existing, err := s.repo.FindIntent(ctx, cmd.Treatment, cmd.Date, cmd.Patient)
	if err == nil {
		s.metrics.BookingsDuplicate.Inc()
		return &booking.AdmissionResult{Accepted: false, Booking: existing}, nil
	}
	if !errors.Is(err, booking.ErrBookingNotFound) {
		s.log.Error("failed duplicate-intent lookup", zap.Error(err))
		return nil, fmt.Errorf("checking booking intent: %w", err)
	}

	b := &booking.Booking{
		Treatment: cmd.Treatment,
		Date:      cmd.Date,
		Patient:   cmd.Patient,
		Slot:      cmd.Slot,
		Paid:      false,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		// A concurrent submission with the same intent may win the insert
		// between our lookup and this write; the unique index turns the
		// losing write into the duplicate outcome.
		if errors.Is(err, booking.ErrDuplicateIntent) {
			winner, ferr := s.repo.FindIntent(ctx, cmd.Treatment, cmd.Date, cmd.Patient)
			if ferr != nil {
				return nil, fmt.Errorf("resolving duplicate booking: %w", ferr)
			}
			s.metrics.BookingsDuplicate.Inc()
			return &booking.AdmissionResult{Accepted: false, Booking: winner}, nil
		}
		s.log.Error("failed to create booking", zap.Error(err))
		return nil, fmt.Errorf("creating booking: %w", err)
	}

	s.metrics.BookingsAdmitted.Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		ActorEmail:   cmd.Patient,
		Action:       "create",
		ResourceType: "booking",
		ResourceID:   b.ID.String(),
		IPAddress:    ip,
	})

	s.log.Info("booking admitted",
		zap.String("booking_id", b.ID.String()),
		zap.String("treatment", cmd.Treatment),
		zap.String("date", cmd.Date),
	)

	return &booking.AdmissionResult{Accepted: true, Booking: b}, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id uuid.UUID, caller *domain.Claims) (*booking.Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if caller.Role != domain.RoleAdmin && !strings.EqualFold(b.Patient, caller.Email) {
		return nil, ErrForbidden
	}

	return b, nil
}

// ListPatientBookings returns the bookings of the requested patient. The
// requested email must equal the caller's identity; a mismatch is a
// permission failure, not a silent filter.
func (s *BookingService) ListPatientBookings(ctx context.Context, patient string, caller *domain.Claims) ([]*booking.Booking, error) {
	if caller.Role != domain.RoleAdmin && !strings.EqualFold(patient, caller.Email) {
		return nil, ErrForbidden
	}
	return s.repo.ListByPatient(ctx, patient)
}

// MarkPaid records a completed payment on the booking: paid flips to true and
// the processor transaction id is attached. This is the only mutation a
// booking ever receives.
func (s *BookingService) MarkPaid(ctx context.Context, id uuid.UUID, transactionID string, caller *domain.Claims, ip string) (*booking.Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if caller.Role != domain.RoleAdmin && !strings.EqualFold(b.Patient, caller.Email) {
		return nil, ErrForbidden
	}
	if b.Paid {
		return nil, booking.ErrAlreadyPaid
	}
	if strings.TrimSpace(transactionID) == "" {
		return nil, &ValidationError{Fields: []string{"transactionId is required"}}
	}

	updated, err := s.repo.MarkPaid(ctx, id, transactionID)
	if err != nil {
		s.log.Error("failed to mark booking paid", zap.String("booking_id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("marking booking paid: %w", err)
	}

	s.metrics.BookingsPaid.Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		ActorEmail:   caller.Email,
		ActorRole:    string(caller.Role),
		Action:       "update",
		ResourceType: "booking",
		ResourceID:   id.String(),
		IPAddress:    ip,
		Changes:      fmt.Sprintf(`{"paid":true,"transaction_id":"%s"}`, transactionID),
	})

	return updated, nil
}

func validateSubmitCommand(cmd *booking.SubmitBookingCommand) error {
	var errs []string

	if strings.TrimSpace(cmd.Treatment) == "" {
		errs = append(errs, "treatment is required")
	}
	if strings.TrimSpace(cmd.Date) == "" {
		errs = append(errs, "date is required")
	}
	if strings.TrimSpace(cmd.Patient) == "" {
		errs = append(errs, "patient is required")
	}
	if strings.TrimSpace(cmd.Slot) == "" {
		errs = append(errs, "slot is required")
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
