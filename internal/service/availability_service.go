package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/doctors-portal/api/internal/domain/booking"
	"github.com/doctors-portal/api/internal/domain/treatment"
	"github.com/doctors-portal/api/pkg/metrics"
)

type AvailabilityService struct {
	treatments treatment.Repository
	bookings   booking.Repository
	metrics    *metrics.Collector
	log        *zap.Logger
}

func NewAvailabilityService(
	treatments treatment.Repository,
	bookings booking.Repository,
	m *metrics.Collector,
	log *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{treatments: treatments, bookings: bookings, metrics: m, log: log}
}

// ComputeAvailability returns, for every treatment, the slots still open on
// the given date: the full catalog minus every slot value claimed by a booking
// whose date matches exactly. Dates are opaque labels here; a label no booking
// carries simply yields a fully open day. The catalog itself is never touched:
// each result holds a freshly built slot list.
func (s *AvailabilityService) ComputeAvailability(ctx context.Context, date string) ([]*treatment.DayAvailability, error) {
	treatments, err := s.treatments.List(ctx)
	if err != nil {
		s.log.Error("failed to load treatment catalog", zap.Error(err))
		return nil, fmt.Errorf("loading treatments: %w", err)
	}

	booked, err := s.bookings.ListByDate(ctx, date)
	if err != nil {
		s.log.Error("failed to load bookings", zap.String("date", date), zap.Error(err))
		return nil, fmt.Errorf("loading bookings for %s: %w", date, err)
	}

	// Index booked slot values per treatment name.
	taken := make(map[string]map[string]struct{}, len(treatments))
	for _, b := range booked {
		if taken[b.Treatment] == nil {
			taken[b.Treatment] = make(map[string]struct{})
		}
		taken[b.Treatment][b.Slot] = struct{}{}
	}

	result := make([]*treatment.DayAvailability, 0, len(treatments))
	for _, t := range treatments {
		open := make([]string, 0, len(t.Slots))
		for _, slot := range t.Slots {
			if _, ok := taken[t.Name][slot]; !ok {
				open = append(open, slot)
			}
		}
		result = append(result, &treatment.DayAvailability{
			Name:      t.Name,
			Price:     t.Price,
			OpenSlots: open,
		})
	}

	s.metrics.AvailabilityReads.Inc()
	return result, nil
}

// ListTreatments exposes the raw catalog (full slot lists, no date applied).
func (s *AvailabilityService) ListTreatments(ctx context.Context) ([]*treatment.Treatment, error) {
	return s.treatments.List(ctx)
}
