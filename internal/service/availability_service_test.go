package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/doctors-portal/api/internal/domain"
	"github.com/doctors-portal/api/internal/domain/booking"
	"github.com/doctors-portal/api/internal/domain/treatment"
	"github.com/doctors-portal/api/pkg/metrics"
)

// Prometheus collectors register globally, so the test binary shares one.
var (
	testMetricsOnce sync.Once
	testMetrics     *metrics.Collector
)

func testCollector() *metrics.Collector {
	testMetricsOnce.Do(func() {
		testMetrics = metrics.NewCollector("test")
	})
	return testMetrics
}

type fakeTreatmentRepo struct {
	treatments []*treatment.Treatment
	err        error
}

func (f *fakeTreatmentRepo) List(ctx context.Context) ([]*treatment.Treatment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.treatments, nil
}

func (f *fakeTreatmentRepo) GetByName(ctx context.Context, name string) (*treatment.Treatment, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, t := range f.treatments {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, treatment.ErrTreatmentNotFound
}

func (f *fakeTreatmentRepo) Seed(ctx context.Context, treatments []*treatment.Treatment) error {
	return nil
}

// fakeBookingRepo is an in-memory ledger with the same uniqueness behavior as
// the real store: one booking per (treatment, date, patient).
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings []*booking.Booking
	err      error
}

func intentKey(treatment, date, patient string) string {
	return treatment + "|" + date + "|" + patient
}

func (f *fakeBookingRepo) Create(ctx context.Context, b *booking.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.bookings {
		if intentKey(existing.Treatment, existing.Date, existing.Patient) == intentKey(b.Treatment, b.Date, b.Patient) {
			return booking.ErrDuplicateIntent
		}
	}
	b.ID = uuid.New()
	f.bookings = append(f.bookings, b)
	return nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, b := range f.bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, booking.ErrBookingNotFound
}

func (f *fakeBookingRepo) FindIntent(ctx context.Context, treatment, date, patient string) (*booking.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, b := range f.bookings {
		if b.Treatment == treatment && b.Date == date && b.Patient == patient {
			return b, nil
		}
	}
	return nil, booking.ErrBookingNotFound
}

func (f *fakeBookingRepo) ListByDate(ctx context.Context, date string) ([]*booking.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*booking.Booking
	for _, b := range f.bookings {
		if b.Date == date {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ListByPatient(ctx context.Context, patient string) ([]*booking.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*booking.Booking
	for _, b := range f.bookings {
		if b.Patient == patient {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) MarkPaid(ctx context.Context, id uuid.UUID, transactionID string) (*booking.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, b := range f.bookings {
		if b.ID == id {
			b.Paid = true
			b.TransactionID = transactionID
			return b, nil
		}
	}
	return nil, booking.ErrBookingNotFound
}

type fakeAuditRepo struct{}

func (fakeAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error { return nil }

func newAvailabilityService(treatments *fakeTreatmentRepo, bookings *fakeBookingRepo) *AvailabilityService {
	return NewAvailabilityService(treatments, bookings, testCollector(), zap.NewNop())
}

func TestComputeAvailability_SubtractsBookedSlots(t *testing.T) {
	treatments := &fakeTreatmentRepo{treatments: []*treatment.Treatment{
		{Name: "Cleaning", Price: 4000, Slots: []string{"9am", "10am", "11am"}},
	}}
	bookings := &fakeBookingRepo{bookings: []*booking.Booking{
		{ID: uuid.New(), Treatment: "Cleaning", Date: "2024-01-05", Patient: "a@x.com", Slot: "10am"},
	}}

	svc := newAvailabilityService(treatments, bookings)
	got, err := svc.ComputeAvailability(context.Background(), "2024-01-05")
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "Cleaning", got[0].Name)
	assert.Equal(t, int64(4000), got[0].Price)
	assert.Equal(t, []string{"9am", "11am"}, got[0].OpenSlots)
}

func TestComputeAvailability_PreservesCatalogOrder(t *testing.T) {
	treatments := &fakeTreatmentRepo{treatments: []*treatment.Treatment{
		{Name: "Whitening", Price: 9000, Slots: []string{"3pm", "1pm", "2pm", "9am"}},
	}}
	bookings := &fakeBookingRepo{bookings: []*booking.Booking{
		{ID: uuid.New(), Treatment: "Whitening", Date: "2024-03-01", Patient: "a@x.com", Slot: "1pm"},
		{ID: uuid.New(), Treatment: "Whitening", Date: "2024-03-01", Patient: "b@x.com", Slot: "9am"},
	}}

	svc := newAvailabilityService(treatments, bookings)
	got, err := svc.ComputeAvailability(context.Background(), "2024-03-01")
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, []string{"3pm", "2pm"}, got[0].OpenSlots)
}

func TestComputeAvailability_DateWithNoBookingsIsFullyOpen(t *testing.T) {
	slots := []string{"9am", "10am"}
	treatments := &fakeTreatmentRepo{treatments: []*treatment.Treatment{
		{Name: "Cleaning", Price: 4000, Slots: slots},
		{Name: "Whitening", Price: 9000, Slots: slots},
	}}
	bookings := &fakeBookingRepo{bookings: []*booking.Booking{
		{ID: uuid.New(), Treatment: "Cleaning", Date: "2024-01-05", Patient: "a@x.com", Slot: "9am"},
	}}

	svc := newAvailabilityService(treatments, bookings)
	got, err := svc.ComputeAvailability(context.Background(), "2099-12-31")
	require.NoError(t, err)
	require.Len(t, got, 2)

	for _, day := range got {
		assert.Equal(t, slots, day.OpenSlots, day.Name)
	}
}

func TestComputeAvailability_BookingsOnlyAffectTheirOwnTreatment(t *testing.T) {
	treatments := &fakeTreatmentRepo{treatments: []*treatment.Treatment{
		{Name: "Cleaning", Price: 4000, Slots: []string{"9am", "10am"}},
		{Name: "Whitening", Price: 9000, Slots: []string{"9am", "10am"}},
	}}
	bookings := &fakeBookingRepo{bookings: []*booking.Booking{
		{ID: uuid.New(), Treatment: "Cleaning", Date: "2024-01-05", Patient: "a@x.com", Slot: "9am"},
	}}

	svc := newAvailabilityService(treatments, bookings)
	got, err := svc.ComputeAvailability(context.Background(), "2024-01-05")
	require.NoError(t, err)
	require.Len(t, got, 2)

	byName := map[string][]string{}
	for _, day := range got {
		byName[day.Name] = day.OpenSlots
	}
	assert.Equal(t, []string{"10am"}, byName["Cleaning"])
	assert.Equal(t, []string{"9am", "10am"}, byName["Whitening"])
}

func TestComputeAvailability_EmptyCatalogYieldsEmptyOpenSlots(t *testing.T) {
	treatments := &fakeTreatmentRepo{treatments: []*treatment.Treatment{
		{Name: "Walk-in", Price: 1000, Slots: nil},
	}}
	svc := newAvailabilityService(treatments, &fakeBookingRepo{})

	got, err := svc.ComputeAvailability(context.Background(), "2024-01-05")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].OpenSlots)
}

func TestComputeAvailability_IsIdempotentAndDoesNotMutateCatalog(t *testing.T) {
	catalog := []string{"9am", "10am", "11am"}
	tr := &treatment.Treatment{Name: "Cleaning", Price: 4000, Slots: catalog}
	treatments := &fakeTreatmentRepo{treatments: []*treatment.Treatment{tr}}
	bookings := &fakeBookingRepo{bookings: []*booking.Booking{
		{ID: uuid.New(), Treatment: "Cleaning", Date: "2024-01-05", Patient: "a@x.com", Slot: "10am"},
	}}

	svc := newAvailabilityService(treatments, bookings)

	first, err := svc.ComputeAvailability(context.Background(), "2024-01-05")
	require.NoError(t, err)
	second, err := svc.ComputeAvailability(context.Background(), "2024-01-05")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"9am", "10am", "11am"}, tr.Slots)
}

func TestComputeAvailability_PropagatesStoreFaults(t *testing.T) {
	boom := errors.New("connection reset")

	svc := newAvailabilityService(&fakeTreatmentRepo{err: boom}, &fakeBookingRepo{})
	_, err := svc.ComputeAvailability(context.Background(), "2024-01-05")
	assert.ErrorIs(t, err, boom)

	svc = newAvailabilityService(
		&fakeTreatmentRepo{treatments: []*treatment.Treatment{{Name: "Cleaning", Slots: []string{"9am"}}}},
		&fakeBookingRepo{err: boom},
	)
	_, err = svc.ComputeAvailability(context.Background(), "2024-01-05")
	assert.ErrorIs(t, err, boom)
}
