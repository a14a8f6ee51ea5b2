package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/doctors-portal/api/internal/domain/booking"
)

type BookingRepo struct {
	db *gorm.DB
}

func NewBookingRepo(db *gorm.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

var _ booking.Repository = (*BookingRepo)(nil)

func (r *BookingRepo) Create(ctx context.Context, b *booking.Booking) error {
	err := r.db.WithContext(ctx).Create(b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return booking.ErrDuplicateIntent
		}
		return fmt.Errorf("inserting booking: %w", err)
	}
	return nil
}

func (r *BookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	var b booking.Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("getting booking %s: %w", id, err)
	}
	return &b, nil
}

func (r *BookingRepo) FindIntent(ctx context.Context, treatment, date, patient string) (*booking.Booking, error) {
	var b booking.Booking
	err := r.db.WithContext(ctx).
		Where("treatment = ? AND date = ? AND patient = ?", treatment, date, patient).
		First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("finding booking intent: %w", err)
	}
	return &b, nil
}

func (r *BookingRepo) ListByDate(ctx context.Context, date string) ([]*booking.Booking, error) {
	var bookings []*booking.Booking
	if err := r.db.WithContext(ctx).Where("date = ?", date).Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("listing bookings for %s: %w", date, err)
	}
	return bookings, nil
}

func (r *BookingRepo) ListByPatient(ctx context.Context, patient string) ([]*booking.Booking, error) {
	var bookings []*booking.Booking
	err := r.db.WithContext(ctx).
		Where("patient = ?", patient).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("listing bookings for patient: %w", err)
	}
	return bookings, nil
}

func (r *BookingRepo) MarkPaid(ctx context.Context, id uuid.UUID, transactionID string) (*booking.Booking, error) {
	res := r.db.WithContext(ctx).
		Model(&booking.Booking{}).
		Where("id = ?", id).
		Updates(map[string]any{"paid": true, "transaction_id": transactionID})
	if res.Error != nil {
		return nil, fmt.Errorf("marking booking paid: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, booking.ErrBookingNotFound
	}
	return r.GetByID(ctx, id)
}
