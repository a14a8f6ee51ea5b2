package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/doctors-portal/api/internal/domain/treatment"
)

type TreatmentRepo struct {
	db *gorm.DB
}

func NewTreatmentRepo(db *gorm.DB) *TreatmentRepo {
	return &TreatmentRepo{db: db}
}

var _ treatment.Repository = (*TreatmentRepo)(nil)

func (r *TreatmentRepo) List(ctx context.Context) ([]*treatment.Treatment, error) {
	var treatments []*treatment.Treatment
	if err := r.db.WithContext(ctx).Order("name").Find(&treatments).Error; err != nil {
		return nil, fmt.Errorf("listing treatments: %w", err)
	}
	return treatments, nil
}

func (r *TreatmentRepo) GetByName(ctx context.Context, name string) (*treatment.Treatment, error) {
	var t treatment.Treatment
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, treatment.ErrTreatmentNotFound
		}
		return nil, fmt.Errorf("getting treatment %q: %w", name, err)
	}
	return &t, nil
}

func (r *TreatmentRepo) Seed(ctx context.Context, treatments []*treatment.Treatment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&treatment.Treatment{}).Count(&count).Error; err != nil {
			return fmt.Errorf("counting treatments: %w", err)
		}
		if count > 0 {
			return nil
		}
		if err := tx.Create(treatments).Error; err != nil {
			return fmt.Errorf("inserting treatments: %w", err)
		}
		return nil
	})
}
