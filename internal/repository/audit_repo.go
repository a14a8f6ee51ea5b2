package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/doctors-portal/api/internal/domain"
	"github.com/doctors-portal/api/internal/service"
)

type AuditRepo struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

var _ service.AuditRepository = (*AuditRepo)(nil)

func (r *AuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}
	return nil
}
