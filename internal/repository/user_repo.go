package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/doctors-portal/api/internal/domain"
	"github.com/doctors-portal/api/internal/service"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

var _ service.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user %q: %w", email, err)
	}
	return &u, nil
}

// Upsert writes the profile stored under u.Email. An existing account keeps
// its role and, when no new password hash is supplied, its credentials.
func (r *UserRepo) Upsert(ctx context.Context, u *domain.User) (*domain.User, error) {
	var saved *domain.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.User
		err := tx.Where("email = ?", u.Email).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(u).Error; err != nil {
				return fmt.Errorf("creating user: %w", err)
			}
			saved = u
			return nil
		case err != nil:
			return fmt.Errorf("looking up user: %w", err)
		}

		existing.Name = u.Name
		if u.PasswordHash != "" {
			existing.PasswordHash = u.PasswordHash
		}
		if err := tx.Save(&existing).Error; err != nil {
			return fmt.Errorf("updating user: %w", err)
		}
		saved = &existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *UserRepo) List(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	if err := r.db.WithContext(ctx).Order("email").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

func (r *UserRepo) UpdateRole(ctx context.Context, email string, role domain.Role) error {
	res := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("email = ?", email).
		Update("role", role)
	if res.Error != nil {
		return fmt.Errorf("updating role: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return service.ErrUserNotFound
	}
	return nil
}
