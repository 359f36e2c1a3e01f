package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/pankajkkc01/RAG-application/internal/model"
)

type AllowedUserRepository struct {
	db *gorm.DB
}

func NewAllowedUserRepository(db *gorm.DB) *AllowedUserRepository {
	return &AllowedUserRepository{db: db}
}

func (r *AllowedUserRepository) CreateBatch(users []model.AllowedUser) error {
	if len(users) == 0 {
		return nil
	}
	if err := r.db.Create(&users).Error; err != nil {
		return fmt.Errorf("create allowed users failed: %w", err)
	}
	return nil
}

func (r *AllowedUserRepository) DeleteByEmail(email string) error {
	if err := r.db.Where("email = ?", email).Delete(&model.AllowedUser{}).Error; err != nil {
		return fmt.Errorf("delete allowed user failed: %w", err)
	}
	return nil
}

func (r *AllowedUserRepository) List() ([]model.AllowedUser, error) {
	var users []model.AllowedUser
	if err := r.db.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list allowed users failed: %w", err)
	}
	return users, nil
}

// IsAllowed reports whether an allow-list row matches: name and email
// case-insensitively after trimming, phone exactly after trimming.
func (r *AllowedUserRepository) IsAllowed(name, email, phone string) (bool, error) {
	var count int64
	err := r.db.Model(&model.AllowedUser{}).
		Where("LOWER(TRIM(name)) = LOWER(TRIM(?)) AND LOWER(TRIM(email)) = LOWER(TRIM(?)) AND TRIM(phone) = TRIM(?)",
			name, email, phone).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check allowed user failed: %w", err)
	}
	return count > 0, nil
}
