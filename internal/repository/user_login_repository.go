package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/pankajkkc01/RAG-application/internal/model"
)

type UserLoginRepository struct {
	db *gorm.DB
}

func NewUserLoginRepository(db *gorm.DB) *UserLoginRepository {
	return &UserLoginRepository{db: db}
}

func (r *UserLoginRepository) Create(login *model.UserLogin) error {
	if err := r.db.Create(login).Error; err != nil {
		return fmt.Errorf("create user login failed: %w", err)
	}
	return nil
}

// List returns all login records, most recent first.
func (r *UserLoginRepository) List() ([]model.UserLogin, error) {
	var logins []model.UserLogin
	if err := r.db.Order("created_at DESC").Find(&logins).Error; err != nil {
		return nil, fmt.Errorf("list user logins failed: %w", err)
	}
	return logins, nil
}
