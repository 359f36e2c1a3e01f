package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/pankajkkc01/RAG-application/internal/model"
)

type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Create(fb *model.Feedback) error {
	if err := r.db.Create(fb).Error; err != nil {
		return fmt.Errorf("create feedback log failed: %w", err)
	}
	return nil
}
