package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/pankajkkc01/RAG-application/internal/model"
)

type ChatLogRepository struct {
	db *gorm.DB
}

func NewChatLogRepository(db *gorm.DB) *ChatLogRepository {
	return &ChatLogRepository{db: db}
}

func (r *ChatLogRepository) Create(entry *model.ChatLog) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("create chat log failed: %w", err)
	}
	return nil
}

// ListBySessionID returns the session's turns in conversational order.
func (r *ChatLogRepository) ListBySessionID(sessionID string) ([]model.ChatLog, error) {
	var logs []model.ChatLog
	if err := r.db.Where("session_id = ?", sessionID).Order("created_at ASC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list chat logs failed: %w", err)
	}
	return logs, nil
}
