package model

import "time"

// ChatLog is one chat turn. Rows are append-only; ordering by CreatedAt
// defines the conversational order within a session.
type ChatLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"size:64;not null;index" json:"session_id"`
	Question  string    `gorm:"type:text;not null" json:"question"`
	Answer    string    `gorm:"type:text;not null" json:"answer"`
	Model     string    `gorm:"size:64;not null" json:"model"`
	CreatedAt time.Time `json:"created_at"`
}
