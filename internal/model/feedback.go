package model

import "time"

// Feedback is an append-only user rating of one Q/A pair.
type Feedback struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"size:64;not null;index" json:"session_id"`
	Question  string    `gorm:"type:text;not null" json:"question"`
	Answer    string    `gorm:"type:text;not null" json:"answer"`
	Feedback  string    `gorm:"type:text;not null" json:"feedback"`
	CreatedAt time.Time `json:"created_at"`
}
