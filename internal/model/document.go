package model

import "time"

// Document records an uploaded file. Only metadata is stored here; the
// content lives in the vector index tagged with this record's ID.
type Document struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Filename  string    `gorm:"size:256;not null" json:"filename"`
	CreatedAt time.Time `json:"upload_timestamp"`
}
