package model

import "time"

// UserLogin is an append-only audit record of a successful login.
type UserLogin struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Email     string    `gorm:"size:128;not null" json:"email"`
	Phone     string    `gorm:"size:32;not null" json:"phone"`
	CreatedAt time.Time `json:"login_time"`
}
