package model

// AllowedUser is one allow-list entry. Membership is checked
// case-insensitively on name and email and exactly (after trimming) on phone.
type AllowedUser struct {
	ID    uint   `gorm:"primaryKey" json:"-"`
	Name  string `gorm:"size:128;not null" json:"name"`
	Email string `gorm:"size:128;not null;index" json:"email"`
	Phone string `gorm:"size:32;not null" json:"phone"`
}
