package models

import "time"

// GroupMember is one guest of a group reservation. Each member carries an
// individually signed check-in token so guests can arrive separately.
type GroupMember struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ReservationID uint      `gorm:"not null;index" json:"reservation_id"`
	GuestName     string    `gorm:"type:varchar(100)" json:"guest_name"`
	Email         string    `gorm:"type:varchar(100);not null" json:"email"`
	CheckinToken  string    `gorm:"type:text" json:"checkin_token,omitempty"`
	CheckedIn     bool      `gorm:"default:false" json:"checked_in"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}
