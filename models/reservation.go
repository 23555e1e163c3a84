package models

import "time"

// Reservation statuses. CANCELLED, COMPLETED and NO_SHOW are terminal.
const (
	ReservationPending        = "PENDING"
	ReservationConfirmed      = "CONFIRMED"
	ReservationCheckedIn      = "CHECKED_IN"
	ReservationCompleted      = "COMPLETED"
	ReservationCancelled      = "CANCELLED"
	ReservationNoShow         = "NO_SHOW"
	ReservationTimeoutWarning = "TIMEOUT_WARNING"
)

// WalkInCustomerID is the sentinel customer id for walk-in guests.
const WalkInCustomerID uint = 0

// DefaultDurationMinutes is the expected visit length of a reservation.
const DefaultDurationMinutes = 120

type Reservation struct {
	ID                  uint          `gorm:"primaryKey" json:"id"`
	CustomerID          uint          `gorm:"not null;index" json:"customer_id"`
	RestaurantID        uint          `gorm:"not null;index" json:"restaurant_id"`
	TableID             *uint         `gorm:"index" json:"table_id,omitempty"`
	ReservationDateTime time.Time     `gorm:"not null" json:"reservation_date_time"`
	DurationMinutes     int           `gorm:"default:120" json:"duration_minutes"`
	NumberOfGuests      int           `gorm:"not null" json:"number_of_guests"`
	Status              string        `gorm:"type:varchar(30);not null;default:'PENDING';index" json:"status"`
	IsGroupReservation  bool          `gorm:"default:false" json:"is_group_reservation"`
	PhoneNumber         string        `gorm:"type:varchar(30)" json:"phone_number,omitempty"`
	CheckinToken        string        `gorm:"type:text" json:"checkin_token,omitempty"`
	CancellationFee     float64       `gorm:"type:decimal(10,2);default:0.00" json:"cancellation_fee"`
	CheckedInAt         *time.Time    `json:"checked_in_at,omitempty"`
	CreatedAt           time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time     `gorm:"not null" json:"updated_at"`
	GroupMembers        []GroupMember `gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE" json:"group_members,omitempty"`
}

// IsTerminal reports whether the reservation can no longer change state.
func (r *Reservation) IsTerminal() bool {
	switch r.Status {
	case ReservationCompleted, ReservationCancelled, ReservationNoShow:
		return true
	}
	return false
}
