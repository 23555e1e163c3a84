package models

import "time"

// Table statuses
const (
	TableAvailable = "AVAILABLE"
	TableReserved  = "RESERVED"
	TableOccupied  = "OCCUPIED"
	TableCleaning  = "CLEANING"
)

type Table struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	RestaurantID         uint      `gorm:"not null;index" json:"restaurant_id"`
	TableNumber          string    `gorm:"type:varchar(50);not null" json:"table_number"`
	Capacity             int       `gorm:"not null" json:"capacity"`
	Status               string    `gorm:"type:varchar(20);not null;default:'AVAILABLE'" json:"status"`
	CurrentReservationID *uint     `gorm:"index" json:"current_reservation_id,omitempty"`
	CreatedAt            time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time `gorm:"not null" json:"updated_at"`
}

// IsBound reports whether the table currently holds a reservation.
// Invariant: true exactly when status is RESERVED or OCCUPIED.
func (t *Table) IsBound() bool {
	return t.CurrentReservationID != nil
}
