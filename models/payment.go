package models

import "time"

// Payment statuses
const (
	PaymentPending   = "PENDING"
	PaymentCompleted = "COMPLETED"
	PaymentFailed    = "FAILED"
	PaymentRefunded  = "REFUNDED"
)

// Payment methods
const (
	MethodCash       = "CASH"
	MethodCreditCard = "CREDIT_CARD"
	MethodPayPal     = "PAYPAL"
)

// Payment records one payment attempt against a reservation. At most one
// COMPLETED payment may exist per reservation.
type Payment struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	ReservationID uint       `gorm:"not null;index" json:"reservation_id"`
	Amount        float64    `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaymentMethod string     `gorm:"type:varchar(20);not null" json:"payment_method"`
	Status        string     `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	TransactionID string     `gorm:"type:varchar(100)" json:"transaction_id,omitempty"`
	RefundAmount  float64    `gorm:"type:decimal(10,2);default:0.00" json:"refund_amount"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`
}
