package services

import (
	"context"
	"fmt"
	"time"

	"github.com/tischplan/reservation-app/models"
	"github.com/tischplan/reservation-app/utils"
	"gorm.io/gorm"
)

// PaymentService records payment attempts against reservations. Completing
// the reservation after a successful payment is the caller's step, not ours;
// the two can fail independently and must only be logged, never rolled back.
type PaymentService struct {
	db           *gorm.DB
	reservations *ReservationService
	gateway      PaymentGateway
}

func NewPaymentService(db *gorm.DB, reservations *ReservationService, gateway PaymentGateway) *PaymentService {
	return &PaymentService{db: db, reservations: reservations, gateway: gateway}
}

// RecordCashPayment settles a cash payment handed to the waiter. Synchronous,
// no gateway involved.
func (s *PaymentService) RecordCashPayment(reservationID uint, amount float64) (*models.Payment, error) {
	if err := s.ensurePayable(reservationID, amount); err != nil {
		return nil, err
	}

	now := time.Now()
	payment := &models.Payment{
		ReservationID: reservationID,
		Amount:        amount,
		PaymentMethod: models.MethodCash,
		Status:        models.PaymentCompleted,
		TransactionID: fmt.Sprintf("CASH_%d", now.UnixMilli()),
		PaidAt:        &now,
	}
	if err := s.db.Create(payment).Error; err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Cash payment %d recorded for reservation %d (%.2f)",
		payment.ID, reservationID, amount)
	return payment, nil
}

// RecordElectronicPayment charges an external gateway. The payment row is
// created PENDING first so a failed charge leaves a FAILED record behind; the
// gateway error is surfaced, not retried.
func (s *PaymentService) RecordElectronicPayment(ctx context.Context, reservationID uint, amount float64, method, token string) (*models.Payment, error) {
	if method != models.MethodCreditCard && method != models.MethodPayPal {
		return nil, &utils.ValidationError{Field: "payment_method", Reason: "must be CREDIT_CARD or PAYPAL"}
	}
	if err := s.ensurePayable(reservationID, amount); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		ReservationID: reservationID,
		Amount:        amount,
		PaymentMethod: method,
		Status:        models.PaymentPending,
	}
	if err := s.db.Create(payment).Error; err != nil {
		return nil, err
	}

	transactionID, err := s.gateway.Charge(ctx, method, amount, token)
	if err != nil {
		payment.Status = models.PaymentFailed
		if saveErr := s.db.Save(payment).Error; saveErr != nil {
			utils.ErrorLogger.Printf("Could not mark payment %d as failed: %v", payment.ID, saveErr)
		}
		return payment, &utils.UpstreamError{Service: "payment gateway", Err: err}
	}

	now := time.Now()
	payment.Status = models.PaymentCompleted
	payment.TransactionID = transactionID
	payment.PaidAt = &now
	if err := s.db.Save(payment).Error; err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("%s payment %d completed for reservation %d (%.2f, txn=%s)",
		method, payment.ID, reservationID, amount, transactionID)
	return payment, nil
}

// Refund returns money on a completed payment. Partial refunds are allowed up
// to the original amount.
func (s *PaymentService) Refund(paymentID uint, amount float64) (*models.Payment, error) {
	payment, err := s.GetByID(paymentID)
	if err != nil {
		return nil, err
	}

	if payment.Status != models.PaymentCompleted {
		return nil, &utils.InvalidStateError{
			Resource: "payment",
			Current:  payment.Status,
			Required: models.PaymentCompleted,
		}
	}
	if amount <= 0 || amount > payment.Amount {
		return nil, &utils.ValidationError{
			Field:  "refund_amount",
			Reason: fmt.Sprintf("must be positive and at most %.2f", payment.Amount),
		}
	}

	payment.RefundAmount = amount
	payment.Status = models.PaymentRefunded
	if err := s.db.Save(payment).Error; err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Refunded %.2f on payment %d", amount, paymentID)
	return payment, nil
}

func (s *PaymentService) GetByID(id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.First(&payment, id).Error; err != nil {
		return nil, &utils.NotFoundError{Resource: "payment", ID: id}
	}
	return &payment, nil
}

func (s *PaymentService) GetByReservation(reservationID uint) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.Where("reservation_id = ?", reservationID).First(&payment).Error
	if err != nil {
		return nil, &utils.NotFoundError{Resource: "payment for reservation", ID: reservationID}
	}
	return &payment, nil
}

func (s *PaymentService) ListByStatus(status string) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.db.Where("status = ?", status).Find(&payments).Error
	return payments, err
}

// IsReservationPaid reports whether the reservation has a completed payment.
func (s *PaymentService) IsReservationPaid(reservationID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.Payment{}).
		Where("reservation_id = ? AND status = ?", reservationID, models.PaymentCompleted).
		Count(&count).Error
	return count > 0, err
}

// Stats summarizes completed payments for the dashboard.
func (s *PaymentService) Stats() (map[string]interface{}, error) {
	var payments []models.Payment
	if err := s.db.Where("status = ?", models.PaymentCompleted).Find(&payments).Error; err != nil {
		return nil, err
	}

	var total, today, cash, card float64
	var todayCount int
	midnight := time.Now().Truncate(24 * time.Hour)
	for _, p := range payments {
		total += p.Amount
		if p.PaidAt != nil && !p.PaidAt.Before(midnight) {
			today += p.Amount
			todayCount++
		}
		switch p.PaymentMethod {
		case models.MethodCash:
			cash += p.Amount
		case models.MethodCreditCard:
			card += p.Amount
		}
	}

	return map[string]interface{}{
		"total_revenue": total,
		"today_revenue": today,
		"cash_payments": cash,
		"card_payments": card,
		"payment_count": len(payments),
		"today_count":   todayCount,
	}, nil
}

// ensurePayable verifies the reservation exists and has no completed payment
// yet. One completed payment per reservation, ever.
func (s *PaymentService) ensurePayable(reservationID uint, amount float64) error {
	if amount <= 0 {
		return &utils.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if _, err := s.reservations.GetByID(reservationID); err != nil {
		return err
	}

	paid, err := s.IsReservationPaid(reservationID)
	if err != nil {
		return err
	}
	if paid {
		return &utils.InvalidStateError{
			Resource: "payment",
			Current:  models.PaymentCompleted,
			Required: "no completed payment for the reservation",
		}
	}
	return nil
}
