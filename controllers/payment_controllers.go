package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tischplan/reservation-app/models"
	"github.com/tischplan/reservation-app/services"
	"github.com/tischplan/reservation-app/utils"
)

type PaymentController struct {
	payments     *services.PaymentService
	reservations *services.ReservationService
}

func NewPaymentController(payments *services.PaymentService, reservations *services.ReservationService) *PaymentController {
	return &PaymentController{payments: payments, reservations: reservations}
}

// RecordCashPayment -> waiter-handled cash payment, settled immediately.
// On success the reservation is completed as a second, best-effort step.
func (pc *PaymentController) RecordCashPayment(c *gin.Context) {
	var req struct {
		ReservationID uint    `json:"reservation_id" binding:"required"`
		Amount        float64 `json:"amount" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	payment, err := pc.payments.RecordCashPayment(req.ReservationID, req.Amount)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}

	pc.completeAfterPayment(req.ReservationID)
	utils.RespondJSON(c, http.StatusCreated, "Cash payment recorded", payment)
}

// RecordElectronicPayment -> charge via the gateway; failures surface to the
// caller, the FAILED payment row stays behind for the audit trail.
func (pc *PaymentController) RecordElectronicPayment(c *gin.Context) {
	var req struct {
		ReservationID uint    `json:"reservation_id" binding:"required"`
		Amount        float64 `json:"amount" binding:"required,gt=0"`
		Method        string  `json:"method" binding:"required"`
		Token         string  `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	payment, err := pc.payments.RecordElectronicPayment(
		c.Request.Context(), req.ReservationID, req.Amount, req.Method, req.Token)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}

	pc.completeAfterPayment(req.ReservationID)
	utils.RespondJSON(c, http.StatusCreated, "Electronic payment recorded", payment)
}

// RefundPayment -> partial or full refund of a completed payment
func (pc *PaymentController) RefundPayment(c *gin.Context) {
	id, ok := paramID(c, "payment_id")
	if !ok {
		return
	}
	var req struct {
		Amount float64 `json:"amount" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	payment, err := pc.payments.Refund(id, req.Amount)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment refunded", payment)
}

// GetPaymentByID -> payment detail
func (pc *PaymentController) GetPaymentByID(c *gin.Context) {
	id, ok := paramID(c, "payment_id")
	if !ok {
		return
	}
	payment, err := pc.payments.GetByID(id)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment detail", payment)
}

// GetPaymentForReservation -> the payment recorded against one reservation
func (pc *PaymentController) GetPaymentForReservation(c *gin.Context) {
	id, ok := paramID(c, "reservation_id")
	if !ok {
		return
	}
	payment, err := pc.payments.GetByReservation(id)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment for reservation", payment)
}

// GetPaymentsByStatus -> audit listing, e.g. all FAILED attempts
func (pc *PaymentController) GetPaymentsByStatus(c *gin.Context) {
	status := c.Param("status")
	payments, err := pc.payments.ListByStatus(status)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payments with status: "+status, payments)
}

// GetPaymentStats -> dashboard revenue summary
func (pc *PaymentController) GetPaymentStats(c *gin.Context) {
	stats, err := pc.payments.Stats()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment statistics", stats)
}

// completeAfterPayment is the second half of the payment choreography. A
// reservation that cannot be completed (already finished, walk-in cleaned up
// by staff) is logged and left alone; the payment stands either way.
func (pc *PaymentController) completeAfterPayment(reservationID uint) {
	reservation, err := pc.reservations.GetByID(reservationID)
	if err != nil {
		utils.ErrorLogger.Printf("Could not load reservation %d after payment: %v", reservationID, err)
		return
	}
	if reservation.Status != models.ReservationCheckedIn && reservation.Status != models.ReservationTimeoutWarning {
		return
	}
	if _, err := pc.reservations.Complete(reservationID); err != nil {
		utils.ErrorLogger.Printf("Could not complete reservation %d after payment: %v", reservationID, err)
	}
}
