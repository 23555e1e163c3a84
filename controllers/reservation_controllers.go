package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tischplan/reservation-app/services"
	"github.com/tischplan/reservation-app/utils"
)

type ReservationController struct {
	reservations *services.ReservationService
}

func NewReservationController(reservations *services.ReservationService) *ReservationController {
	return &ReservationController{reservations: reservations}
}

// CreateReservation -> book a table; guest_emails makes it a group booking
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var req struct {
		CustomerID          uint      `json:"customer_id" binding:"required"`
		RestaurantID        uint      `json:"restaurant_id" binding:"required"`
		ReservationDateTime time.Time `json:"reservation_date_time" binding:"required"`
		NumberOfGuests      int       `json:"number_of_guests" binding:"required,min=1"`
		PhoneNumber         string    `json:"phone_number"`
		GuestEmails         []string  `json:"guest_emails"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	reservation, err := rc.reservations.Create(services.CreateReservationInput{
		CustomerID:          req.CustomerID,
		RestaurantID:        req.RestaurantID,
		ReservationDateTime: req.ReservationDateTime,
		NumberOfGuests:      req.NumberOfGuests,
		PhoneNumber:         req.PhoneNumber,
		GuestEmails:         req.GuestEmails,
	})
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Reservation created", reservation)
}

// GetAllReservations -> list all reservations
func (rc *ReservationController) GetAllReservations(c *gin.Context) {
	reservations, err := rc.reservations.ListAll()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", reservations)
}

// GetReservationByID -> one reservation with its group members
func (rc *ReservationController) GetReservationByID(c *gin.Context) {
	id, ok := paramID(c, "reservation_id")
	if !ok {
		return
	}
	reservation, err := rc.reservations.GetByID(id)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation detail", reservation)
}

// GetReservationsByStatus -> filter by lifecycle state
func (rc *ReservationController) GetReservationsByStatus(c *gin.Context) {
	status := c.Param("status")
	reservations, err := rc.reservations.ListByStatus(status)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservations with status: "+status, reservations)
}

// GetReservationsByCustomer -> booking history of one customer
func (rc *ReservationController) GetReservationsByCustomer(c *gin.Context) {
	customerID, ok := paramID(c, "customer_id")
	if !ok {
		return
	}
	reservations, err := rc.reservations.ListByCustomer(customerID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservations for customer", reservations)
}

// GetReservationsByRestaurant -> restaurant-scoped listing
func (rc *ReservationController) GetReservationsByRestaurant(c *gin.Context) {
	restaurantID, ok := paramID(c, "restaurant_id")
	if !ok {
		return
	}
	reservations, err := rc.reservations.ListByRestaurant(restaurantID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservations for restaurant", reservations)
}

// CancelReservation -> cancel, computing the late-cancellation fee
func (rc *ReservationController) CancelReservation(c *gin.Context) {
	id, ok := paramID(c, "reservation_id")
	if !ok {
		return
	}
	reservation, err := rc.reservations.Cancel(id, time.Now())
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation cancelled", reservation)
}

// CheckInReservation -> guests arrived, occupy the table
func (rc *ReservationController) CheckInReservation(c *gin.Context) {
	id, ok := paramID(c, "reservation_id")
	if !ok {
		return
	}
	reservation, err := rc.reservations.CheckIn(id)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Checked in", reservation)
}

// CompleteReservation -> visit over, table goes to cleaning
func (rc *ReservationController) CompleteReservation(c *gin.Context) {
	id, ok := paramID(c, "reservation_id")
	if !ok {
		return
	}
	reservation, err := rc.reservations.Complete(id)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation completed", reservation)
}

// MarkNoShow -> manual no-show flag with absence fee
func (rc *ReservationController) MarkNoShow(c *gin.Context) {
	id, ok := paramID(c, "reservation_id")
	if !ok {
		return
	}
	reservation, err := rc.reservations.MarkNoShow(id)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation marked as no-show", reservation)
}

// AssignTable -> manual table assignment for PENDING reservations
func (rc *ReservationController) AssignTable(c *gin.Context) {
	id, ok := paramID(c, "reservation_id")
	if !ok {
		return
	}
	var body struct {
		TableID uint `json:"table_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	reservation, err := rc.reservations.AssignTable(id, body.TableID)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table assigned", reservation)
}

// CreateWalkIn -> seat guests without a booking
func (rc *ReservationController) CreateWalkIn(c *gin.Context) {
	var req struct {
		TableID        uint `json:"table_id" binding:"required"`
		NumberOfGuests int  `json:"number_of_guests" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	reservation, err := rc.reservations.CreateWalkIn(req.TableID, req.NumberOfGuests)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Walk-in created", reservation)
}

// DeleteReservation -> administrative removal, cascades group members
func (rc *ReservationController) DeleteReservation(c *gin.Context) {
	id, ok := paramID(c, "reservation_id")
	if !ok {
		return
	}
	if err := rc.reservations.Delete(id); err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.InfoLogger.Printf("Reservation %d deleted", id)
	utils.RespondJSON(c, http.StatusOK, "Reservation deleted", gin.H{"id": id})
}
