package services

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/tischplan/reservation-app/models"
	"github.com/tischplan/reservation-app/utils"
	"gorm.io/gorm"
)

// Cancellation policy: free until 30 minutes before the reservation, then a
// flat fee of 10 (single) or 20 (group). No-shows pay 10 per guest.
const (
	FreeCancellationWindow = 30 * time.Minute
	CancellationFeeSingle  = 10.0
	CancellationFeeGroup   = 20.0
	AbsenceFeePerGuest     = 10.0

	// NoShowGrace is how long after the reservation time a confirmed guest
	// may still check in before the sweep marks the reservation NO_SHOW.
	NoShowGrace = 15 * time.Minute
)

var validate = validator.New()

// ReservationService owns the reservation lifecycle. It drives the table
// registry so reservation and table state always move together.
type ReservationService struct {
	db     *gorm.DB
	tables *TableService
	tokens *TokenService
}

func NewReservationService(db *gorm.DB, tables *TableService, tokens *TokenService) *ReservationService {
	return &ReservationService{db: db, tables: tables, tokens: tokens}
}

// CreateReservationInput carries everything needed to book a table.
// GuestEmails turns the booking into a group reservation with one signed
// token per guest.
type CreateReservationInput struct {
	CustomerID          uint      `validate:"required"`
	RestaurantID        uint      `validate:"required"`
	ReservationDateTime time.Time `validate:"required"`
	NumberOfGuests      int       `validate:"required,min=1"`
	PhoneNumber         string    `validate:"omitempty,e164"`
	GuestEmails         []string  `validate:"omitempty,dive,email"`
}

// Create books a reservation. If a free table with enough capacity exists the
// reservation is CONFIRMED and the table RESERVED; otherwise it stays PENDING
// without a table. A check-in token is always minted.
func (s *ReservationService) Create(input CreateReservationInput) (*models.Reservation, error) {
	if err := validate.Struct(input); err != nil {
		return nil, &utils.ValidationError{Field: "reservation", Reason: err.Error()}
	}

	reservation := &models.Reservation{
		CustomerID:          input.CustomerID,
		RestaurantID:        input.RestaurantID,
		ReservationDateTime: input.ReservationDateTime,
		DurationMinutes:     models.DefaultDurationMinutes,
		NumberOfGuests:      input.NumberOfGuests,
		PhoneNumber:         input.PhoneNumber,
		Status:              models.ReservationPending,
		IsGroupReservation:  len(input.GuestEmails) > 0,
	}
	if err := s.db.Create(reservation).Error; err != nil {
		return nil, err
	}

	// Auto-assign the smallest free table that fits. Another booking may take
	// a candidate between the read and the bind, so walk the list until a
	// Reserve wins.
	candidates, err := s.tables.FindAvailable(input.RestaurantID, input.NumberOfGuests)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		if _, err := s.tables.Reserve(candidates[i].ID, reservation.ID); err == nil {
			tableID := candidates[i].ID
			reservation.TableID = &tableID
			reservation.Status = models.ReservationConfirmed
			break
		}
	}

	reservation.CheckinToken = s.tokens.Issue(reservation.ID, 0)

	for i, email := range input.GuestEmails {
		reservation.GroupMembers = append(reservation.GroupMembers, models.GroupMember{
			ReservationID: reservation.ID,
			GuestName:     email,
			Email:         email,
			CheckinToken:  s.tokens.Issue(reservation.ID, uint(i+1)),
		})
	}

	if err := s.db.Save(reservation).Error; err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Created reservation %d (status=%s, guests=%d, group=%t)",
		reservation.ID, reservation.Status, reservation.NumberOfGuests, reservation.IsGroupReservation)
	return reservation, nil
}

func (s *ReservationService) GetByID(id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := s.db.Preload("GroupMembers").First(&reservation, id).Error; err != nil {
		return nil, &utils.NotFoundError{Resource: "reservation", ID: id}
	}
	return &reservation, nil
}

func (s *ReservationService) ListAll() ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := s.db.Preload("GroupMembers").Find(&reservations).Error
	return reservations, err
}

func (s *ReservationService) ListByStatus(status string) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := s.db.Where("status = ?", status).Find(&reservations).Error
	return reservations, err
}

func (s *ReservationService) ListByCustomer(customerID uint) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := s.db.Where("customer_id = ?", customerID).Find(&reservations).Error
	return reservations, err
}

func (s *ReservationService) ListByRestaurant(restaurantID uint) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := s.db.Where("restaurant_id = ?", restaurantID).Find(&reservations).Error
	return reservations, err
}

// ListActive returns reservations whose party is currently seated.
func (s *ReservationService) ListActive() ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := s.db.Where("status IN ?",
		[]string{models.ReservationCheckedIn, models.ReservationTimeoutWarning}).
		Find(&reservations).Error
	return reservations, err
}

// Cancel cancels a reservation and frees its table. The fee depends on how
// close to the reservation time the cancellation happens.
func (s *ReservationService) Cancel(id uint, now time.Time) (*models.Reservation, error) {
	reservation, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if reservation.Status == models.ReservationCancelled || reservation.Status == models.ReservationCompleted {
		return nil, &utils.InvalidStateError{Resource: "reservation", Current: reservation.Status}
	}

	reservation.CancellationFee = s.CancellationFee(reservation, now)
	reservation.Status = models.ReservationCancelled

	if reservation.TableID != nil {
		if _, err := s.tables.Free(*reservation.TableID); err != nil {
			utils.ErrorLogger.Printf("Could not free table %d for cancelled reservation %d: %v",
				*reservation.TableID, id, err)
		}
	}

	if err := s.db.Save(reservation).Error; err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Cancelled reservation %d with fee %.2f", id, reservation.CancellationFee)
	return reservation, nil
}

// CancellationFee returns 0 when cancelled at least 30 minutes ahead,
// otherwise the flat single/group fee.
func (s *ReservationService) CancellationFee(reservation *models.Reservation, now time.Time) float64 {
	if reservation.ReservationDateTime.Sub(now) >= FreeCancellationWindow {
		return 0
	}
	if reservation.IsGroupReservation {
		return CancellationFeeGroup
	}
	return CancellationFeeSingle
}

// CheckIn marks the guests as arrived and occupies their table. Allowed from
// PENDING or CONFIRMED only, and only when a table is bound.
func (s *ReservationService) CheckIn(id uint) (*models.Reservation, error) {
	reservation, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if reservation.Status != models.ReservationConfirmed && reservation.Status != models.ReservationPending {
		return nil, &utils.InvalidStateError{
			Resource: "reservation",
			Current:  reservation.Status,
			Required: "PENDING or CONFIRMED",
		}
	}
	if reservation.TableID == nil {
		return nil, &utils.ValidationError{
			Field:  "table",
			Reason: fmt.Sprintf("no table assigned to reservation %d", id),
		}
	}

	table, err := s.tables.Occupy(*reservation.TableID, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	reservation.Status = models.ReservationCheckedIn
	reservation.CheckedInAt = &now
	if err := s.db.Save(reservation).Error; err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Checked in reservation %d at table %s", id, table.TableNumber)
	return reservation, nil
}

// CheckInGuest marks one group member as arrived. The first guest of the
// group to scan also triggers the regular reservation check-in.
func (s *ReservationService) CheckInGuest(reservationID, guestID uint) (*models.Reservation, error) {
	reservation, err := s.GetByID(reservationID)
	if err != nil {
		return nil, err
	}

	if guestID > 0 {
		if int(guestID) > len(reservation.GroupMembers) {
			return nil, &utils.NotFoundError{Resource: "group member", ID: guestID}
		}
		member := &reservation.GroupMembers[guestID-1]
		if !member.CheckedIn {
			member.CheckedIn = true
			if err := s.db.Save(member).Error; err != nil {
				return nil, err
			}
			utils.InfoLogger.Printf("Guest %d of reservation %d checked in", guestID, reservationID)
		}
	}

	if reservation.Status == models.ReservationCheckedIn {
		return reservation, nil
	}
	return s.CheckIn(reservationID)
}

// Complete finishes a visit and sends the table to CLEANING. Allowed from
// CHECKED_IN or TIMEOUT_WARNING.
func (s *ReservationService) Complete(id uint) (*models.Reservation, error) {
	reservation, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if reservation.Status != models.ReservationCheckedIn && reservation.Status != models.ReservationTimeoutWarning {
		return nil, &utils.InvalidStateError{
			Resource: "reservation",
			Current:  reservation.Status,
			Required: "CHECKED_IN or TIMEOUT_WARNING",
		}
	}

	reservation.Status = models.ReservationCompleted

	if reservation.TableID != nil {
		if _, err := s.tables.MarkCleaning(*reservation.TableID); err != nil {
			utils.ErrorLogger.Printf("Could not mark table %d for cleaning after reservation %d: %v",
				*reservation.TableID, id, err)
		}
	}

	if err := s.db.Save(reservation).Error; err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Completed reservation %d", id)
	return reservation, nil
}

// CreateWalkIn seats guests without a prior booking: a synthetic reservation
// that starts CHECKED_IN on the spot.
func (s *ReservationService) CreateWalkIn(tableID uint, numberOfGuests int) (*models.Reservation, error) {
	if numberOfGuests < 1 {
		return nil, &utils.ValidationError{Field: "number_of_guests", Reason: "must be at least 1"}
	}

	table, err := s.tables.GetByID(tableID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	walkIn := &models.Reservation{
		CustomerID:          models.WalkInCustomerID,
		RestaurantID:        table.RestaurantID,
		TableID:             &tableID,
		ReservationDateTime: now,
		DurationMinutes:     models.DefaultDurationMinutes,
		NumberOfGuests:      numberOfGuests,
		Status:              models.ReservationCheckedIn,
		CheckedInAt:         &now,
	}
	if err := s.db.Create(walkIn).Error; err != nil {
		return nil, err
	}

	if _, err := s.tables.Occupy(tableID, walkIn.ID); err != nil {
		// Table was taken between the read and the bind; undo the synthetic
		// reservation and surface the conflict.
		s.db.Delete(walkIn)
		return nil, err
	}

	utils.InfoLogger.Printf("Created walk-in reservation %d for table %s (%d guests)",
		walkIn.ID, table.TableNumber, numberOfGuests)
	return walkIn, nil
}

// MarkNoShow flags a confirmed reservation whose guests never arrived and
// charges the absence fee. The table goes straight back to AVAILABLE; nobody
// sat there, so there is nothing to clean.
func (s *ReservationService) MarkNoShow(id uint) (*models.Reservation, error) {
	reservation, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if reservation.Status != models.ReservationConfirmed {
		return nil, &utils.InvalidStateError{
			Resource: "reservation",
			Current:  reservation.Status,
			Required: models.ReservationConfirmed,
		}
	}

	reservation.Status = models.ReservationNoShow
	reservation.CancellationFee = float64(reservation.NumberOfGuests) * AbsenceFeePerGuest

	if reservation.TableID != nil {
		if _, err := s.tables.Free(*reservation.TableID); err != nil {
			utils.ErrorLogger.Printf("Could not free table %d for no-show reservation %d: %v",
				*reservation.TableID, id, err)
		}
	}

	if err := s.db.Save(reservation).Error; err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Marked reservation %d as NO_SHOW, absence fee %.2f",
		id, reservation.CancellationFee)
	return reservation, nil
}

// MarkTimeoutWarning raises the soft over-stay flag. Table occupancy does not
// change; the party is still seated.
func (s *ReservationService) MarkTimeoutWarning(id uint) (*models.Reservation, error) {
	reservation, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if reservation.Status != models.ReservationCheckedIn {
		return nil, &utils.InvalidStateError{
			Resource: "reservation",
			Current:  reservation.Status,
			Required: models.ReservationCheckedIn,
		}
	}

	reservation.Status = models.ReservationTimeoutWarning
	if err := s.db.Save(reservation).Error; err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Marked reservation %d with TIMEOUT_WARNING", id)
	return reservation, nil
}

// FindPotentialNoShows lists CONFIRMED reservations whose start time plus the
// grace window has passed without a check-in.
func (s *ReservationService) FindPotentialNoShows(now time.Time) ([]models.Reservation, error) {
	var reservations []models.Reservation
	cutoff := now.Add(-NoShowGrace)
	err := s.db.Where("status = ? AND reservation_date_time < ? AND checked_in_at IS NULL",
		models.ReservationConfirmed, cutoff).Find(&reservations).Error
	return reservations, err
}

// FindTimeoutCandidates lists CHECKED_IN reservations seated longer than the
// expected visit duration.
func (s *ReservationService) FindTimeoutCandidates(now time.Time) ([]models.Reservation, error) {
	var reservations []models.Reservation
	cutoff := now.Add(-time.Duration(models.DefaultDurationMinutes) * time.Minute)
	err := s.db.Where("status = ? AND checked_in_at < ?",
		models.ReservationCheckedIn, cutoff).Find(&reservations).Error
	return reservations, err
}

// AssignTable is the manual override for reservations that found no table at
// creation. Promotes PENDING to CONFIRMED.
func (s *ReservationService) AssignTable(reservationID, tableID uint) (*models.Reservation, error) {
	reservation, err := s.GetByID(reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.IsTerminal() {
		return nil, &utils.InvalidStateError{Resource: "reservation", Current: reservation.Status}
	}

	if _, err := s.tables.Reserve(tableID, reservationID); err != nil {
		return nil, err
	}

	reservation.TableID = &tableID
	if reservation.Status == models.ReservationPending {
		reservation.Status = models.ReservationConfirmed
	}
	if err := s.db.Save(reservation).Error; err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Assigned table %d to reservation %d", tableID, reservationID)
	return reservation, nil
}

// Delete removes a reservation and its group members, freeing the table if
// one is still bound. Administrative operation.
func (s *ReservationService) Delete(id uint) error {
	reservation, err := s.GetByID(id)
	if err != nil {
		return err
	}

	if reservation.TableID != nil {
		if _, err := s.tables.Free(*reservation.TableID); err != nil {
			utils.ErrorLogger.Printf("Could not free table %d while deleting reservation %d: %v",
				*reservation.TableID, id, err)
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("reservation_id = ?", id).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Reservation{}, id).Error
	})
}
