package services

import (
	"github.com/tischplan/reservation-app/models"
	"github.com/tischplan/reservation-app/utils"
	"gorm.io/gorm"
)

// TableService owns table records and their occupancy status. All status
// mutations go through here; Reserve and Occupy are compare-and-swap on
// (status, current_reservation_id) so two concurrent writers for the same
// table can never both win.
type TableService struct {
	db *gorm.DB
}

func NewTableService(db *gorm.DB) *TableService {
	return &TableService{db: db}
}

func (s *TableService) Create(table *models.Table) error {
	if table.Status == "" {
		table.Status = models.TableAvailable
	}
	return s.db.Create(table).Error
}

func (s *TableService) GetByID(id uint) (*models.Table, error) {
	var table models.Table
	if err := s.db.First(&table, id).Error; err != nil {
		return nil, &utils.NotFoundError{Resource: "table", ID: id}
	}
	return &table, nil
}

func (s *TableService) ListAll() ([]models.Table, error) {
	var tables []models.Table
	err := s.db.Order("restaurant_id, table_number").Find(&tables).Error
	return tables, err
}

func (s *TableService) ListByRestaurant(restaurantID uint) ([]models.Table, error) {
	var tables []models.Table
	err := s.db.Where("restaurant_id = ?", restaurantID).
		Order("table_number").Find(&tables).Error
	return tables, err
}

// FindAvailable returns AVAILABLE tables seating at least minCapacity guests,
// smallest table first.
func (s *TableService) FindAvailable(restaurantID uint, minCapacity int) ([]models.Table, error) {
	var tables []models.Table
	err := s.db.Where("restaurant_id = ? AND status = ? AND capacity >= ?",
		restaurantID, models.TableAvailable, minCapacity).
		Order("capacity ASC").Find(&tables).Error
	return tables, err
}

// Reserve binds the table to a reservation and sets status RESERVED.
// Re-assigning the same reservation is idempotent; a table bound to a
// different reservation yields a ConflictError naming the holder.
func (s *TableService) Reserve(tableID, reservationID uint) (*models.Table, error) {
	return s.bind(tableID, reservationID, models.TableReserved)
}

// Occupy binds the table to a reservation and sets status OCCUPIED.
func (s *TableService) Occupy(tableID, reservationID uint) (*models.Table, error) {
	return s.bind(tableID, reservationID, models.TableOccupied)
}

// bind performs the guarded single-statement update. The WHERE clause is the
// compare half of the compare-and-swap: it only matches when the table is
// unbound or already bound to the same reservation.
func (s *TableService) bind(tableID, reservationID uint, status string) (*models.Table, error) {
	result := s.db.Model(&models.Table{}).
		Where("id = ? AND (current_reservation_id IS NULL OR current_reservation_id = ?)",
			tableID, reservationID).
		Updates(map[string]interface{}{
			"status":                 status,
			"current_reservation_id": reservationID,
		})
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		// Lost the swap or the table does not exist; re-read to tell apart.
		table, err := s.GetByID(tableID)
		if err != nil {
			return nil, err
		}
		holder := uint(0)
		if table.CurrentReservationID != nil {
			holder = *table.CurrentReservationID
		}
		return nil, &utils.ConflictError{TableNumber: table.TableNumber, HolderID: holder}
	}

	return s.GetByID(tableID)
}

// Free releases the table to AVAILABLE and clears the reservation binding.
func (s *TableService) Free(tableID uint) (*models.Table, error) {
	return s.release(tableID, models.TableAvailable)
}

// MarkCleaning puts the table into CLEANING and clears the binding.
func (s *TableService) MarkCleaning(tableID uint) (*models.Table, error) {
	return s.release(tableID, models.TableCleaning)
}

func (s *TableService) release(tableID uint, status string) (*models.Table, error) {
	result := s.db.Model(&models.Table{}).
		Where("id = ?", tableID).
		Updates(map[string]interface{}{
			"status":                 status,
			"current_reservation_id": nil,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, &utils.NotFoundError{Resource: "table", ID: tableID}
	}
	return s.GetByID(tableID)
}

func (s *TableService) Update(table *models.Table) error {
	if table.ID == 0 {
		return &utils.ValidationError{Field: "table id", Reason: "must not be empty for update"}
	}
	return s.db.Save(table).Error
}

func (s *TableService) Delete(id uint) error {
	result := s.db.Delete(&models.Table{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &utils.NotFoundError{Resource: "table", ID: id}
	}
	return nil
}
