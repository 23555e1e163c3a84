package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tischplan/reservation-app/models"
	"github.com/tischplan/reservation-app/services"
	"github.com/tischplan/reservation-app/utils"
)

type TableController struct {
	tables *services.TableService
}

func NewTableController(tables *services.TableService) *TableController {
	return &TableController{tables: tables}
}

// CreateTable -> add a new table for a restaurant
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		RestaurantID uint   `json:"restaurant_id" binding:"required"`
		TableNumber  string `json:"table_number" binding:"required"`
		Capacity     int    `json:"capacity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table := models.Table{
		RestaurantID: req.RestaurantID,
		TableNumber:  req.TableNumber,
		Capacity:     req.Capacity,
		Status:       models.TableAvailable,
	}
	if err := tc.tables.Create(&table); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New table created: %s (capacity=%d)", table.TableNumber, table.Capacity)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> list every table
func (tc *TableController) GetAllTables(c *gin.Context) {
	tables, err := tc.tables.ListAll()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// GetTableByID -> detail of one table
func (tc *TableController) GetTableByID(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	table, err := tc.tables.GetByID(id)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// GetTablesByRestaurant -> all tables of one restaurant
func (tc *TableController) GetTablesByRestaurant(c *gin.Context) {
	restaurantID, ok := paramID(c, "restaurant_id")
	if !ok {
		return
	}
	tables, err := tc.tables.ListByRestaurant(restaurantID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tables for restaurant", tables)
}

// FindAvailableTables -> free tables with enough seats, smallest first
func (tc *TableController) FindAvailableTables(c *gin.Context) {
	restaurantID, ok := paramID(c, "restaurant_id")
	if !ok {
		return
	}
	minCapacity, _ := strconv.Atoi(c.DefaultQuery("min_capacity", "1"))

	tables, err := tc.tables.FindAvailable(restaurantID, minCapacity)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Available tables", tables)
}

// UpdateTableStatus -> lifecycle action on a table. Only the unbound states
// can be set directly; RESERVED and OCCUPIED always come from reservation
// operations so the binding invariant cannot be broken by hand.
func (tc *TableController) UpdateTableStatus(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var table *models.Table
	var err error
	switch body.Status {
	case models.TableAvailable:
		table, err = tc.tables.Free(id)
	case models.TableCleaning:
		table, err = tc.tables.MarkCleaning(id)
	default:
		utils.RespondError(c, http.StatusBadRequest, &utils.ValidationError{
			Field:  "status",
			Reason: "only AVAILABLE or CLEANING can be set directly",
		})
		return
	}
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}

	utils.InfoLogger.Printf("Table %d status changed to %s", table.ID, table.Status)
	utils.RespondJSON(c, http.StatusOK, "Table status updated", table)
}

// DeleteTable -> administrative removal
func (tc *TableController) DeleteTable(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	if err := tc.tables.Delete(id); err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.InfoLogger.Printf("Table %d deleted", id)
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"id": id})
}

// paramID parses a numeric path parameter, responding 400 on garbage.
func paramID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, &utils.ValidationError{
			Field:  name,
			Reason: "must be a numeric id",
		})
		return 0, false
	}
	return uint(id), true
}
