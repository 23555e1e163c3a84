package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tischplan/reservation-app/services"
	"github.com/tischplan/reservation-app/utils"
)

// WaiterController serves the front-of-house composite view and the staff
// actions on it.
type WaiterController struct {
	waiter *services.WaiterService
}

func NewWaiterController(waiter *services.WaiterService) *WaiterController {
	return &WaiterController{waiter: waiter}
}

// GetState -> live tables + orders snapshot for one restaurant
func (wc *WaiterController) GetState(c *gin.Context) {
	restaurantID, err := strconv.ParseUint(c.DefaultQuery("restaurant_id", "1"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, &utils.ValidationError{
			Field:  "restaurant_id",
			Reason: "must be a numeric id",
		})
		return
	}

	state, err := wc.waiter.State(c.Request.Context(), uint(restaurantID))
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Waiter state", state)
}

// CreateOrder -> place a kitchen order via the Order service
func (wc *WaiterController) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := wc.waiter.CreateOrder(c.Request.Context(), req)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// MarkOrderServed -> pass-through to the Order service
func (wc *WaiterController) MarkOrderServed(c *gin.Context) {
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}
	if err := wc.waiter.MarkOrderServed(c.Request.Context(), id); err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order marked as served", gin.H{"id": id})
}

// ClearTable -> guests left, table needs cleaning
func (wc *WaiterController) ClearTable(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	table, err := wc.waiter.ClearTable(id)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table marked for cleaning", table)
}

// FinishTable -> close out the table; 409 while orders are ready to serve
func (wc *WaiterController) FinishTable(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	table, err := wc.waiter.FinishTable(c.Request.Context(), id)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table finished", table)
}
