package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tischplan/reservation-app/models"
	"github.com/tischplan/reservation-app/utils"
)

// Presentation statuses for the front-of-house view.
const (
	ViewTableEmpty    = "empty"
	ViewTableReserved = "reserved"
	ViewTableOccupied = "occupied"
	ViewTableClearing = "needs clearing"

	ViewOrderInKitchen = "in kitchen"
	ViewOrderReady     = "ready to serve"
	ViewOrderServed    = "served"
)

// WaiterTable is a table as the floor staff sees it.
type WaiterTable struct {
	ID                   uint   `json:"id"`
	RestaurantID         uint   `json:"restaurant_id"`
	TableNumber          string `json:"table_number"`
	Capacity             int    `json:"capacity"`
	Status               string `json:"status"`
	CurrentReservationID *uint  `json:"current_reservation_id,omitempty"`
}

// WaiterOrder is a kitchen order resolved to its table.
type WaiterOrder struct {
	ID            uint        `json:"id"`
	TableID       uint        `json:"table_id"`
	ReservationID uint        `json:"reservation_id,omitempty"`
	Status        string      `json:"status"`
	TotalPrice    float64     `json:"total_price"`
	Items         []OrderItem `json:"items"`
}

// WaiterState is the composite front-of-house snapshot.
type WaiterState struct {
	Tables []WaiterTable `json:"tables"`
	Orders []WaiterOrder `json:"orders"`
}

// WaiterService merges table state, reservation state and kitchen order state
// into one view. Every query rebuilds the snapshot from live reads; the three
// reads are independent, so brief staleness between them is expected and
// tolerated.
type WaiterService struct {
	tables       *TableService
	reservations *ReservationService
	orders       OrderClient
}

func NewWaiterService(tables *TableService, reservations *ReservationService, orders OrderClient) *WaiterService {
	return &WaiterService{tables: tables, reservations: reservations, orders: orders}
}

// State builds the composite view for one restaurant.
func (s *WaiterService) State(ctx context.Context, restaurantID uint) (*WaiterState, error) {
	tables, err := s.tables.ListByRestaurant(restaurantID)
	if err != nil {
		return nil, err
	}

	reservations, err := s.reservations.ListByRestaurant(restaurantID)
	if err != nil {
		return nil, err
	}

	state := &WaiterState{
		Tables: make([]WaiterTable, 0, len(tables)),
		Orders: []WaiterOrder{},
	}

	for _, t := range tables {
		state.Tables = append(state.Tables, WaiterTable{
			ID:                   t.ID,
			RestaurantID:         t.RestaurantID,
			TableNumber:          t.TableNumber,
			Capacity:             t.Capacity,
			Status:               viewTableStatus(t.Status),
			CurrentReservationID: t.CurrentReservationID,
		})
	}

	// Backfill reservation ids the registry has not written yet: a table that
	// looks reserved but carries no binding gets the first live reservation
	// pointing at it.
	reservationToTable := make(map[uint]uint, len(reservations))
	for _, r := range reservations {
		if r.TableID == nil {
			continue
		}
		reservationToTable[r.ID] = *r.TableID

		switch r.Status {
		case models.ReservationPending, models.ReservationConfirmed, models.ReservationCheckedIn:
			for i := range state.Tables {
				if state.Tables[i].ID == *r.TableID && state.Tables[i].CurrentReservationID == nil {
					id := r.ID
					state.Tables[i].CurrentReservationID = &id
					break
				}
			}
		}
	}

	// A dead Order service degrades to an empty board instead of taking the
	// whole view down with it.
	orders, err := s.orders.ActiveOrders(ctx)
	if err != nil {
		utils.ErrorLogger.Printf("Could not fetch orders for waiter state: %v", err)
		orders = nil
	}

	for _, o := range orders {
		state.Orders = append(state.Orders, WaiterOrder{
			ID:            o.ID,
			TableID:       resolveOrderTable(o, reservationToTable),
			ReservationID: o.ReservationID,
			Status:        viewOrderStatus(o.Status),
			TotalPrice:    o.TotalPrice,
			Items:         o.Items,
		})
	}

	return state, nil
}

// MarkOrderServed is a pure pass-through to the Order service.
func (s *WaiterService) MarkOrderServed(ctx context.Context, orderID uint) error {
	if err := s.orders.MarkServed(ctx, orderID); err != nil {
		return &utils.UpstreamError{Service: "order", Err: err}
	}
	utils.InfoLogger.Printf("Order %d marked as served", orderID)
	return nil
}

// CreateOrder forwards a new kitchen order to the Order service.
func (s *WaiterService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if req.Status == "" {
		req.Status = OrderPending
	}
	order, err := s.orders.CreateOrder(ctx, req)
	if err != nil {
		return nil, &utils.UpstreamError{Service: "order", Err: err}
	}
	return order, nil
}

// ClearTable sends an occupied table to CLEANING after the guests left.
func (s *WaiterService) ClearTable(tableID uint) (*models.Table, error) {
	table, err := s.tables.GetByID(tableID)
	if err != nil {
		return nil, err
	}
	if table.Status != models.TableOccupied {
		return nil, &utils.InvalidStateError{
			Resource: "table",
			Current:  table.Status,
			Required: models.TableOccupied,
		}
	}
	return s.tables.MarkCleaning(tableID)
}

// FinishTable closes out a table: denied while any order for it is still
// ready to serve, otherwise the active reservation is completed and the table
// released straight to AVAILABLE. The cleaning stop is skipped on purpose in
// this flow; the clear step already happened or nobody ever sat down.
func (s *WaiterService) FinishTable(ctx context.Context, tableID uint) (*models.Table, error) {
	table, err := s.tables.GetByID(tableID)
	if err != nil {
		return nil, err
	}

	reservations, err := s.reservations.ListActive()
	if err != nil {
		return nil, err
	}
	reservationToTable := make(map[uint]uint, len(reservations))
	for _, r := range reservations {
		if r.TableID != nil {
			reservationToTable[r.ID] = *r.TableID
		}
	}

	orders, err := s.orders.ActiveOrders(ctx)
	if err != nil {
		utils.ErrorLogger.Printf("Could not fetch orders while finishing table %d: %v", tableID, err)
		orders = nil
	}
	for _, o := range orders {
		if o.Status == OrderReady && resolveOrderTable(o, reservationToTable) == tableID {
			return nil, &utils.ConflictError{Detail: fmt.Sprintf(
				"table %s still has order %d ready to serve", table.TableNumber, o.ID)}
		}
	}

	for _, r := range reservations {
		if r.TableID != nil && *r.TableID == tableID {
			if _, err := s.reservations.Complete(r.ID); err != nil {
				utils.ErrorLogger.Printf("Could not complete reservation %d while finishing table %d: %v",
					r.ID, tableID, err)
			}
			break
		}
	}

	return s.tables.Free(tableID)
}

func viewTableStatus(status string) string {
	switch status {
	case models.TableAvailable:
		return ViewTableEmpty
	case models.TableReserved:
		return ViewTableReserved
	case models.TableOccupied:
		return ViewTableOccupied
	case models.TableCleaning:
		return ViewTableClearing
	}
	return ViewTableEmpty
}

func viewOrderStatus(status string) string {
	switch status {
	case OrderPending, OrderInKitchen:
		return ViewOrderInKitchen
	case OrderReady:
		return ViewOrderReady
	case OrderServed:
		return ViewOrderServed
	}
	return ViewOrderInKitchen
}

// resolveOrderTable finds the table an order belongs to, either directly or
// through its reservation when the order was preordered before a table was
// known.
func resolveOrderTable(o Order, reservationToTable map[uint]uint) uint {
	if o.TableNumber != "" {
		if id, err := strconv.ParseUint(o.TableNumber, 10, 32); err == nil && id > 0 {
			return uint(id)
		}
	}
	if o.ReservationID != 0 {
		return reservationToTable[o.ReservationID]
	}
	return 0
}
