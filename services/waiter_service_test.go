package services

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tischplan/reservation-app/models"
	"github.com/tischplan/reservation-app/utils"
)

// fakeOrderClient stands in for the external Order service.
type fakeOrderClient struct {
	orders  []Order
	err     error
	served  []uint
	created []CreateOrderRequest
}

func (f *fakeOrderClient) ActiveOrders(ctx context.Context) ([]Order, error) {
	return f.orders, f.err
}

func (f *fakeOrderClient) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, req)
	return &Order{ID: uint(len(f.created)), Status: req.Status, TotalPrice: req.TotalPrice, Items: req.Items}, nil
}

func (f *fakeOrderClient) MarkServed(ctx context.Context, orderID uint) error {
	if f.err != nil {
		return f.err
	}
	f.served = append(f.served, orderID)
	return nil
}

func newWaiterService(t *testing.T, orders OrderClient) (*WaiterService, *ReservationService, *TableService) {
	t.Helper()
	db := setupReservationTestDB(t)
	tables := NewTableService(db)
	reservations := NewReservationService(db, tables, NewTokenService("test-secret"))
	return NewWaiterService(tables, reservations, orders), reservations, tables
}

func TestWaiterService_StateTranslatesStatuses(t *testing.T) {
	fake := &fakeOrderClient{}
	svc, reservations, tables := newWaiterService(t, fake)
	db := tables.db

	empty := seedTable(t, db, 1, "1", 2)
	reservedTable := seedTable(t, db, 1, "2", 4)
	occupiedTable := seedTable(t, db, 1, "3", 4)
	clearing := seedTable(t, db, 1, "4", 4)
	seedTable(t, db, 2, "other", 4)

	seated, err := reservations.CreateWalkIn(occupiedTable.ID, 2)
	require.NoError(t, err)

	_, err = tables.MarkCleaning(clearing.ID)
	require.NoError(t, err)

	// With the other four-seaters taken, the new party lands on table "2".
	reserved, err := reservations.Create(CreateReservationInput{
		CustomerID: 1, RestaurantID: 1,
		ReservationDateTime: time.Now().Add(time.Hour), NumberOfGuests: 4,
	})
	require.NoError(t, err)
	require.NotNil(t, reserved.TableID)
	require.Equal(t, reservedTable.ID, *reserved.TableID)

	fake.orders = []Order{
		{ID: 1, TableNumber: strconv.Itoa(int(occupiedTable.ID)), Status: OrderInKitchen, TotalPrice: 20},
		{ID: 2, ReservationID: seated.ID, Status: OrderReady, TotalPrice: 35},
		{ID: 3, TableNumber: strconv.Itoa(int(occupiedTable.ID)), Status: OrderServed, TotalPrice: 12},
	}

	state, err := svc.State(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, state.Tables, 4, "tables of other restaurants stay out")

	statusByID := map[uint]string{}
	for _, wt := range state.Tables {
		statusByID[wt.ID] = wt.Status
	}
	assert.Equal(t, ViewTableEmpty, statusByID[empty.ID])
	assert.Equal(t, ViewTableReserved, statusByID[reservedTable.ID])
	assert.Equal(t, ViewTableOccupied, statusByID[occupiedTable.ID])
	assert.Equal(t, ViewTableClearing, statusByID[clearing.ID])

	require.Len(t, state.Orders, 3)
	assert.Equal(t, ViewOrderInKitchen, state.Orders[0].Status)
	assert.Equal(t, ViewOrderReady, state.Orders[1].Status)
	assert.Equal(t, ViewOrderServed, state.Orders[2].Status)

	// Order 2 carried no table number; it resolves through its reservation.
	assert.Equal(t, occupiedTable.ID, state.Orders[1].TableID)
}

func TestWaiterService_StateBackfillsReservationBinding(t *testing.T) {
	fake := &fakeOrderClient{}
	svc, reservations, tables := newWaiterService(t, fake)
	db := tables.db

	table := seedTable(t, db, 1, "7", 4)

	// A reservation points at the table but the registry never bound it, as
	// happens for rows imported from the old system.
	reservation, err := reservations.Create(CreateReservationInput{
		CustomerID: 1, RestaurantID: 1,
		ReservationDateTime: time.Now().Add(time.Hour), NumberOfGuests: 6,
	})
	require.NoError(t, err)
	require.Equal(t, models.ReservationPending, reservation.Status)

	tableID := table.ID
	reservation.TableID = &tableID
	require.NoError(t, db.Save(reservation).Error)

	state, err := svc.State(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, state.Tables, 1)
	require.NotNil(t, state.Tables[0].CurrentReservationID)
	assert.Equal(t, reservation.ID, *state.Tables[0].CurrentReservationID)
}

func TestWaiterService_StateSurvivesDeadOrderService(t *testing.T) {
	fake := &fakeOrderClient{err: errors.New("connection refused")}
	svc, _, tables := newWaiterService(t, fake)
	seedTable(t, tables.db, 1, "1", 4)

	state, err := svc.State(context.Background(), 1)
	require.NoError(t, err, "a dead order service must not take down the view")
	assert.Len(t, state.Tables, 1)
	assert.Empty(t, state.Orders)
}

func TestWaiterService_OrderPassThroughs(t *testing.T) {
	fake := &fakeOrderClient{}
	svc, _, _ := newWaiterService(t, fake)

	order, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		TableID:    3,
		TotalPrice: 42,
		Items:      []OrderItem{{Name: "Schnitzel", Quantity: 2, UnitPrice: 21}},
	})
	require.NoError(t, err)
	assert.Equal(t, OrderPending, order.Status, "missing status defaults to PENDING")

	require.NoError(t, svc.MarkOrderServed(context.Background(), 9))
	assert.Equal(t, []uint{9}, fake.served)

	fake.err = errors.New("boom")
	var upstream *utils.UpstreamError
	err = svc.MarkOrderServed(context.Background(), 9)
	require.True(t, errors.As(err, &upstream))
	_, err = svc.CreateOrder(context.Background(), CreateOrderRequest{TableID: 3})
	assert.True(t, errors.As(err, &upstream))
}

func TestWaiterService_ClearTable(t *testing.T) {
	fake := &fakeOrderClient{}
	svc, reservations, tables := newWaiterService(t, fake)
	table := seedTable(t, tables.db, 1, "1", 4)

	// Nobody is seated yet.
	var invalidState *utils.InvalidStateError
	_, err := svc.ClearTable(table.ID)
	require.True(t, errors.As(err, &invalidState))

	_, err = reservations.CreateWalkIn(table.ID, 2)
	require.NoError(t, err)

	cleared, err := svc.ClearTable(table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableCleaning, cleared.Status)
}

func TestWaiterService_FinishTableDeniedWhileOrderReady(t *testing.T) {
	fake := &fakeOrderClient{}
	svc, reservations, tables := newWaiterService(t, fake)
	table := seedTable(t, tables.db, 1, "5", 4)

	seated, err := reservations.CreateWalkIn(table.ID, 2)
	require.NoError(t, err)

	fake.orders = []Order{
		{ID: 1, ReservationID: seated.ID, Status: OrderReady, TotalPrice: 30},
	}

	_, err = svc.FinishTable(context.Background(), table.ID)
	var conflict *utils.ConflictError
	require.True(t, errors.As(err, &conflict), "expected ConflictError, got %v", err)
	assert.Contains(t, conflict.Error(), "ready to serve")

	// Nothing moved.
	still, err := tables.GetByID(table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableOccupied, still.Status)
}

func TestWaiterService_FinishTableCompletesAndFrees(t *testing.T) {
	fake := &fakeOrderClient{}
	svc, reservations, tables := newWaiterService(t, fake)
	table := seedTable(t, tables.db, 1, "5", 4)

	seated, err := reservations.CreateWalkIn(table.ID, 2)
	require.NoError(t, err)

	fake.orders = []Order{
		{ID: 1, ReservationID: seated.ID, Status: OrderServed, TotalPrice: 30},
	}

	finished, err := svc.FinishTable(context.Background(), table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableAvailable, finished.Status)
	assert.Nil(t, finished.CurrentReservationID)

	done, err := reservations.GetByID(seated.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCompleted, done.Status)
}

func TestWaiterService_ViewStatusFallbacks(t *testing.T) {
	assert.Equal(t, ViewTableEmpty, viewTableStatus("SOMETHING_NEW"))
	assert.Equal(t, ViewOrderInKitchen, viewOrderStatus("SOMETHING_NEW"))
	assert.Equal(t, uint(0), resolveOrderTable(Order{TableNumber: "patio-3"}, nil),
		"non-numeric table numbers cannot be resolved")
}
