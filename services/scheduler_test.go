package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tischplan/reservation-app/models"
)

func TestReservationSweeper_SweepNoShows(t *testing.T) {
	reservations, tables, db := newReservationService(t)
	table := seedTable(t, db, 1, "T1", 4)
	seedTable(t, db, 1, "T2", 6)

	overdue, err := reservations.Create(CreateReservationInput{
		CustomerID: 1, RestaurantID: 1,
		ReservationDateTime: time.Now().Add(-time.Hour), NumberOfGuests: 2,
	})
	require.NoError(t, err)
	require.Equal(t, models.ReservationConfirmed, overdue.Status)

	fresh, err := reservations.Create(CreateReservationInput{
		CustomerID: 2, RestaurantID: 1,
		ReservationDateTime: time.Now().Add(-5 * time.Minute), NumberOfGuests: 2,
	})
	require.NoError(t, err)

	sweeper, err := NewReservationSweeper(reservations)
	require.NoError(t, err)
	sweeper.SweepNoShows()

	swept, err := reservations.GetByID(overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationNoShow, swept.Status)

	kept, err := reservations.GetByID(fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationConfirmed, kept.Status, "still inside the grace window")

	freed, err := tables.GetByID(table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableAvailable, freed.Status)
}

func TestReservationSweeper_SweepTimeouts(t *testing.T) {
	reservations, _, db := newReservationService(t)
	seedTable(t, db, 1, "T1", 4)

	overstay, err := reservations.Create(CreateReservationInput{
		CustomerID: 1, RestaurantID: 1,
		ReservationDateTime: time.Now().Add(-time.Minute), NumberOfGuests: 2,
	})
	require.NoError(t, err)
	_, err = reservations.CheckIn(overstay.ID)
	require.NoError(t, err)

	// Backdate the seating beyond the expected visit duration.
	seatedAt := time.Now().Add(-time.Duration(models.DefaultDurationMinutes+10) * time.Minute)
	require.NoError(t, db.Model(&models.Reservation{}).
		Where("id = ?", overstay.ID).Update("checked_in_at", seatedAt).Error)

	sweeper, err := NewReservationSweeper(reservations)
	require.NoError(t, err)
	sweeper.SweepTimeouts()

	warned, err := reservations.GetByID(overstay.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationTimeoutWarning, warned.Status)

	// Running the sweep again is a no-op; the warning is raised once.
	sweeper.SweepTimeouts()
	again, err := reservations.GetByID(overstay.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationTimeoutWarning, again.Status)
}
