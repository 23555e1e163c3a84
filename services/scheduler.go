package services

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/tischplan/reservation-app/models"
	"github.com/tischplan/reservation-app/utils"
)

// SweepInterval is how often the no-show and timeout sweeps run.
const SweepInterval = time.Minute

// ReservationSweeper advances time-driven reservation transitions without
// anyone clicking: confirmed guests who never arrived become NO_SHOW, parties
// seated past the expected duration get a TIMEOUT_WARNING. One bad item never
// stops the rest of the batch.
type ReservationSweeper struct {
	reservations *ReservationService
	scheduler    gocron.Scheduler
}

func NewReservationSweeper(reservations *ReservationService) (*ReservationSweeper, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	sweeper := &ReservationSweeper{
		reservations: reservations,
		scheduler:    scheduler,
	}

	if _, err := scheduler.NewJob(
		gocron.DurationJob(SweepInterval),
		gocron.NewTask(sweeper.SweepNoShows),
	); err != nil {
		return nil, err
	}
	if _, err := scheduler.NewJob(
		gocron.DurationJob(SweepInterval),
		gocron.NewTask(sweeper.SweepTimeouts),
	); err != nil {
		return nil, err
	}

	return sweeper, nil
}

func (sw *ReservationSweeper) Start() {
	sw.scheduler.Start()
	utils.InfoLogger.Printf("Reservation sweeper started (interval %s)", SweepInterval)
}

func (sw *ReservationSweeper) Stop() {
	if err := sw.scheduler.Shutdown(); err != nil {
		utils.ErrorLogger.Printf("Error shutting down sweeper: %v", err)
	}
}

// SweepNoShows marks every confirmed reservation past its grace window as
// NO_SHOW. A reservation raced into another state between the listing and the
// mutation is logged and skipped, not retried.
func (sw *ReservationSweeper) SweepNoShows() {
	candidates, err := sw.reservations.FindPotentialNoShows(time.Now())
	if err != nil {
		utils.ErrorLogger.Printf("No-show sweep failed to list candidates: %v", err)
		return
	}
	if len(candidates) == 0 {
		return
	}

	utils.InfoLogger.Printf("Found %d potential no-shows", len(candidates))
	for _, r := range candidates {
		if _, err := sw.reservations.MarkNoShow(r.ID); err != nil {
			utils.ErrorLogger.Printf("Skipping no-show for reservation %d: %v", r.ID, err)
			continue
		}
	}
}

// SweepTimeouts raises the over-stay warning for parties seated longer than
// the expected visit duration.
func (sw *ReservationSweeper) SweepTimeouts() {
	candidates, err := sw.reservations.FindTimeoutCandidates(time.Now())
	if err != nil {
		utils.ErrorLogger.Printf("Timeout sweep failed to list candidates: %v", err)
		return
	}
	if len(candidates) == 0 {
		return
	}

	utils.InfoLogger.Printf("Found %d timeout candidates", len(candidates))
	for _, r := range candidates {
		if r.Status != models.ReservationCheckedIn {
			continue
		}
		if _, err := sw.reservations.MarkTimeoutWarning(r.ID); err != nil {
			utils.ErrorLogger.Printf("Skipping timeout warning for reservation %d: %v", r.ID, err)
			continue
		}
	}
}
