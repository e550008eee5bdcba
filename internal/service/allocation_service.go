package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vehicle_parking/internal/domain"
	"vehicle_parking/internal/logger"
	"vehicle_parking/internal/metrics"
	"vehicle_parking/internal/repository"

	"go.uber.org/zap"
	"gopkg.in/guregu/null.v4"
)

var ErrNoAvailableSpot = errors.New("no available spot in this lot")
var ErrActiveReservationExists = errors.New("user already holds an active reservation")

// SpotEventBroadcaster receives spot status changes for live subscribers.
type SpotEventBroadcaster interface {
	BroadcastSpotStatus(event domain.SpotStatusEvent)
}

// AllocationService owns the reserve/release lifecycle of a spot-occupancy
// record. Each operation runs in a single transaction with row locks on the
// chosen spot (reserve) and the open reservation (release), so concurrent
// callers can never double-book a spot or double-release a reservation.
type AllocationService struct {
	lotRepo     repository.ParkingLotRepository
	spotRepo    repository.ParkingSpotRepository
	userRepo    repository.UserRepository
	resRepo     repository.ReservationRepository
	tx          repository.TxManager
	broadcaster SpotEventBroadcaster
	now         func() time.Time
}

func NewAllocationService(
	lotRepo repository.ParkingLotRepository,
	spotRepo repository.ParkingSpotRepository,
	userRepo repository.UserRepository,
	resRepo repository.ReservationRepository,
	tx repository.TxManager,
	broadcaster SpotEventBroadcaster,
) *AllocationService {
	return &AllocationService{
		lotRepo:     lotRepo,
		spotRepo:    spotRepo,
		userRepo:    userRepo,
		resRepo:     resRepo,
		tx:          tx,
		broadcaster: broadcaster,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Reserve picks the lowest-numbered available spot in the lot, marks it
// occupied and opens a reservation for the user. The parking cost is fixed
// to the lot's flat price at reservation time.
func (s *AllocationService) Reserve(ctx context.Context, lotID, userID int) (*domain.Reservation, error) {
	var reservation *domain.Reservation
	var spot *domain.ParkingSpot

	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		if _, err := s.userRepo.FindByID(txCtx, userID); err != nil {
			return fmt.Errorf("looking up user %d: %w", userID, err)
		}
		lot, err := s.lotRepo.FindByID(txCtx, lotID)
		if err != nil {
			return fmt.Errorf("looking up lot %d: %w", lotID, err)
		}

		_, err = s.resRepo.FindActiveByUserID(txCtx, userID, false)
		if err == nil {
			return ErrActiveReservationExists
		}
		if !errors.Is(err, repository.ErrNoActiveReservation) {
			return fmt.Errorf("checking active reservation: %w", err)
		}

		spot, err = s.spotRepo.FindFirstAvailableByLotID(txCtx, lotID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNoAvailableSpot
			}
			return fmt.Errorf("selecting spot: %w", err)
		}

		if err := s.spotRepo.UpdateStatus(txCtx, spot.ID, domain.SpotOccupied); err != nil {
			return fmt.Errorf("occupying spot %d: %w", spot.ID, err)
		}

		reservation = &domain.Reservation{
			UserID:           userID,
			SpotID:           spot.ID,
			ParkingTimestamp: s.now(),
			ParkingCost:      null.FloatFrom(lot.Price),
		}
		reservation, err = s.resRepo.Create(txCtx, reservation)
		if err != nil {
			return fmt.Errorf("opening reservation: %w", err)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNoAvailableSpot):
			metrics.ReservationsRejected.WithLabelValues("no_available_spot").Inc()
		case errors.Is(err, ErrActiveReservationExists):
			metrics.ReservationsRejected.WithLabelValues("active_reservation").Inc()
		}
		return nil, err
	}

	metrics.ReservationsCreated.Inc()
	logger.L().Info("spot reserved",
		zap.Int("lot_id", lotID), zap.Int("spot_id", spot.ID),
		zap.Int("spot_number", spot.SpotNumber), zap.Int("user_id", userID))
	s.broadcast(lotID, spot.ID, spot.SpotNumber, domain.SpotOccupied)

	reservation.Spot = spot
	reservation.Spot.Status = domain.SpotOccupied
	return reservation, nil
}

// Release closes the user's open reservation and frees its spot. The cost
// stays at the flat price fixed when the reservation opened.
func (s *AllocationService) Release(ctx context.Context, userID int) (*domain.Reservation, error) {
	var reservation *domain.Reservation
	var spot *domain.ParkingSpot

	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		active, err := s.resRepo.FindActiveByUserID(txCtx, userID, true)
		if err != nil {
			return err
		}

		reservation, err = s.resRepo.Close(txCtx, active.ID, s.now())
		if err != nil {
			return fmt.Errorf("closing reservation %d: %w", active.ID, err)
		}

		spot, err = s.spotRepo.FindByID(txCtx, reservation.SpotID)
		if err != nil {
			return fmt.Errorf("looking up spot %d: %w", reservation.SpotID, err)
		}
		if err := s.spotRepo.UpdateStatus(txCtx, spot.ID, domain.SpotAvailable); err != nil {
			return fmt.Errorf("freeing spot %d: %w", spot.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ReservationsReleased.Inc()
	logger.L().Info("spot released",
		zap.Int("lot_id", spot.LotID), zap.Int("spot_id", spot.ID), zap.Int("user_id", userID))
	s.broadcast(spot.LotID, spot.ID, spot.SpotNumber, domain.SpotAvailable)

	reservation.Spot = spot
	reservation.Spot.Status = domain.SpotAvailable
	return reservation, nil
}

// Current returns the user's open reservation with its spot and lot attached.
func (s *AllocationService) Current(ctx context.Context, userID int) (*domain.Reservation, error) {
	reservation, err := s.resRepo.FindActiveByUserID(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	spot, err := s.spotRepo.FindByID(ctx, reservation.SpotID)
	if err != nil {
		return nil, fmt.Errorf("looking up spot %d: %w", reservation.SpotID, err)
	}
	lot, err := s.lotRepo.FindByID(ctx, spot.LotID)
	if err != nil {
		return nil, fmt.Errorf("looking up lot %d: %w", spot.LotID, err)
	}
	reservation.Spot = spot
	reservation.Lot = lot
	return reservation, nil
}

func (s *AllocationService) HistoryByUser(ctx context.Context, userID int) ([]domain.Reservation, error) {
	return s.resRepo.FindByUserID(ctx, userID)
}

func (s *AllocationService) FindAll(ctx context.Context) ([]domain.Reservation, error) {
	return s.resRepo.FindAll(ctx)
}

func (s *AllocationService) broadcast(lotID, spotID, spotNumber int, status domain.SpotStatus) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastSpotStatus(domain.SpotStatusEvent{
		LotID:      lotID,
		SpotID:     spotID,
		SpotNumber: spotNumber,
		Status:     status,
		Timestamp:  s.now(),
	})
}
