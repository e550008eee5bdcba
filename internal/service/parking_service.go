package service

import (
	"context"
	"errors"
	"fmt"

	"vehicle_parking/internal/domain"
	"vehicle_parking/internal/logger"
	"vehicle_parking/internal/metrics"
	"vehicle_parking/internal/repository"

	"go.uber.org/zap"
)

var ErrLotHasOccupiedSpots = errors.New("lot has occupied spots and cannot be deleted")

// ParkingService manages the lot/spot inventory and the admin views over it.
type ParkingService struct {
	lotRepo  repository.ParkingLotRepository
	spotRepo repository.ParkingSpotRepository
	userRepo repository.UserRepository
	resRepo  repository.ReservationRepository
	tx       repository.TxManager
}

func NewParkingService(
	lotRepo repository.ParkingLotRepository,
	spotRepo repository.ParkingSpotRepository,
	userRepo repository.UserRepository,
	resRepo repository.ReservationRepository,
	tx repository.TxManager,
) *ParkingService {
	return &ParkingService{
		lotRepo:  lotRepo,
		spotRepo: spotRepo,
		userRepo: userRepo,
		resRepo:  resRepo,
		tx:       tx,
	}
}

// CreateParkingLot creates the lot and its MaxSpots numbered spots in one
// transaction, so a lot is never observable without its full spot set.
func (s *ParkingService) CreateParkingLot(ctx context.Context, dto domain.ParkingLotDTO) (*domain.ParkingLot, error) {
	lot := &domain.ParkingLot{
		Name:     dto.Name,
		Price:    dto.Price,
		Address:  dto.Address,
		PinCode:  dto.PinCode,
		MaxSpots: dto.MaxSpots,
	}

	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		created, err := s.lotRepo.Create(txCtx, lot)
		if err != nil {
			return err
		}
		if _, err := s.spotRepo.CreateForLot(txCtx, created.ID, created.MaxSpots); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.LotsCreated.Inc()
	logger.L().Info("parking lot created",
		zap.Int("lot_id", lot.ID), zap.String("name", lot.Name), zap.Int("max_spots", lot.MaxSpots))
	return lot, nil
}

func (s *ParkingService) GetParkingLotByID(ctx context.Context, id int) (*domain.ParkingLot, error) {
	return s.lotRepo.FindByID(ctx, id)
}

// GetAllParkingLots returns every lot with its current available-spot count.
func (s *ParkingService) GetAllParkingLots(ctx context.Context) ([]domain.ParkingLotSummary, error) {
	lots, err := s.lotRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]domain.ParkingLotSummary, 0, len(lots))
	for _, lot := range lots {
		available, err := s.spotRepo.CountByLotIDAndStatus(ctx, lot.ID, domain.SpotAvailable)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, domain.ParkingLotSummary{ParkingLot: lot, AvailableSpots: available})
	}
	return summaries, nil
}

// UpdateParkingLot changes lot attributes. MaxSpots is fixed at creation;
// resizing a lot would orphan or invent spots.
func (s *ParkingService) UpdateParkingLot(ctx context.Context, id int, dto domain.ParkingLotDTO) (*domain.ParkingLot, error) {
	lot, err := s.lotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	lot.Name = dto.Name
	lot.Price = dto.Price
	lot.Address = dto.Address
	lot.PinCode = dto.PinCode
	return s.lotRepo.Update(ctx, lot)
}

// DeleteParkingLot removes a lot and, via cascade, its spots and their
// reservations. Refused while any spot is occupied.
func (s *ParkingService) DeleteParkingLot(ctx context.Context, id int) error {
	return s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		if _, err := s.lotRepo.FindByID(txCtx, id); err != nil {
			return err
		}
		occupied, err := s.spotRepo.CountByLotIDAndStatus(txCtx, id, domain.SpotOccupied)
		if err != nil {
			return err
		}
		if occupied > 0 {
			return fmt.Errorf("%w: %d occupied", ErrLotHasOccupiedSpots, occupied)
		}
		return s.lotRepo.Delete(txCtx, id)
	})
}

func (s *ParkingService) GetSpotsByLotID(ctx context.Context, lotID int) ([]domain.ParkingSpot, error) {
	if _, err := s.lotRepo.FindByID(ctx, lotID); err != nil {
		return nil, err
	}
	return s.spotRepo.FindByLotID(ctx, lotID)
}

func (s *ParkingService) GetParkingSpotByID(ctx context.Context, spotID int) (*domain.ParkingSpot, error) {
	return s.spotRepo.FindByID(ctx, spotID)
}

func (s *ParkingService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

// DashboardSummary mirrors the admin landing page counters.
type DashboardSummary struct {
	Lots         int `json:"lots"`
	Spots        int `json:"spots"`
	Users        int `json:"users"`
	Reservations int `json:"reservations"`
}

func (s *ParkingService) GetDashboardSummary(ctx context.Context) (*DashboardSummary, error) {
	summary := &DashboardSummary{}
	var err error
	if summary.Lots, err = s.lotRepo.Count(ctx); err != nil {
		return nil, err
	}
	if summary.Spots, err = s.spotRepo.Count(ctx); err != nil {
		return nil, err
	}
	if summary.Users, err = s.userRepo.Count(ctx); err != nil {
		return nil, err
	}
	if summary.Reservations, err = s.resRepo.Count(ctx); err != nil {
		return nil, err
	}
	return summary, nil
}
