package repository

import (
	"context"
	"time"

	"vehicle_parking/internal/domain"

	"errors"
)

var ErrNotFound = errors.New("record not found")
var ErrDuplicateEntry = errors.New("record already exists")
var ErrNoActiveReservation = errors.New("no active reservation for the given user")

// TxManager runs a function inside a single database transaction. Repository
// calls made with the context it passes to fn share that transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
}

type ParkingLotRepository interface {
	Create(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error)
	FindByID(ctx context.Context, id int) (*domain.ParkingLot, error)
	FindAll(ctx context.Context) ([]domain.ParkingLot, error)
	Update(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error)
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
}

type ParkingSpotRepository interface {
	// CreateForLot inserts spots numbered 1..count for the given lot, all
	// available. Used when a lot is created.
	CreateForLot(ctx context.Context, lotID int, count int) ([]domain.ParkingSpot, error)
	FindByID(ctx context.Context, id int) (*domain.ParkingSpot, error)
	FindByLotID(ctx context.Context, lotID int) ([]domain.ParkingSpot, error)
	// FindFirstAvailableByLotID returns the available spot with the lowest
	// spot number in the lot, locking the row until the surrounding
	// transaction finishes. Returns ErrNotFound when the lot is full.
	FindFirstAvailableByLotID(ctx context.Context, lotID int) (*domain.ParkingSpot, error)
	UpdateStatus(ctx context.Context, id int, status domain.SpotStatus) error
	CountByLotIDAndStatus(ctx context.Context, lotID int, status domain.SpotStatus) (int, error)
	Count(ctx context.Context) (int, error)
}

type ReservationRepository interface {
	Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
	FindByID(ctx context.Context, id int) (*domain.Reservation, error)
	// FindActiveByUserID returns the user's open reservation (leaving
	// timestamp null) or ErrNoActiveReservation. With forUpdate the row is
	// locked until the surrounding transaction finishes.
	FindActiveByUserID(ctx context.Context, userID int, forUpdate bool) (*domain.Reservation, error)
	FindByUserID(ctx context.Context, userID int) ([]domain.Reservation, error)
	FindAll(ctx context.Context) ([]domain.Reservation, error)
	// Close sets the leaving timestamp on an open reservation.
	Close(ctx context.Context, id int, leavingTime time.Time) (*domain.Reservation, error)
	Count(ctx context.Context) (int, error)
}
