package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vehicle_parking/internal/domain"
	"vehicle_parking/internal/repository"

	"github.com/lib/pq"
)

type pgParkingSpotRepository struct {
	db *sql.DB
}

func NewPgParkingSpotRepository(db *sql.DB) repository.ParkingSpotRepository {
	return &pgParkingSpotRepository{db: db}
}

func (r *pgParkingSpotRepository) CreateForLot(ctx context.Context, lotID int, count int) ([]domain.ParkingSpot, error) {
	query := `INSERT INTO parking_spots (lot_id, spot_number, status, created_at, updated_at)
	           SELECT $1, n, $2, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP FROM generate_series(1, $3) AS n
	           RETURNING id, lot_id, spot_number, status, created_at, updated_at`
	rows, err := executor(ctx, r.db).QueryContext(ctx, query, lotID, domain.SpotAvailable, count)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code.Name() {
			case "unique_violation":
				return nil, fmt.Errorf("%w: spots already exist for lot %d", repository.ErrDuplicateEntry, lotID)
			case "foreign_key_violation":
				return nil, repository.ErrNotFound
			}
		}
		return nil, fmt.Errorf("ParkingSpotRepository.CreateForLot: %w", err)
	}
	defer rows.Close()

	var spots []domain.ParkingSpot
	for rows.Next() {
		var spot domain.ParkingSpot
		if err := rows.Scan(&spot.ID, &spot.LotID, &spot.SpotNumber, &spot.Status, &spot.CreatedAt, &spot.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ParkingSpotRepository.CreateForLot (scanning row): %w", err)
		}
		spot.CreatedAt = spot.CreatedAt.In(time.UTC)
		spot.UpdatedAt = spot.UpdatedAt.In(time.UTC)
		spots = append(spots, spot)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingSpotRepository.CreateForLot (rows error): %w", err)
	}
	return spots, nil
}

func (r *pgParkingSpotRepository) FindByID(ctx context.Context, id int) (*domain.ParkingSpot, error) {
	spot := &domain.ParkingSpot{}
	query := `SELECT id, lot_id, spot_number, status, created_at, updated_at
	           FROM parking_spots WHERE id = $1`
	err := executor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&spot.ID, &spot.LotID, &spot.SpotNumber, &spot.Status, &spot.CreatedAt, &spot.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingSpotRepository.FindByID: %w", err)
	}
	spot.CreatedAt = spot.CreatedAt.In(time.UTC)
	spot.UpdatedAt = spot.UpdatedAt.In(time.UTC)
	return spot, nil
}

func (r *pgParkingSpotRepository) FindByLotID(ctx context.Context, lotID int) ([]domain.ParkingSpot, error) {
	query := `SELECT id, lot_id, spot_number, status, created_at, updated_at
	           FROM parking_spots WHERE lot_id = $1 ORDER BY spot_number ASC`
	rows, err := executor(ctx, r.db).QueryContext(ctx, query, lotID)
	if err != nil {
		return nil, fmt.Errorf("ParkingSpotRepository.FindByLotID: %w", err)
	}
	defer rows.Close()

	var spots []domain.ParkingSpot
	for rows.Next() {
		var spot domain.ParkingSpot
		if err := rows.Scan(&spot.ID, &spot.LotID, &spot.SpotNumber, &spot.Status, &spot.CreatedAt, &spot.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ParkingSpotRepository.FindByLotID (scanning row): %w", err)
		}
		spot.CreatedAt = spot.CreatedAt.In(time.UTC)
		spot.UpdatedAt = spot.UpdatedAt.In(time.UTC)
		spots = append(spots, spot)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingSpotRepository.FindByLotID (rows error): %w", err)
	}
	return spots, nil
}

// FindFirstAvailableByLotID picks the lowest-numbered available spot and
// locks its row. SKIP LOCKED makes two concurrent reservations in the same
// lot pick different spots instead of serializing on the same row.
func (r *pgParkingSpotRepository) FindFirstAvailableByLotID(ctx context.Context, lotID int) (*domain.ParkingSpot, error) {
	spot := &domain.ParkingSpot{}
	query := `SELECT id, lot_id, spot_number, status, created_at, updated_at
	           FROM parking_spots
	           WHERE lot_id = $1 AND status = $2
	           ORDER BY spot_number ASC LIMIT 1
	           FOR UPDATE SKIP LOCKED`
	err := executor(ctx, r.db).QueryRowContext(ctx, query, lotID, domain.SpotAvailable).Scan(
		&spot.ID, &spot.LotID, &spot.SpotNumber, &spot.Status, &spot.CreatedAt, &spot.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingSpotRepository.FindFirstAvailableByLotID: %w", err)
	}
	spot.CreatedAt = spot.CreatedAt.In(time.UTC)
	spot.UpdatedAt = spot.UpdatedAt.In(time.UTC)
	return spot, nil
}

func (r *pgParkingSpotRepository) UpdateStatus(ctx context.Context, id int, status domain.SpotStatus) error {
	query := `UPDATE parking_spots SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	result, err := executor(ctx, r.db).ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("ParkingSpotRepository.UpdateStatus: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ParkingSpotRepository.UpdateStatus (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *pgParkingSpotRepository) CountByLotIDAndStatus(ctx context.Context, lotID int, status domain.SpotStatus) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM parking_spots WHERE lot_id = $1 AND status = $2`
	err := executor(ctx, r.db).QueryRowContext(ctx, query, lotID, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ParkingSpotRepository.CountByLotIDAndStatus: %w", err)
	}
	return count, nil
}

func (r *pgParkingSpotRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := executor(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM parking_spots`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ParkingSpotRepository.Count: %w", err)
	}
	return count, nil
}
