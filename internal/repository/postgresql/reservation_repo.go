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

type pgReservationRepository struct {
	db *sql.DB
}

func NewPgReservationRepository(db *sql.DB) repository.ReservationRepository {
	return &pgReservationRepository{db: db}
}

const reservationColumns = `id, user_id, spot_id, parking_timestamp, leaving_timestamp, parking_cost, created_at, updated_at`

func (r *pgReservationRepository) scanRow(row interface{ Scan(...interface{}) error }, res *domain.Reservation) error {
	return row.Scan(
		&res.ID, &res.UserID, &res.SpotID, &res.ParkingTimestamp,
		&res.LeavingTimestamp, &res.ParkingCost, &res.CreatedAt, &res.UpdatedAt,
	)
}

func normalizeReservation(res *domain.Reservation) {
	res.ParkingTimestamp = res.ParkingTimestamp.In(time.UTC)
	if res.LeavingTimestamp.Valid {
		res.LeavingTimestamp.Time = res.LeavingTimestamp.Time.In(time.UTC)
	}
	res.CreatedAt = res.CreatedAt.In(time.UTC)
	res.UpdatedAt = res.UpdatedAt.In(time.UTC)
}

func (r *pgReservationRepository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	query := `INSERT INTO reservations (user_id, spot_id, parking_timestamp, parking_cost, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING id, created_at, updated_at`
	err := executor(ctx, r.db).QueryRowContext(ctx, query, res.UserID, res.SpotID, res.ParkingTimestamp, res.ParkingCost).
		Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "foreign_key_violation" {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ReservationRepository.Create: %w", err)
	}
	normalizeReservation(res)
	return res, nil
}

func (r *pgReservationRepository) FindByID(ctx context.Context, id int) (*domain.Reservation, error) {
	res := &domain.Reservation{}
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	err := r.scanRow(executor(ctx, r.db).QueryRowContext(ctx, query, id), res)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ReservationRepository.FindByID: %w", err)
	}
	normalizeReservation(res)
	return res, nil
}

func (r *pgReservationRepository) FindActiveByUserID(ctx context.Context, userID int, forUpdate bool) (*domain.Reservation, error) {
	res := &domain.Reservation{}
	query := `SELECT ` + reservationColumns + ` FROM reservations
	           WHERE user_id = $1 AND leaving_timestamp IS NULL
	           ORDER BY parking_timestamp DESC LIMIT 1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	err := r.scanRow(executor(ctx, r.db).QueryRowContext(ctx, query, userID), res)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNoActiveReservation
		}
		return nil, fmt.Errorf("ReservationRepository.FindActiveByUserID: %w", err)
	}
	normalizeReservation(res)
	return res, nil
}

func (r *pgReservationRepository) FindByUserID(ctx context.Context, userID int) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
	           WHERE user_id = $1 ORDER BY parking_timestamp DESC`
	return r.findMany(ctx, query, "FindByUserID", userID)
}

func (r *pgReservationRepository) FindAll(ctx context.Context) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations ORDER BY parking_timestamp DESC`
	return r.findMany(ctx, query, "FindAll")
}

func (r *pgReservationRepository) findMany(ctx context.Context, query, op string, args ...interface{}) ([]domain.Reservation, error) {
	rows, err := executor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ReservationRepository.%s: %w", op, err)
	}
	defer rows.Close()

	var reservations []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := r.scanRow(rows, &res); err != nil {
			return nil, fmt.Errorf("ReservationRepository.%s (scanning row): %w", op, err)
		}
		normalizeReservation(&res)
		reservations = append(reservations, res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ReservationRepository.%s (rows error): %w", op, err)
	}
	return reservations, nil
}

func (r *pgReservationRepository) Close(ctx context.Context, id int, leavingTime time.Time) (*domain.Reservation, error) {
	res := &domain.Reservation{}
	query := `UPDATE reservations SET leaving_timestamp = $1, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $2 AND leaving_timestamp IS NULL
	           RETURNING ` + reservationColumns
	err := r.scanRow(executor(ctx, r.db).QueryRowContext(ctx, query, leavingTime, id), res)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNoActiveReservation
		}
		return nil, fmt.Errorf("ReservationRepository.Close: %w", err)
	}
	normalizeReservation(res)
	return res, nil
}

func (r *pgReservationRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := executor(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ReservationRepository.Count: %w", err)
	}
	return count, nil
}
