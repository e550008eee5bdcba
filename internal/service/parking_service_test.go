package service

import (
	"context"
	"testing"
	"time"

	"vehicle_parking/internal/domain"
	"vehicle_parking/internal/repository"
	"vehicle_parking/internal/repository/postgresql"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newParkingServiceWithMock(t *testing.T) (*ParkingService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	svc := NewParkingService(
		postgresql.NewPgParkingLotRepository(db),
		postgresql.NewPgParkingSpotRepository(db),
		postgresql.NewPgUserRepository(db),
		postgresql.NewPgReservationRepository(db),
		postgresql.NewTxManager(db),
	)
	return svc, mock, func() { db.Close() }
}

func TestParkingServiceCreateParkingLot(t *testing.T) {
	now := time.Now().UTC()
	dto := domain.ParkingLotDTO{Name: "Central", Price: 10, Address: "1 Main St", PinCode: "600001", MaxSpots: 2}

	t.Run("creates lot and spots in one transaction", func(t *testing.T) {
		svc, mock, closeDB := newParkingServiceWithMock(t)
		defer closeDB()

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO parking_lots").
			WithArgs(dto.Name, dto.Price, dto.Address, dto.PinCode, dto.MaxSpots).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(1, now, now))
		mock.ExpectQuery("INSERT INTO parking_spots").
			WithArgs(1, domain.SpotAvailable, 2).
			WillReturnRows(sqlmock.NewRows(spotColumns).
				AddRow(10, 1, 1, "available", now, now).
				AddRow(11, 1, 2, "available", now, now))
		mock.ExpectCommit()

		lot, err := svc.CreateParkingLot(context.Background(), dto)
		require.NoError(t, err)
		assert.Equal(t, 1, lot.ID)
		assert.Equal(t, 2, lot.MaxSpots)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when spot creation fails", func(t *testing.T) {
		svc, mock, closeDB := newParkingServiceWithMock(t)
		defer closeDB()

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO parking_lots").
			WithArgs(dto.Name, dto.Price, dto.Address, dto.PinCode, dto.MaxSpots).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(1, now, now))
		mock.ExpectQuery("INSERT INTO parking_spots").
			WillReturnError(assert.AnError)
		mock.ExpectRollback()

		_, err := svc.CreateParkingLot(context.Background(), dto)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestParkingServiceDeleteParkingLot(t *testing.T) {
	now := time.Now().UTC()

	t.Run("refuses while spots are occupied", func(t *testing.T) {
		svc, mock, closeDB := newParkingServiceWithMock(t)
		defer closeDB()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM parking_lots WHERE id").
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows(lotColumns).AddRow(1, "Central", 10.0, "1 Main St", "600001", 2, now, now))
		mock.ExpectQuery("SELECT COUNT(.+) FROM parking_spots").
			WithArgs(1, domain.SpotOccupied).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		err := svc.DeleteParkingLot(context.Background(), 1)
		assert.ErrorIs(t, err, ErrLotHasOccupiedSpots)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deletes an empty lot", func(t *testing.T) {
		svc, mock, closeDB := newParkingServiceWithMock(t)
		defer closeDB()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM parking_lots WHERE id").
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows(lotColumns).AddRow(1, "Central", 10.0, "1 Main St", "600001", 2, now, now))
		mock.ExpectQuery("SELECT COUNT(.+) FROM parking_spots").
			WithArgs(1, domain.SpotOccupied).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec("DELETE FROM parking_lots").
			WithArgs(1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := svc.DeleteParkingLot(context.Background(), 1)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown lot", func(t *testing.T) {
		svc, mock, closeDB := newParkingServiceWithMock(t)
		defer closeDB()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM parking_lots WHERE id").
			WithArgs(99).
			WillReturnRows(sqlmock.NewRows(lotColumns))
		mock.ExpectRollback()

		err := svc.DeleteParkingLot(context.Background(), 99)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestParkingServiceGetAllParkingLots(t *testing.T) {
	now := time.Now().UTC()
	svc, mock, closeDB := newParkingServiceWithMock(t)
	defer closeDB()

	mock.ExpectQuery("SELECT (.+) FROM parking_lots ORDER BY name").
		WillReturnRows(sqlmock.NewRows(lotColumns).
			AddRow(1, "Airport", 25.0, "Terminal Rd", "600027", 50, now, now).
			AddRow(2, "Central", 10.0, "1 Main St", "600001", 2, now, now))
	mock.ExpectQuery("SELECT COUNT(.+) FROM parking_spots").
		WithArgs(1, domain.SpotAvailable).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(48))
	mock.ExpectQuery("SELECT COUNT(.+) FROM parking_spots").
		WithArgs(2, domain.SpotAvailable).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	summaries, err := svc.GetAllParkingLots(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "Airport", summaries[0].Name)
	assert.Equal(t, 48, summaries[0].AvailableSpots)
	assert.Equal(t, 0, summaries[1].AvailableSpots)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParkingServiceGetDashboardSummary(t *testing.T) {
	svc, mock, closeDB := newParkingServiceWithMock(t)
	defer closeDB()

	mock.ExpectQuery("SELECT COUNT(.+) FROM parking_lots").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT COUNT(.+) FROM parking_spots").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(52))
	mock.ExpectQuery("SELECT COUNT(.+) FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery("SELECT COUNT(.+) FROM reservations").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(31))

	summary, err := svc.GetDashboardSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Lots)
	assert.Equal(t, 52, summary.Spots)
	assert.Equal(t, 7, summary.Users)
	assert.Equal(t, 31, summary.Reservations)
	assert.NoError(t, mock.ExpectationsWereMet())
}
