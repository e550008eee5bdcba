package domain

import "time"

type SpotStatus string

const (
	SpotAvailable SpotStatus = "available"
	SpotOccupied  SpotStatus = "occupied"
)

type ParkingSpot struct {
	ID         int        `json:"id"`
	LotID      int        `json:"lot_id"`
	SpotNumber int        `json:"spot_number"`
	Status     SpotStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// SpotStatusEvent is pushed to websocket subscribers whenever a spot
// flips between available and occupied.
type SpotStatusEvent struct {
	LotID      int        `json:"lot_id"`
	SpotID     int        `json:"spot_id"`
	SpotNumber int        `json:"spot_number"`
	Status     SpotStatus `json:"status"`
	Timestamp  time.Time  `json:"timestamp"`
}
