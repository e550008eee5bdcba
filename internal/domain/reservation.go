package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

// Reservation is one occupancy episode: it opens when a user reserves a
// spot and closes when the spot is released. LeavingTimestamp is null
// while the reservation is open; ParkingCost is fixed to the lot's flat
// price when the reservation opens.
type Reservation struct {
	ID               int        `json:"id"`
	UserID           int        `json:"user_id"`
	SpotID           int        `json:"spot_id"`
	ParkingTimestamp time.Time  `json:"parking_timestamp"`
	LeavingTimestamp null.Time  `json:"leaving_timestamp"`
	ParkingCost      null.Float `json:"parking_cost"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Populated for API responses, not mapped to a column.
	Spot *ParkingSpot `json:"spot,omitempty"`
	Lot  *ParkingLot  `json:"lot,omitempty"`
}

// Open reports whether the reservation is still active.
func (r *Reservation) Open() bool {
	return !r.LeavingTimestamp.Valid
}
