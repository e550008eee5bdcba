package domain

import "time"

type ParkingLot struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Address   string    `json:"address"`
	PinCode   string    `json:"pin_code"`
	MaxSpots  int       `json:"max_spots"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ParkingLotDTO struct {
	Name     string  `json:"name" binding:"required,max=100"`
	Price    float64 `json:"price" binding:"required,gt=0"`
	Address  string  `json:"address" binding:"required,max=200"`
	PinCode  string  `json:"pin_code" binding:"required,max=10"`
	MaxSpots int     `json:"max_spots" binding:"required,gt=0"`
}

// ParkingLotSummary is a lot together with its current availability,
// used by the lot listing so clients can pick a lot to reserve in.
type ParkingLotSummary struct {
	ParkingLot
	AvailableSpots int `json:"available_spots"`
}
