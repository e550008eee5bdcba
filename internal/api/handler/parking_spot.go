package handler

import (
	"errors"
	"net/http"
	"strconv"

	"vehicle_parking/internal/repository"
	"vehicle_parking/internal/service"

	"github.com/gin-gonic/gin"
)

type ParkingSpotHandler struct {
	parkingService *service.ParkingService
}

func NewParkingSpotHandler(ps *service.ParkingService) *ParkingSpotHandler {
	return &ParkingSpotHandler{parkingService: ps}
}

// GET /parking-spots/:spot_id
func (h *ParkingSpotHandler) GetParkingSpotByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("spot_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid spot id"})
		return
	}

	spot, err := h.parkingService.GetParkingSpotByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "parking spot not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load parking spot"})
		return
	}
	c.JSON(http.StatusOK, spot)
}
