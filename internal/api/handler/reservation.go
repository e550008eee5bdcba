package handler

import (
	"errors"
	"net/http"
	"strconv"

	"vehicle_parking/internal/api/middleware"
	"vehicle_parking/internal/repository"
	"vehicle_parking/internal/service"

	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	allocationService *service.AllocationService
}

func NewReservationHandler(as *service.AllocationService) *ReservationHandler {
	return &ReservationHandler{allocationService: as}
}

func currentUserID(c *gin.Context) (int, bool) {
	val, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := val.(int)
	return id, ok
}

// POST /parking-lots/:id/reserve
func (h *ReservationHandler) Reserve(c *gin.Context) {
	lotID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lot id"})
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return
	}

	reservation, err := h.allocationService.Reserve(c.Request.Context(), lotID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "parking lot not found"})
		case errors.Is(err, service.ErrNoAvailableSpot):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrActiveReservationExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not reserve spot"})
		}
		return
	}
	c.JSON(http.StatusCreated, reservation)
}

// POST /reservations/release
func (h *ReservationHandler) Release(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return
	}

	reservation, err := h.allocationService.Release(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveReservation) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active reservation"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not release spot"})
		return
	}
	c.JSON(http.StatusOK, reservation)
}

// GET /reservations/current
func (h *ReservationHandler) Current(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return
	}

	reservation, err := h.allocationService.Current(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveReservation) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active reservation"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load reservation"})
		return
	}
	c.JSON(http.StatusOK, reservation)
}

// GET /reservations
func (h *ReservationHandler) History(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return
	}

	reservations, err := h.allocationService.HistoryByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load reservations"})
		return
	}
	c.JSON(http.StatusOK, reservations)
}
