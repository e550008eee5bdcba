package handler

import (
	"net/http"

	"vehicle_parking/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the administrator dashboard views: user listing,
// full reservation ledger and the entity counters.
type AdminHandler struct {
	parkingService    *service.ParkingService
	allocationService *service.AllocationService
}

func NewAdminHandler(ps *service.ParkingService, as *service.AllocationService) *AdminHandler {
	return &AdminHandler{parkingService: ps, allocationService: as}
}

// GET /admin/users
func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	users, err := h.parkingService.GetAllUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// GET /admin/reservations
func (h *AdminHandler) GetAllReservations(c *gin.Context) {
	reservations, err := h.allocationService.FindAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list reservations"})
		return
	}
	c.JSON(http.StatusOK, reservations)
}

// GET /admin/summary
func (h *AdminHandler) GetSummary(c *gin.Context) {
	summary, err := h.parkingService.GetDashboardSummary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
