package addons

import (
	"github.com/gin-gonic/gin"
	"github.com/richxcame/car-rental/pkg/common"
)

// Handler handles HTTP requests for a rental's additional services
type Handler struct {
	service *Service
}

// NewHandler creates a new addons handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the routes on rg
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/rentals/:id/additional-services", h.ListByRental)
}

// ListByRental returns the services ordered with a rental
// GET /api/v1/rentals/:id/additional-services
func (h *Handler) ListByRental(c *gin.Context) {
	rentalID, ok := common.ParseUUIDParam(c, "id", "rental ID")
	if !ok {
		return
	}

	services, err := h.service.ListByRental(c.Request.Context(), rentalID)
	if common.HandleServiceError(c, err, "failed to list additional services") {
		return
	}

	common.SuccessResponse(c, services)
}
