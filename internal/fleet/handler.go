package fleet

import (
	"github.com/gin-gonic/gin"
	"github.com/richxcame/car-rental/pkg/common"
)

// Handler handles HTTP requests for vehicles
type Handler struct {
	service *Service
}

// NewHandler creates a new fleet handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the vehicle routes on rg
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	vehicles := rg.Group("/vehicles")
	{
		vehicles.POST("", h.Register)
		vehicles.GET("/:id", h.Get)
		vehicles.PUT("/:id/state", h.SetState)
	}
}

// Register adds a vehicle
// POST /api/v1/vehicles
func (h *Handler) Register(c *gin.Context) {
	var req RegisterVehicleRequest
	if !common.BindJSON(c, &req) {
		return
	}

	vehicle, err := h.service.RegisterVehicle(c.Request.Context(), &req)
	if common.HandleServiceError(c, err, "failed to register vehicle") {
		return
	}

	common.CreatedResponse(c, vehicle)
}

// Get returns a vehicle
// GET /api/v1/vehicles/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "vehicle ID")
	if !ok {
		return
	}

	vehicle, err := h.service.GetVehicle(c.Request.Context(), id)
	if common.HandleServiceError(c, err, "failed to get vehicle") {
		return
	}

	common.SuccessResponse(c, vehicle)
}

// SetState overrides a vehicle's state
// PUT /api/v1/vehicles/:id/state
func (h *Handler) SetState(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "vehicle ID")
	if !ok {
		return
	}

	var req UpdateStateRequest
	if !common.BindJSON(c, &req) {
		return
	}

	vehicle, err := h.service.SetState(c.Request.Context(), id, &req)
	if common.HandleServiceError(c, err, "failed to update vehicle state") {
		return
	}

	common.SuccessResponse(c, vehicle)
}
