package rentals

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/car-rental/pkg/common"
	"github.com/richxcame/car-rental/pkg/pagination"
)

// Handler handles HTTP requests for rentals
type Handler struct {
	service *Service
}

// NewHandler creates a new rentals handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the rental routes on rg
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rentals := rg.Group("/rentals")
	{
		rentals.POST("", h.Add)
		rentals.GET("", h.GetAll)
		rentals.GET("/:id", h.GetByID)
		rentals.PUT("/:id", h.Update)
		rentals.DELETE("/:id", h.Delete)
		rentals.POST("/:id/return", h.Return)
	}
}

// Add opens a rental
// POST /api/v1/rentals
func (h *Handler) Add(c *gin.Context) {
	var req CreateRentalRequest
	if !common.BindJSON(c, &req) {
		return
	}

	rental, err := h.service.Add(c.Request.Context(), &req)
	if common.HandleServiceError(c, err, "failed to create rental") {
		return
	}

	common.CreatedResponse(c, rental)
}

// Return closes a rental
// POST /api/v1/rentals/:id/return
func (h *Handler) Return(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "rental ID")
	if !ok {
		return
	}

	var req ReturnRentalRequest
	if !common.BindJSON(c, &req) {
		return
	}

	rental, err := h.service.Return(c.Request.Context(), id, &req)
	if common.HandleServiceError(c, err, "failed to return rental") {
		return
	}

	common.SuccessResponse(c, rental)
}

// Update overwrites rental fields
// PUT /api/v1/rentals/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "rental ID")
	if !ok {
		return
	}

	var req UpdateRentalRequest
	if !common.BindJSON(c, &req) {
		return
	}

	rental, err := h.service.Update(c.Request.Context(), id, &req)
	if common.HandleServiceError(c, err, "failed to update rental") {
		return
	}

	common.SuccessResponse(c, rental)
}

// Delete removes a rental
// DELETE /api/v1/rentals/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "rental ID")
	if !ok {
		return
	}

	if common.HandleServiceError(c, h.service.Delete(c.Request.Context(), id), "failed to delete rental") {
		return
	}

	common.NoContentResponse(c)
}

// GetByID returns a rental
// GET /api/v1/rentals/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "rental ID")
	if !ok {
		return
	}

	rental, err := h.service.GetByID(c.Request.Context(), id)
	if common.HandleServiceError(c, err, "failed to get rental") {
		return
	}

	common.SuccessResponse(c, rental)
}

// GetAll lists rentals
// GET /api/v1/rentals?vehicle_id=&open=true&limit=&offset=
func (h *Handler) GetAll(c *gin.Context) {
	params := pagination.ParseParams(c)

	filter := &RentalFilter{OpenOnly: c.Query("open") == "true"}
	if raw := c.Query("vehicle_id"); raw != "" {
		vehicleID, err := uuid.Parse(raw)
		if err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "invalid vehicle_id")
			return
		}
		filter.VehicleID = &vehicleID
	}

	rentals, total, err := h.service.GetAll(c.Request.Context(), filter, params.Limit, params.Offset)
	if common.HandleServiceError(c, err, "failed to list rentals") {
		return
	}

	common.SuccessResponseWithMeta(c, rentals, pagination.BuildMeta(params, total))
}
