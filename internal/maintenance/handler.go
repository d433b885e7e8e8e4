package maintenance

import (
	"github.com/gin-gonic/gin"
	"github.com/richxcame/car-rental/pkg/common"
	"github.com/richxcame/car-rental/pkg/pagination"
)

// Handler handles HTTP requests for maintenance records
type Handler struct {
	service *Service
}

// NewHandler creates a new maintenance handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the maintenance routes on rg
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	maintenance := rg.Group("/maintenance")
	{
		maintenance.POST("", h.Add)
		maintenance.GET("", h.GetAll)
		maintenance.GET("/vehicle/:vehicleId", h.GetAllByVehicleID)
		maintenance.PUT("/:id", h.Update)
		maintenance.DELETE("/:id", h.Delete)
	}
}

// Add opens a maintenance record
// POST /api/v1/maintenance
func (h *Handler) Add(c *gin.Context) {
	var req CreateMaintenanceRequest
	if !common.BindJSON(c, &req) {
		return
	}

	record, err := h.service.Add(c.Request.Context(), &req)
	if common.HandleServiceError(c, err, "failed to create maintenance record") {
		return
	}

	common.CreatedResponse(c, record)
}

// Update overwrites record fields
// PUT /api/v1/maintenance/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "maintenance ID")
	if !ok {
		return
	}

	var req UpdateMaintenanceRequest
	if !common.BindJSON(c, &req) {
		return
	}

	record, err := h.service.Update(c.Request.Context(), id, &req)
	if common.HandleServiceError(c, err, "failed to update maintenance record") {
		return
	}

	common.SuccessResponse(c, record)
}

// Delete removes a record
// DELETE /api/v1/maintenance/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "maintenance ID")
	if !ok {
		return
	}

	if common.HandleServiceError(c, h.service.Delete(c.Request.Context(), id), "failed to delete maintenance record") {
		return
	}

	common.NoContentResponse(c)
}

// GetAll lists every record
// GET /api/v1/maintenance
func (h *Handler) GetAll(c *gin.Context) {
	params := pagination.ParseParams(c)

	records, total, err := h.service.GetAll(c.Request.Context(), params.Limit, params.Offset)
	if common.HandleServiceError(c, err, "failed to list maintenance records") {
		return
	}

	common.SuccessResponseWithMeta(c, records, pagination.BuildMeta(params, total))
}

// GetAllByVehicleID lists one vehicle's records
// GET /api/v1/maintenance/vehicle/:vehicleId
func (h *Handler) GetAllByVehicleID(c *gin.Context) {
	vehicleID, ok := common.ParseUUIDParam(c, "vehicleId", "vehicle ID")
	if !ok {
		return
	}
	params := pagination.ParseParams(c)

	records, total, err := h.service.GetAllByVehicleID(c.Request.Context(), vehicleID, params.Limit, params.Offset)
	if common.HandleServiceError(c, err, "failed to list maintenance records") {
		return
	}

	common.SuccessResponseWithMeta(c, records, pagination.BuildMeta(params, total))
}
