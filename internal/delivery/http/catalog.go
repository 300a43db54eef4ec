package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"workshop-dispatch/internal/models"
)

type getTargetsResponse struct {
	Data []models.Target `json:"data"`
}

type getReindeerResponse struct {
	Data []models.Reindeer `json:"data"`
}

type getRegionsResponse struct {
	Data []models.Region `json:"data"`
}

type getStockResponse struct {
	Data []models.Gift `json:"data"`
}

// GetTargets
// @Summary GetTargets
// @Description Lists NICE children still awaiting delivery, optionally narrowed to one region
// @ID get-targets
// @Produce json
// @Param region_id query int false "region id"
// @Success 200 {object} getTargetsResponse
// @Failure 400 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Failure default {object} errorResponse
// @Router /api/targets [get]
func (h *Handler) GetTargets(c *gin.Context) {
	var region *int
	if raw := c.Query("region_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			newErrorResponse(c, http.StatusBadRequest, "invalid region_id")
			return
		}
		region = &id
	}

	targets, err := h.svc.Targets(c.Request.Context(), region)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, getTargetsResponse{Data: targets})
}

// GetReindeer
// @Summary GetReindeer
// @Description Lists reindeer ready for a delivery run
// @ID get-reindeer
// @Produce json
// @Success 200 {object} getReindeerResponse
// @Failure 502 {object} errorResponse
// @Failure default {object} errorResponse
// @Router /api/reindeer [get]
func (h *Handler) GetReindeer(c *gin.Context) {
	reindeer, err := h.svc.Reindeer(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, getReindeerResponse{Data: reindeer})
}

// GetRegions
// @Summary GetRegions
// @ID get-regions
// @Produce json
// @Success 200 {object} getRegionsResponse
// @Failure default {object} errorResponse
// @Router /api/regions [get]
func (h *Handler) GetRegions(c *gin.Context) {
	regions, err := h.svc.Regions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, getRegionsResponse{Data: regions})
}

// GetStock
// @Summary GetStock
// @Description Lists the gift catalog, largest stock first
// @ID get-stock
// @Produce json
// @Success 200 {object} getStockResponse
// @Failure default {object} errorResponse
// @Router /api/stock [get]
func (h *Handler) GetStock(c *gin.Context) {
	gifts, err := h.svc.Stock(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, getStockResponse{Data: gifts})
}

// Refresh
// @Summary Refresh
// @Description Reloads targets, reindeer, regions, stock and pending groups from the backend
// @ID refresh
// @Success 204
// @Failure 502 {object} errorResponse
// @Failure default {object} errorResponse
// @Router /api/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	if err := h.svc.Refresh(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
