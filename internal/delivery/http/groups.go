package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"workshop-dispatch/internal/models"
	"workshop-dispatch/internal/service"
)

type getGroupsResponse struct {
	Data []models.GroupSummary `json:"data"`
}

func groupID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		newErrorResponse(c, http.StatusBadRequest, "invalid group id")
		return 0, false
	}
	return id, true
}

func bindDispatch(c *gin.Context) (models.DispatchRequest, bool) {
	var req models.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return req, false
	}
	return req, true
}

// GetGroups
// @Summary GetGroups
// @Description Lists delivery groups by status
// @ID get-groups
// @Produce json
// @Param status query string false "PENDING, DONE or FAILED" default(PENDING)
// @Success 200 {object} getGroupsResponse
// @Failure 400 {object} errorResponse
// @Failure default {object} errorResponse
// @Router /api/groups [get]
func (h *Handler) GetGroups(c *gin.Context) {
	status := models.GroupStatus(c.DefaultQuery("status", string(models.GroupPending)))
	groups, err := h.svc.Groups(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, getGroupsResponse{Data: groups})
}

// GetGroup
// @Summary GetGroup
// @Description Returns the backend's current view of one group and its items
// @ID get-group
// @Produce json
// @Param id path int true "group id"
// @Success 200 {object} models.GroupDetail
// @Failure 400,404 {object} errorResponse
// @Failure default {object} errorResponse
// @Router /api/groups/{id} [get]
func (h *Handler) GetGroup(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}
	g, err := h.svc.Group(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// PreviewGroup
// @Summary PreviewGroup
// @Description Validates a selection and shows the planned allocation without creating anything
// @ID preview-group
// @Accept json
// @Produce json
// @Param request body models.DispatchRequest true "selection"
// @Success 200 {object} models.DispatchResult
// @Failure 400 {object} errorResponse
// @Failure default {object} errorResponse
// @Router /api/preview [post]
func (h *Handler) PreviewGroup(c *gin.Context) {
	req, ok := bindDispatch(c)
	if !ok {
		return
	}
	res, err := h.svc.Preview(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// CreateGroup
// @Summary CreateGroup
// @Description Allocates gifts to the selected children and queues them in a new delivery group
// @ID create-group
// @Accept json
// @Produce json
// @Param x-staff-id header string false "acting staff id"
// @Param request body models.DispatchRequest true "selection"
// @Success 201 {object} models.DispatchResult
// @Failure 400 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Failure 502 {object} partialResponse
// @Failure default {object} errorResponse
// @Router /api/groups [post]
func (h *Handler) CreateGroup(c *gin.Context) {
	req, ok := bindDispatch(c)
	if !ok {
		return
	}
	res, err := h.svc.CreateGroup(c.Request.Context(), req)
	if err != nil {
		respondDispatchError(c, res, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// ResumeGroup
// @Summary ResumeGroup
// @Description Submits the planned items a partially populated group is still missing
// @ID resume-group
// @Produce json
// @Param id path int true "group id"
// @Success 200 {object} models.DispatchResult
// @Failure 404,409 {object} errorResponse
// @Failure 502 {object} partialResponse
// @Failure default {object} errorResponse
// @Router /api/groups/{id}/resume [post]
func (h *Handler) ResumeGroup(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}
	res, err := h.svc.ResumeGroup(c.Request.Context(), id)
	if err != nil {
		respondDispatchError(c, res, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func respondDispatchError(c *gin.Context, res models.DispatchResult, err error) {
	if !errors.Is(err, service.ErrPartialSubmission) {
		respondError(c, err)
		return
	}
	code, _ := statusFor(err)
	if code < http.StatusBadRequest || code == http.StatusInternalServerError {
		code = http.StatusBadGateway
	}
	c.AbortWithStatusJSON(code, partialResponse{Message: err.Error(), Result: res})
}

// DeliverGroup
// @Summary DeliverGroup
// @Description Attempts delivery once. The backend marks the group DONE or FAILED
// @ID deliver-group
// @Produce json
// @Param id path int true "group id"
// @Success 200 {object} models.DeliveryOutcome
// @Failure 400,404,409 {object} errorResponse
// @Failure default {object} errorResponse
// @Router /api/groups/{id}/deliver [post]
func (h *Handler) DeliverGroup(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}
	out, err := h.svc.DeliverGroup(c.Request.Context(), id)
	if err != nil {
		code, msg := statusFor(err)
		if out.Status == "" {
			newErrorResponse(c, code, msg)
			return
		}
		out.Message = msg
		c.AbortWithStatusJSON(code, out)
		return
	}
	c.JSON(http.StatusOK, out)
}

// DeleteGroup
// @Summary DeleteGroup
// @Description Deletes a PENDING or FAILED group
// @ID delete-group
// @Param id path int true "group id"
// @Success 204
// @Failure 400,404,409 {object} errorResponse
// @Failure default {object} errorResponse
// @Router /api/groups/{id} [delete]
func (h *Handler) DeleteGroup(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteGroup(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
