package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"workshop-dispatch/internal/backend"
	"workshop-dispatch/internal/models"
	"workshop-dispatch/internal/repository/cache"
	"workshop-dispatch/internal/service"
)

type errorResponse struct {
	Message string `json:"message"`
}

// partialResponse is returned when a group was created but not every item reached it.
type partialResponse struct {
	Message string                `json:"message"`
	Result  models.DispatchResult `json:"result"`
}

func newErrorResponse(c *gin.Context, statusCode int, message string) {
	if statusCode >= http.StatusInternalServerError {
		logrus.WithField("path", c.FullPath()).Error(message)
	}
	c.AbortWithStatusJSON(statusCode, errorResponse{Message: message})
}

// statusFor maps dispatcher errors to HTTP: user errors 400, conflicts 409, backend
// rejections keep the backend's status, an unreachable backend is 502.
func statusFor(err error) (int, string) {
	var (
		be *backend.Error
		ne *backend.NetworkError
		eh cache.ErrorHandler
	)
	switch {
	case errors.Is(err, service.ErrBusy), errors.Is(err, service.ErrTerminalState):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrDuplicateRequest):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.As(err, &be):
		return be.StatusCode, be.Message
	case errors.As(err, &ne):
		return http.StatusBadGateway, err.Error()
	case errors.As(err, &eh):
		return eh.StatusCode, err.Error()
	}
	return http.StatusInternalServerError, err.Error()
}

func respondError(c *gin.Context, err error) {
	code, msg := statusFor(err)
	newErrorResponse(c, code, msg)
}
