package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "workshop-dispatch/docs"
	"workshop-dispatch/internal/backend"
	"workshop-dispatch/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Handler struct {
	svc service.Dispatch
}

func NewHandler(s service.Dispatch) *Handler {
	return &Handler{svc: s}
}

func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.Default()

	api := router.Group("/api", staffContext)
	{
		api.GET("/targets", h.GetTargets)
		api.GET("/reindeer", h.GetReindeer)
		api.GET("/regions", h.GetRegions)
		api.GET("/stock", h.GetStock)
		api.POST("/refresh", h.Refresh)
		api.POST("/preview", h.PreviewGroup)

		groups := api.Group("/groups")
		{
			groups.GET("", h.GetGroups)
			groups.POST("", h.CreateGroup)
			groups.GET("/:id", h.GetGroup)
			groups.DELETE("/:id", h.DeleteGroup)
			groups.POST("/:id/resume", h.ResumeGroup)
			groups.POST("/:id/deliver", h.DeliverGroup)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return router
}

// staffContext forwards the caller's x-staff-id to every backend call made for the request.
func staffContext(c *gin.Context) {
	if id := c.GetHeader(backend.StaffHeader); id != "" {
		c.Request = c.Request.WithContext(backend.WithStaffID(c.Request.Context(), id))
	}
	c.Next()
}
