package routes

import (
	"net/http"

	"algocamp_backend/internal/handlers"
	"algocamp_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires every endpoint onto the router.
func RegisterRoutes(router *gin.Engine, h *handlers.AppHandlers) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		// Public form endpoint.
		api.POST("/applications", h.ApplicationHandler.Submit)

		// Review surface, admin token required.
		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles("admin"))
		{
			admin.GET("/applications", h.AdminHandler.ListApplications)
			admin.GET("/applications/:id", h.AdminHandler.GetApplication)
		}
	}
}
