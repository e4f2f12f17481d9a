package routes

import (
	"net/http"
	"time"

	"concierge/handlers"
	"concierge/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterDialogRoutes registers the conversation endpoints.
func RegisterDialogRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/dialog")
	{
		api.POST("/turn", hb.HandleTurnHandler)
		api.GET("/session/:userID", hb.GetSessionHandler)
		api.DELETE("/session/:userID", hb.ResetSessionHandler)
	}
}

// RegisterTenantRoutes registers tenant catalog management endpoints.
func RegisterTenantRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/tenants")
	{
		api.GET("/:id", hb.GetTenantHandler)
		api.PUT("/:id", hb.UpsertTenantHandler)
		api.POST("", hb.UpsertTenantHandler)
		api.DELETE("/:id", hb.DeleteTenantHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterDialogRoutes(r, hb)
	RegisterTenantRoutes(r, hb)
	RegisterHealthRoute(r)
}
