package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/bashbay-calendar/internal/container"
	"github.com/joshua-takyi/bashbay-calendar/internal/handlers"
	"github.com/joshua-takyi/bashbay-calendar/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	if container.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     container.Config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	// API version 1
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", handlers.Health())

		venues := v1.Group("/venues/:id")
		venues.GET("/calendar", handlers.GetCalendar(container.CalendarService))
		venues.GET("/slots", handlers.GetSlots(container.CalendarService))
		venues.POST("/selection", handlers.ToggleSlot(container.CalendarService))
	}

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(container.TokenValidator, container.Logger))
	{
		protected.POST("/venues/:id/checkout", handlers.Checkout(container.CalendarService))
		protected.GET("/drafts/me", handlers.GetMyDraft(container.DraftService))
		protected.DELETE("/drafts/me", handlers.DiscardMyDraft(container.DraftService))
	}

	return r
}
