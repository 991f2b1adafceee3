package routes

import (
	"pasarpush/internal/handlers"
	"pasarpush/internal/security"

	"github.com/labstack/echo/v4"
)

func SetupRoutes(api *echo.Group) {
	api.GET("/health", handlers.HealthCheck)

	// Notification routes
	notifications := api.Group("/notifications")
	notifications.POST("/send", handlers.SendNotification, security.RateLimitMiddleware)
	notifications.GET("", handlers.GetNotifications)
	notifications.GET("/stats", handlers.GetNotificationStats)
	notifications.POST("/:id/read", handlers.MarkNotificationRead)

	// Change-feed ingestion endpoints
	events := api.Group("/events")
	events.POST("/stock", handlers.StockChanged)
	events.POST("/order", handlers.OrderCreated)

	// Audit endpoint
	api.GET("/deliveries", handlers.GetDeliveries)
}
