package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"pasarpush/internal/db"
	"pasarpush/internal/notification"
)

// GetNotifications lists a user's in-app inbox records.
func GetNotifications(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id is required"})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = 50
	}

	records, err := notification.GetStore().List(c.Request().Context(), userID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch notifications"})
	}

	return c.JSON(http.StatusOK, records)
}

func GetNotificationStats(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id is required"})
	}

	stats, err := notification.GetStore().GetStats(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch stats"})
	}

	return c.JSON(http.StatusOK, stats)
}

func MarkNotificationRead(c echo.Context) error {
	userID := c.QueryParam("user_id")
	recordID := c.Param("id")
	if userID == "" || recordID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id and notification id are required"})
	}

	if err := notification.GetStore().MarkAsRead(c.Request().Context(), userID, recordID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to mark notification as read"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

// GetDeliveries returns the newest dispatch audit rows.
func GetDeliveries(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	deliveries, err := db.RecentDeliveries(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch deliveries"})
	}

	return c.JSON(http.StatusOK, deliveries)
}

func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
