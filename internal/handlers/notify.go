package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"pasarpush/internal/event"
	"pasarpush/internal/notify"
)

type SendResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SendNotification is the synchronous manual-send entry point. The caller
// blocks for the outcome; InvalidArgument fails before any token lookup.
func SendNotification(c echo.Context) error {
	var ev event.ManualNotify
	if err := c.Bind(&ev); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	outcome, err := notify.GetService().Notify(c.Request().Context(), ev)
	if errors.Is(err, event.ErrInvalidArgument) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "userId, title, and body are required"})
	}
	if err != nil {
		slog.Error("manual notification failed", "user_id", ev.UserID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to send notification"})
	}

	if outcome.Attempted == 0 {
		return c.JSON(http.StatusOK, SendResponse{Success: false, Message: "no device tokens registered"})
	}

	return c.JSON(http.StatusOK, SendResponse{
		Success: true,
		Message: fmt.Sprintf("delivered %d of %d", outcome.Delivered, outcome.Attempted),
	})
}
