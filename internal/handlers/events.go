package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"pasarpush/internal/event"
	"pasarpush/internal/queue"
)

// StockChanged ingests a product-update mutation from the change feed and
// queues it for async fan-out. The feed only gets an ack; dispatch failures
// never travel back to the writer of the mutation.
func StockChanged(c echo.Context) error {
	var ev event.StockChanged
	if err := c.Bind(&ev); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := ev.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "productId is required"})
	}

	taskID, err := queue.EnqueueStockChanged(ev)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to queue event"})
	}

	return c.JSON(http.StatusAccepted, map[string]string{"task_id": taskID})
}

// OrderCreated ingests a new-order mutation and queues the seller notify.
func OrderCreated(c echo.Context) error {
	var ev event.OrderCreated
	if err := c.Bind(&ev); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := ev.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "orderId and tokoId are required"})
	}

	taskID, err := queue.EnqueueOrderCreated(ev)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to queue event"})
	}

	return c.JSON(http.StatusAccepted, map[string]string{"task_id": taskID})
}
