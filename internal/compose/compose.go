// Package compose builds push payloads from events. Composition is pure: no
// I/O, no store reads.
package compose

import (
	"fmt"

	"pasarpush/internal/dispatch"
	"pasarpush/internal/event"
)

// Compose builds the notification payload for ev. The data map always
// carries type and route plus the event's identifier fields; unset optional
// fields become empty strings, never absent keys, so the schema stays stable
// for the receiving client.
func Compose(ev event.Event) dispatch.Payload {
	switch ev := ev.(type) {
	case event.ManualNotify:
		return dispatch.Payload{
			Title: ev.Title,
			Body:  ev.Body,
			Data: map[string]string{
				"type":      string(event.KindManual),
				"route":     ev.Route,
				"payloadId": ev.PayloadID,
				"userId":    ev.UserID,
			},
		}
	case event.StockChanged:
		return dispatch.Payload{
			Title: "Stock Updated",
			Body:  fmt.Sprintf("%s now has stock: %d.", ev.After.Name, ev.After.Stock),
			Data: map[string]string{
				"type":      string(event.KindStockUpdate),
				"route":     "/product-detail",
				"productId": ev.ProductID,
			},
		}
	case event.OrderCreated:
		return dispatch.Payload{
			Title: "New Order Received",
			Body:  fmt.Sprintf("Order %s from customer.", ev.OrderID),
			Data: map[string]string{
				"type":       string(event.KindOrderNew),
				"route":      "/store-order-detail",
				"orderId":    ev.OrderID,
				"customerId": ev.CustomerID,
			},
		}
	}
	return dispatch.Payload{}
}
