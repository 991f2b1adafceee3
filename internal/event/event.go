package event

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Kind discriminates the event variants. It doubles as the data.type value
// delivered to the receiving client.
type Kind string

const (
	KindManual      Kind = "manual"
	KindStockUpdate Kind = "stock-update"
	KindOrderNew    Kind = "order-new"
)

// ErrInvalidArgument marks a malformed inbound event. It is the only error
// kind surfaced to a synchronous caller as a hard failure.
var ErrInvalidArgument = errors.New("invalid argument")

var validate = validator.New()

// Event is a typed inbound trigger for the notification pipeline.
type Event interface {
	Kind() Kind
	Validate() error
}

// ManualNotify is a direct admin-initiated notification to a single user.
type ManualNotify struct {
	UserID    string `json:"userId" validate:"required"`
	Title     string `json:"title" validate:"required"`
	Body      string `json:"body" validate:"required"`
	Route     string `json:"route"`
	PayloadID string `json:"payloadId"`
}

func (ManualNotify) Kind() Kind { return KindManual }

func (e ManualNotify) Validate() error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("%w: userId, title, and body are required", ErrInvalidArgument)
	}
	return nil
}

// ProductSnapshot is the subset of a product document the dispatcher reads.
// Field names follow the store schema.
type ProductSnapshot struct {
	Stock int64  `json:"stok"`
	Name  string `json:"namaProduk"`
}

// StockChanged carries the pre- and post-mutation snapshots of a product.
type StockChanged struct {
	ProductID string          `json:"productId" validate:"required"`
	Before    ProductSnapshot `json:"before"`
	After     ProductSnapshot `json:"after"`
}

func (StockChanged) Kind() Kind { return KindStockUpdate }

func (e StockChanged) Validate() error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("%w: productId is required", ErrInvalidArgument)
	}
	return nil
}

// Unchanged reports whether the mutation left the stock field alone.
// Such updates never produce a notification.
func (e StockChanged) Unchanged() bool {
	return e.Before.Stock == e.After.Stock
}

// OrderCreated fires once per newly created order record. SellerID maps the
// store's tokoId field, CustomerID its userId field.
type OrderCreated struct {
	OrderID    string `json:"orderId" validate:"required"`
	SellerID   string `json:"tokoId" validate:"required"`
	CustomerID string `json:"userId"`
}

func (OrderCreated) Kind() Kind { return KindOrderNew }

func (e OrderCreated) Validate() error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("%w: orderId and tokoId are required", ErrInvalidArgument)
	}
	return nil
}
