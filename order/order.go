// Package order holds the shop order model as seen by the payment gateway and
// the stores that persist it.
package order

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Status is the shop-visible order status
type Status string

const (
	StatusPending    Status = "pending"
	StatusFailed     Status = "failed"
	StatusCompleted  Status = "completed"
	StatusProcessing Status = "processing"
	StatusOnHold     Status = "on-hold"
	StatusCancelled  Status = "cancelled"
)

// ErrNotFound is returned when no order exists for an id
var ErrNotFound = errors.New("order not found")

// Note is an audit note attached to an order
type Note struct {
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Order is a shop order awaiting or holding a card payment
type Order struct {
	ID        string     `json:"id" validate:"required"`
	Total     float64    `json:"total" validate:"gte=0"`
	Currency  string     `json:"currency" validate:"required,len=3"`
	Locale    string     `json:"locale,omitempty"`
	Status    Status     `json:"status"`
	Reference string     `json:"reference,omitempty"`
	PaidAt    *time.Time `json:"paidAt,omitempty"`
	Notes     []Note     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// IsPaid reports whether the payment completion was recorded. The status
// alone is not enough because an operator status may replace "completed"
// after payment.
func (o *Order) IsPaid() bool {
	return o.PaidAt != nil || o.Status == StatusCompleted
}

// Clone returns a deep copy
func (o *Order) Clone() *Order {
	c := *o
	if o.PaidAt != nil {
		t := *o.PaidAt
		c.PaidAt = &t
	}
	c.Notes = append([]Note(nil), o.Notes...)
	return &c
}

// Store is the shop's order storage as consumed by the gateway
type Store interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, status Status, note string) error
	AddNote(ctx context.Context, id, note string) error
	// MarkPaid records the payment reference and completes the order. It is a
	// compare-and-set: it returns false when the order was already paid.
	MarkPaid(ctx context.Context, id, reference string) (bool, error)
	ReturnURL(o *Order) string
	CancelURL(o *Order) string
}

// ShopURLs builds the buyer-facing return and cancel URLs of the shop
type ShopURLs struct {
	BaseURL string
}

// ReturnURL is where the bank sends the buyer after a successful payment
func (u ShopURLs) ReturnURL(o *Order) string {
	return fmt.Sprintf("%s/checkout/order-received/%s", strings.TrimRight(u.BaseURL, "/"), url.PathEscape(o.ID))
}

// CancelURL is where the bank sends the buyer after a failed or abandoned payment
func (u ShopURLs) CancelURL(o *Order) string {
	q := url.Values{}
	q.Set("cancel_order", "true")
	q.Set("order_id", o.ID)
	return fmt.Sprintf("%s/cart/?%s", strings.TrimRight(u.BaseURL, "/"), q.Encode())
}
