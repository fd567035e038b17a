package ordering

import "time"

// OrderStatus enumerates valid order states.
type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "PLACED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Order is a single user's meal order for one calendar date.
type Order struct {
	ID          int64
	UserID      int64
	MenuID      *int64
	OrderDate   time.Time
	Status      OrderStatus
	Note        *string
	CancelledBy *int64
	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OrderWithUser joins display names onto an order for listings.
type OrderWithUser struct {
	Order
	UserName string
	MenuName *string
}

// CreateOrderRequest captures a new order submission. TargetUserID differs
// from the session user only for admin proxy orders.
type CreateOrderRequest struct {
	TargetUserID int64
	OrderDate    string
	MenuID       *int64
	Note         *string
}

// UpdateOrderRequest carries the editable fields.
type UpdateOrderRequest struct {
	MenuID *int64
	Note   *string
}

// ReassignOrderRequest moves an order onto another user.
type ReassignOrderRequest struct {
	NewUserID int64
}

// ListOrdersRequest filters the order listing.
type ListOrdersRequest struct {
	UserID   *int64
	DateFrom *time.Time
	DateTo   *time.Time
	Status   *OrderStatus
	Limit    int
	Offset   int
}
