package models

import "github.com/google/uuid"

// Order status lifecycle.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// statusTransitions is the full legal transition table. Delivered and
// cancelled are terminal for every actor, admins included.
var statusTransitions = map[string][]string{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// IsValidOrderStatus reports whether s names a known status.
func IsValidOrderStatus(s string) bool {
	_, ok := statusTransitions[s]
	return ok
}

// IsFinalOrderStatus reports whether s is terminal.
func IsFinalOrderStatus(s string) bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionOrderStatus reports whether from -> to is a legal move in
// the lifecycle table.
func CanTransitionOrderStatus(from, to string) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order is an immutable snapshot produced by checkout. Shipping fields,
// total price and items are written once and never recomputed; only Status
// moves afterwards, governed by the transition table.
type Order struct {
	BaseModel
	UserID     uuid.UUID   `gorm:"type:uuid;index" json:"user_id"`
	User       *User       `json:"user,omitempty"`
	FullName   string      `json:"full_name"`
	Address    string      `json:"address"`
	City       string      `json:"city"`
	State      string      `json:"state"`
	ZipCode    string      `json:"zip_code"`
	Phone      string      `json:"phone"`
	TotalPrice float64     `json:"total_price"`
	PaymentID  string      `json:"payment_id"`
	Status     string      `json:"status"`
	Items      []OrderItem `json:"items,omitempty"`
}

// CanBeCancelled reports whether the owner may still cancel. Shipped orders
// are past the point of no return.
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusProcessing
}

// OrderItem freezes a cart line at checkout time. Price is the product's
// price at that moment; later catalog changes do not touch it.
type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	ProductID uuid.UUID `gorm:"type:uuid" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
}
