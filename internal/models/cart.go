package models

import "github.com/google/uuid"

// Cart is the per-user pre-checkout collection, created lazily on first
// access. Exactly one cart exists per user; checkout empties it but never
// deletes the row.
type Cart struct {
	BaseModel
	UserID uuid.UUID  `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	Items  []CartItem `json:"items,omitempty"`
}

// CartItem is a single (cart, product) line. The unique composite index
// guarantees at most one line per product; adding the same product again
// merges into the existing line's quantity.
type CartItem struct {
	BaseModel
	CartID    uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_product" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
	Quantity  int       `json:"quantity"`
}
