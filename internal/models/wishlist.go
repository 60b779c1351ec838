package models

import (
	"time"

	"github.com/google/uuid"
)

// Wishlist is a per-user saved product. Adding an already-saved product is
// a no-op rather than an error.
type Wishlist struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_user_product" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_product" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
	AddedAt   time.Time `gorm:"autoCreateTime" json:"added_at"`
}
