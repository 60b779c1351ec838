package models

// Product categories.
const (
	CategoryMen   = "men"
	CategoryWomen = "women"
)

// Product is a catalog entry. Stock is an advisory inventory count: cart
// mutations check it at the instant of writing, checkout decrements it
// conditionally inside the order transaction.
type Product struct {
	BaseModel
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image"`
}
