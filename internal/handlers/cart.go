package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Fahis7/horologie-backend/internal/middleware"
	"github.com/Fahis7/horologie-backend/internal/models"
)

// CartHandler manages the per-user cart.
type CartHandler struct {
	db *gorm.DB
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(db *gorm.DB) *CartHandler {
	return &CartHandler{db: db}
}

// GetCart returns the caller's cart, creating an empty one on first access.
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	cart, err := h.getOrCreateCart(user.ID)
	if err != nil {
		return err
	}

	return h.respondWithCart(c, fiber.StatusOK, cart.ID)
}

type addToCartRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// AddToCart adds quantity of a product to the cart. If a line for that
// product already exists the quantities merge, and the combined quantity is
// what gets checked against stock; on failure the existing line is left
// untouched.
func (h *CartHandler) AddToCart(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req addToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Quantity < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "quantity must be at least 1")
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", productID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	if req.Quantity > product.Stock {
		return fiber.NewError(fiber.StatusBadRequest, "not enough stock available")
	}

	cart, err := h.getOrCreateCart(user.ID)
	if err != nil {
		return err
	}

	var item models.CartItem
	err = h.db.Where("cart_id = ? AND product_id = ?", cart.ID, productID).First(&item).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		item = models.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  req.Quantity,
		}
		if err := h.db.Create(&item).Error; err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		if item.Quantity+req.Quantity > product.Stock {
			return fiber.NewError(fiber.StatusBadRequest, "stock limit exceeded")
		}
		item.Quantity += req.Quantity
		if err := h.db.Save(&item).Error; err != nil {
			return err
		}
	}

	return h.respondWithCart(c, fiber.StatusOK, cart.ID)
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateItem replaces a line's quantity, bounded by current stock.
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	itemID, err := uuid.Parse(c.Params("itemID"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid item id")
	}

	var req updateCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Quantity < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "quantity must be at least 1")
	}

	cart, err := h.findCart(user.ID)
	if err != nil {
		return err
	}

	var item models.CartItem
	if err := h.db.Preload("Product").
		Where("id = ? AND cart_id = ?", itemID, cart.ID).
		First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "cart item not found")
		}
		return err
	}

	if item.Product != nil && req.Quantity > item.Product.Stock {
		return fiber.NewError(fiber.StatusBadRequest, "stock limit exceeded")
	}

	item.Quantity = req.Quantity
	if err := h.db.Save(&item).Error; err != nil {
		return err
	}

	return h.respondWithCart(c, fiber.StatusOK, cart.ID)
}

// RemoveItem deletes a single line.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	itemID, err := uuid.Parse(c.Params("itemID"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid item id")
	}

	cart, err := h.findCart(user.ID)
	if err != nil {
		return err
	}

	var item models.CartItem
	if err := h.db.Where("id = ? AND cart_id = ?", itemID, cart.ID).First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "cart item not found")
		}
		return err
	}

	if err := h.db.Delete(&item).Error; err != nil {
		return err
	}

	return h.respondWithCart(c, fiber.StatusOK, cart.ID)
}

// ClearCart removes every line, leaving the cart row in place.
func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var cart models.Cart
	err := h.db.Where("user_id = ?", user.ID).First(&cart).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}

	if err == nil {
		if err := h.db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "cart cleared successfully",
	})
}

func (h *CartHandler) getOrCreateCart(userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := h.db.Where(models.Cart{UserID: userID}).FirstOrCreate(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (h *CartHandler) findCart(userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := h.db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "cart not found")
		}
		return nil, err
	}
	return &cart, nil
}

func (h *CartHandler) respondWithCart(c *fiber.Ctx, status int, cartID uuid.UUID) error {
	var cart models.Cart
	if err := h.db.Preload("Items.Product").First(&cart, "id = ?", cartID).Error; err != nil {
		return err
	}

	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    cartPayload(&cart),
	})
}

// cartPayload mirrors the cart with per-line and whole-cart totals computed
// from the live product prices.
func cartPayload(cart *models.Cart) fiber.Map {
	items := make([]fiber.Map, 0, len(cart.Items))
	var totalAmount float64

	for _, item := range cart.Items {
		line := fiber.Map{
			"id":       item.ID,
			"quantity": item.Quantity,
		}
		if item.Product != nil {
			lineTotal := float64(item.Quantity) * item.Product.Price
			totalAmount += lineTotal
			line["product"] = fiber.Map{
				"id":       item.Product.ID,
				"name":     item.Product.Name,
				"price":    item.Product.Price,
				"image":    item.Product.ImageURL,
				"category": item.Product.Category,
			}
			line["total_price"] = lineTotal
		}
		items = append(items, line)
	}

	return fiber.Map{
		"id":           cart.ID,
		"items":        items,
		"total_amount": totalAmount,
		"created_at":   cart.CreatedAt,
		"updated_at":   cart.UpdatedAt,
	}
}
