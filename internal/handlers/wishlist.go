package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Fahis7/horologie-backend/internal/middleware"
	"github.com/Fahis7/horologie-backend/internal/models"
)

// WishlistHandler manages per-user saved products.
type WishlistHandler struct {
	db *gorm.DB
}

// NewWishlistHandler constructs WishlistHandler.
func NewWishlistHandler(db *gorm.DB) *WishlistHandler {
	return &WishlistHandler{db: db}
}

// ListWishlist returns the caller's saved products, newest first.
func (h *WishlistHandler) ListWishlist(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var entries []models.Wishlist
	if err := h.db.Preload("Product").
		Where("user_id = ?", user.ID).
		Order("added_at desc").
		Find(&entries).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": entries})
}

type wishlistAddRequest struct {
	ProductID string `json:"product_id"`
}

// AddToWishlist saves a product. Saving an already-saved product is a
// no-op, not an error.
func (h *WishlistHandler) AddToWishlist(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req wishlistAddRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
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

	var entry models.Wishlist
	if err := h.db.Where(models.Wishlist{UserID: user.ID, ProductID: productID}).
		FirstOrCreate(&entry).Error; err != nil {
		return err
	}

	entry.Product = &product
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": entry})
}

// RemoveFromWishlist removes a saved product by product id.
func (h *WishlistHandler) RemoveFromWishlist(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	productID, err := uuid.Parse(c.Params("productID"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	result := h.db.Where("user_id = ? AND product_id = ?", user.ID, productID).
		Delete(&models.Wishlist{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "wishlist item not found")
	}

	return c.JSON(fiber.Map{"success": true, "message": "removed from wishlist"})
}
