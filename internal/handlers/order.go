package handlers

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Fahis7/horologie-backend/internal/config"
	"github.com/Fahis7/horologie-backend/internal/metrics"
	"github.com/Fahis7/horologie-backend/internal/middleware"
	"github.com/Fahis7/horologie-backend/internal/models"
	"github.com/Fahis7/horologie-backend/internal/services"
	"github.com/Fahis7/horologie-backend/internal/utils"
)

// OrderHandler manages checkout and the order lifecycle.
type OrderHandler struct {
	db     *gorm.DB
	cfg    *config.Config
	stripe *services.StripeService
	mailer *services.MailService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, cfg *config.Config, stripe *services.StripeService, mailer *services.MailService) *OrderHandler {
	return &OrderHandler{db: db, cfg: cfg, stripe: stripe, mailer: mailer}
}

// CreatePaymentIntent registers a stripe payment intent for the caller's
// current cart total and returns the client secret.
func (h *OrderHandler) CreatePaymentIntent(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var cart models.Cart
	if err := h.db.Preload("Items.Product").Where("user_id = ?", user.ID).First(&cart).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusBadRequest, "cart is empty")
		}
		return err
	}

	if len(cart.Items) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "cart is empty")
	}

	var total float64
	for _, item := range cart.Items {
		if item.Product != nil {
			total += float64(item.Quantity) * item.Product.Price
		}
	}

	secret, err := h.stripe.CreatePaymentIntent(total, user.ID.String())
	if err != nil {
		if errors.Is(err, services.ErrUpstreamUnavailable) {
			return fiber.NewError(fiber.StatusBadGateway, "payment gateway unavailable")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"clientSecret": secret,
	})
}

type checkoutRequest struct {
	FullName  string `json:"full_name"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Phone     string `json:"phone"`
	PaymentID string `json:"payment_id"`
}

// Checkout converts the caller's cart into an order as one all-or-nothing
// transaction: snapshot prices, create the order and its items, decrement
// stock conditionally, clear the cart. The confirmation email goes out
// after commit and its failure never surfaces.
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.FullName == "" || req.Address == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing shipping details")
	}

	// Verify the client-supplied payment reference with the gateway before
	// committing anything. Skipped when the gateway is not configured.
	if req.PaymentID != "" && h.stripe.Enabled() {
		if err := h.stripe.VerifyPaymentIntent(req.PaymentID); err != nil {
			switch {
			case errors.Is(err, services.ErrPaymentNotCompleted):
				return fiber.NewError(fiber.StatusBadRequest, "payment has not been completed")
			case errors.Is(err, services.ErrInvalidToken):
				return fiber.NewError(fiber.StatusBadRequest, "unknown payment reference")
			case errors.Is(err, services.ErrUpstreamUnavailable):
				return fiber.NewError(fiber.StatusBadGateway, "payment gateway unavailable")
			default:
				return err
			}
		}
	}

	var order models.Order
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Where("user_id = ?", user.ID).First(&cart).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusBadRequest, "cart is empty")
			}
			return err
		}

		var items []models.CartItem
		if err := tx.Preload("Product").Where("cart_id = ?", cart.ID).Find(&items).Error; err != nil {
			return err
		}

		if len(items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "cart is empty")
		}

		var totalPrice float64
		orderItems := make([]models.OrderItem, 0, len(items))
		for _, item := range items {
			if item.Product == nil {
				return fmt.Errorf("cart item %s references missing product", item.ID)
			}
			totalPrice += float64(item.Quantity) * item.Product.Price
			orderItems = append(orderItems, models.OrderItem{
				ProductID: item.ProductID,
				Price:     item.Product.Price,
				Quantity:  item.Quantity,
			})
		}

		order = models.Order{
			UserID:     user.ID,
			FullName:   req.FullName,
			Address:    req.Address,
			City:       req.City,
			State:      req.State,
			ZipCode:    req.ZipCode,
			Phone:      req.Phone,
			TotalPrice: totalPrice,
			PaymentID:  req.PaymentID,
			Status:     models.OrderStatusPending,
			Items:      orderItems,
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		// Conditional decrement: the WHERE guard makes two concurrent
		// checkouts of the same scarce product serialize on the row, and
		// the loser rolls back here.
		for _, item := range items {
			result := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "stock limit exceeded")
			}
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return err
	}

	metrics.OrdersCreated.Inc()
	go h.dispatchConfirmationEmail(*user, order)

	var created models.Order
	if err := h.db.Preload("Items.Product").First(&created, "id = ?", order.ID).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    created,
	})
}

// dispatchConfirmationEmail runs after the order is durably committed.
// Failures are logged and dropped: delivery never decides checkout's fate.
func (h *OrderHandler) dispatchConfirmationEmail(user models.User, order models.Order) {
	conf := services.OrderConfirmation{
		OrderID:      order.ID.String(),
		CustomerName: user.FirstName + " " + user.LastName,
		TotalPrice:   order.TotalPrice,
		DashboardURL: h.cfg.FrontendURL + "/orders",
	}

	if err := h.mailer.SendOrderConfirmation(user.Email, conf); err != nil {
		log.Printf("[Order] confirmation email failed for order %s: %v", order.ID, err)
		return
	}
	log.Printf("[Order] confirmation email sent for order %s", order.ID)
}

// ListOrders returns the caller's orders, newest first.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{}).Where("user_id = ?", user.ID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items.Product").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns one of the caller's orders. Ownership is folded into
// the lookup: another user's order id reads as not found.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.Preload("Items.Product").
		First(&order, "id = ? AND user_id = ?", id, user.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// CancelOrder lets the owner cancel an order still in pending or
// processing.
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.First(&order, "id = ? AND user_id = ?", id, user.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	if !order.CanBeCancelled() {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("cannot cancel order that is already %s", order.Status))
	}

	order.Status = models.OrderStatusCancelled
	if err := h.db.Save(&order).Error; err != nil {
		return err
	}

	metrics.OrdersCancelled.Inc()
	return c.JSON(fiber.Map{"success": true, "data": order})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus is the admin-side status transition, restricted to the
// lifecycle table. Delivered and cancelled orders are immutable.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Status == "" {
		return fiber.NewError(fiber.StatusBadRequest, "status is required")
	}

	if !models.IsValidOrderStatus(req.Status) {
		return fiber.NewError(fiber.StatusBadRequest, "unknown status")
	}

	var order models.Order
	if err := h.db.First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	if models.IsFinalOrderStatus(order.Status) {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("cannot change status of a %s order", order.Status))
	}

	if !models.CanTransitionOrderStatus(order.Status, req.Status) {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("illegal status transition from %s to %s", order.Status, req.Status))
	}

	order.Status = req.Status
	if err := h.db.Save(&order).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}
