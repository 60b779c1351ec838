package handlers_test

import (
	"math"
	"net/http"
	"testing"

	"github.com/Fahis7/horologie-backend/internal/models"
)

func checkoutBody() map[string]interface{} {
	return map[string]interface{}{
		"full_name": "Ada Lovelace",
		"address":   "12 Analytical Lane",
		"city":      "London",
		"state":     "LDN",
		"zip_code":  "NW1",
		"phone":     "+441234567890",
	}
}

func TestCheckoutEmptyCartFails(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "buyer@example.com", "sup3r-secret", false)
	token := env.tokenFor(t, user)

	// No cart at all.
	resp := env.request(t, http.MethodPost, "/api/orders", token, checkoutBody())
	wantStatus(t, resp, http.StatusBadRequest)

	// An existing but empty cart fails the same way.
	resp = env.request(t, http.MethodGet, "/api/cart", token, nil)
	wantStatus(t, resp, http.StatusOK)

	resp = env.request(t, http.MethodPost, "/api/orders", token, checkoutBody())
	wantStatus(t, resp, http.StatusBadRequest)

	var count int64
	env.db.Model(&models.Order{}).Count(&count)
	if count != 0 {
		t.Errorf("orders after failed checkout = %d, want 0", count)
	}
}

func TestCheckoutCreatesOrderAtomically(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "buyer@example.com", "sup3r-secret", false)
	first := env.createProduct(t, "Chronograph", 100, 5)
	second := env.createProduct(t, "Dress Watch", 50.5, 3)
	token := env.tokenFor(t, user)

	for _, add := range []struct {
		product *models.Product
		qty     int
	}{{first, 2}, {second, 1}} {
		resp := env.request(t, http.MethodPost, "/api/cart/add", token, map[string]interface{}{
			"product_id": add.product.ID.String(),
			"quantity":   add.qty,
		})
		wantStatus(t, resp, http.StatusOK)
	}

	resp := env.request(t, http.MethodPost, "/api/orders", token, checkoutBody())
	wantStatus(t, resp, http.StatusCreated)

	var order models.Order
	if err := env.db.Preload("Items").First(&order, "user_id = ?", user.ID).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}

	if order.Status != models.OrderStatusPending {
		t.Errorf("status = %q, want pending", order.Status)
	}
	if math.Abs(order.TotalPrice-250.5) > 1e-9 {
		t.Errorf("total_price = %v, want 250.5", order.TotalPrice)
	}
	if len(order.Items) != 2 {
		t.Fatalf("order items = %d, want 2", len(order.Items))
	}

	// The cart is emptied, not deleted.
	var lines int64
	env.db.Model(&models.CartItem{}).Count(&lines)
	if lines != 0 {
		t.Errorf("cart lines after checkout = %d, want 0", lines)
	}
	var carts int64
	env.db.Model(&models.Cart{}).Where("user_id = ?", user.ID).Count(&carts)
	if carts != 1 {
		t.Errorf("cart rows after checkout = %d, want 1", carts)
	}

	// Stock was decremented inside the transaction.
	var p1, p2 models.Product
	env.db.First(&p1, "id = ?", first.ID)
	env.db.First(&p2, "id = ?", second.ID)
	if p1.Stock != 3 || p2.Stock != 2 {
		t.Errorf("stock after checkout = %d/%d, want 3/2", p1.Stock, p2.Stock)
	}
}

func TestCheckoutRollsBackWhenStockRanOut(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "buyer@example.com", "sup3r-secret", false)
	product := env.createProduct(t, "Limited Edition", 999, 3)
	token := env.tokenFor(t, user)

	resp := env.request(t, http.MethodPost, "/api/cart/add", token, map[string]interface{}{
		"product_id": product.ID.String(),
		"quantity":   3,
	})
	wantStatus(t, resp, http.StatusOK)

	// Stock drops between the advisory cart check and checkout.
	if err := env.db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("stock", 2).Error; err != nil {
		t.Fatalf("shrink stock: %v", err)
	}

	resp = env.request(t, http.MethodPost, "/api/orders", token, checkoutBody())
	wantStatus(t, resp, http.StatusBadRequest)

	// Nothing committed: no order, cart intact, stock untouched.
	var orders, items int64
	env.db.Model(&models.Order{}).Count(&orders)
	env.db.Model(&models.OrderItem{}).Count(&items)
	if orders != 0 || items != 0 {
		t.Errorf("orders/items after rollback = %d/%d, want 0/0", orders, items)
	}

	var lines int64
	env.db.Model(&models.CartItem{}).Count(&lines)
	if lines != 1 {
		t.Errorf("cart lines after rollback = %d, want 1", lines)
	}

	var p models.Product
	env.db.First(&p, "id = ?", product.ID)
	if p.Stock != 2 {
		t.Errorf("stock after rollback = %d, want 2", p.Stock)
	}
}

func TestOrderPricesFrozenAtCheckout(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "buyer@example.com", "sup3r-secret", false)
	product := env.createProduct(t, "Moonphase", 400, 5)
	token := env.tokenFor(t, user)

	resp := env.request(t, http.MethodPost, "/api/cart/add", token, map[string]interface{}{
		"product_id": product.ID.String(),
		"quantity":   1,
	})
	wantStatus(t, resp, http.StatusOK)

	resp = env.request(t, http.MethodPost, "/api/orders", token, checkoutBody())
	wantStatus(t, resp, http.StatusCreated)

	// Catalog price doubles after the sale.
	if err := env.db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("price", 800).Error; err != nil {
		t.Fatalf("reprice: %v", err)
	}

	var item models.OrderItem
	if err := env.db.First(&item, "product_id = ?", product.ID).Error; err != nil {
		t.Fatalf("load order item: %v", err)
	}
	if item.Price != 400 {
		t.Errorf("frozen price = %v, want 400", item.Price)
	}

	var order models.Order
	if err := env.db.First(&order, "user_id = ?", user.ID).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	if order.TotalPrice != 400 {
		t.Errorf("total_price = %v, want 400", order.TotalPrice)
	}
}

func TestCancelOrder(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "buyer@example.com", "sup3r-secret", false)
	token := env.tokenFor(t, user)

	pending := models.Order{UserID: user.ID, Status: models.OrderStatusPending, TotalPrice: 100}
	shipped := models.Order{UserID: user.ID, Status: models.OrderStatusShipped, TotalPrice: 100}
	if err := env.db.Create(&pending).Error; err != nil {
		t.Fatalf("seed pending order: %v", err)
	}
	if err := env.db.Create(&shipped).Error; err != nil {
		t.Fatalf("seed shipped order: %v", err)
	}

	resp := env.request(t, http.MethodPost, "/api/orders/"+pending.ID.String()+"/cancel", token, nil)
	wantStatus(t, resp, http.StatusOK)

	var cancelled models.Order
	env.db.First(&cancelled, "id = ?", pending.ID)
	if cancelled.Status != models.OrderStatusCancelled {
		t.Errorf("status = %q, want cancelled", cancelled.Status)
	}

	// Past the point of no return.
	resp = env.request(t, http.MethodPost, "/api/orders/"+shipped.ID.String()+"/cancel", token, nil)
	wantStatus(t, resp, http.StatusBadRequest)

	// A cancelled order cannot be cancelled again.
	resp = env.request(t, http.MethodPost, "/api/orders/"+pending.ID.String()+"/cancel", token, nil)
	wantStatus(t, resp, http.StatusBadRequest)
}

func TestCancelOtherUsersOrderReadsAsNotFound(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "sup3r-secret", false)
	intruder := env.createUser(t, "intruder@example.com", "sup3r-secret", false)

	order := models.Order{UserID: owner.ID, Status: models.OrderStatusPending, TotalPrice: 100}
	if err := env.db.Create(&order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}

	token := env.tokenFor(t, intruder)
	resp := env.request(t, http.MethodPost, "/api/orders/"+order.ID.String()+"/cancel", token, nil)
	wantStatus(t, resp, http.StatusNotFound)

	resp = env.request(t, http.MethodGet, "/api/orders/"+order.ID.String(), token, nil)
	wantStatus(t, resp, http.StatusNotFound)

	var untouched models.Order
	env.db.First(&untouched, "id = ?", order.ID)
	if untouched.Status != models.OrderStatusPending {
		t.Errorf("status = %q, want pending", untouched.Status)
	}
}

func TestAdminUpdateStatusFollowsLifecycle(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", "sup3r-secret", true)
	buyer := env.createUser(t, "buyer@example.com", "sup3r-secret", false)
	token := env.tokenFor(t, admin)

	order := models.Order{UserID: buyer.ID, Status: models.OrderStatusPending, TotalPrice: 100}
	if err := env.db.Create(&order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	statusPath := "/api/admin/orders/" + order.ID.String() + "/status"

	// pending -> processing -> shipped -> delivered walks the table.
	for _, next := range []string{
		models.OrderStatusProcessing, models.OrderStatusShipped, models.OrderStatusDelivered,
	} {
		resp := env.request(t, http.MethodPatch, statusPath, token, map[string]interface{}{"status": next})
		wantStatus(t, resp, http.StatusOK)
	}

	// Delivered is terminal for admins too.
	resp := env.request(t, http.MethodPatch, statusPath, token, map[string]interface{}{
		"status": models.OrderStatusProcessing,
	})
	wantStatus(t, resp, http.StatusBadRequest)
}

func TestAdminUpdateStatusRejectsIllegalMoves(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", "sup3r-secret", true)
	buyer := env.createUser(t, "buyer@example.com", "sup3r-secret", false)
	token := env.tokenFor(t, admin)

	order := models.Order{UserID: buyer.ID, Status: models.OrderStatusProcessing, TotalPrice: 100}
	if err := env.db.Create(&order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	statusPath := "/api/admin/orders/" + order.ID.String() + "/status"

	// processing cannot go back to pending or skip to delivered.
	for _, illegal := range []string{models.OrderStatusPending, models.OrderStatusDelivered} {
		resp := env.request(t, http.MethodPatch, statusPath, token, map[string]interface{}{"status": illegal})
		wantStatus(t, resp, http.StatusBadRequest)
	}

	// Unknown status names are rejected outright.
	resp := env.request(t, http.MethodPatch, statusPath, token, map[string]interface{}{"status": "misplaced"})
	wantStatus(t, resp, http.StatusBadRequest)

	var unchanged models.Order
	env.db.First(&unchanged, "id = ?", order.ID)
	if unchanged.Status != models.OrderStatusProcessing {
		t.Errorf("status = %q, want processing", unchanged.Status)
	}

	// A cancelled order is final.
	cancelled := models.Order{UserID: buyer.ID, Status: models.OrderStatusCancelled, TotalPrice: 50}
	if err := env.db.Create(&cancelled).Error; err != nil {
		t.Fatalf("seed cancelled order: %v", err)
	}
	resp = env.request(t, http.MethodPatch, "/api/admin/orders/"+cancelled.ID.String()+"/status", token,
		map[string]interface{}{"status": models.OrderStatusProcessing})
	wantStatus(t, resp, http.StatusBadRequest)
}

func TestListOrdersReturnsOnlyOwn(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.createUser(t, "buyer@example.com", "sup3r-secret", false)
	other := env.createUser(t, "other@example.com", "sup3r-secret", false)
	token := env.tokenFor(t, buyer)

	for _, o := range []models.Order{
		{UserID: buyer.ID, Status: models.OrderStatusPending, TotalPrice: 10},
		{UserID: buyer.ID, Status: models.OrderStatusShipped, TotalPrice: 20},
		{UserID: other.ID, Status: models.OrderStatusPending, TotalPrice: 30},
	} {
		order := o
		if err := env.db.Create(&order).Error; err != nil {
			t.Fatalf("seed order: %v", err)
		}
	}

	resp := env.request(t, http.MethodGet, "/api/orders", token, nil)
	wantStatus(t, resp, http.StatusOK)

	payload := decodeJSON(t, resp)
	data, ok := payload["data"].([]interface{})
	if !ok {
		t.Fatalf("missing data in payload: %v", payload)
	}
	if len(data) != 2 {
		t.Errorf("listed orders = %d, want 2", len(data))
	}
}
