package routes

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Fahis7/horologie-backend/internal/config"
	"github.com/Fahis7/horologie-backend/internal/handlers"
	"github.com/Fahis7/horologie-backend/internal/middleware"
	"github.com/Fahis7/horologie-backend/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, rdb *redis.Client, cfg *config.Config) {
	otpStore := services.NewOTPStore(rdb)
	mailService := services.NewMailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	googleService := services.NewGoogleService(cfg.GoogleUserInfoURL)
	stripeService := services.NewStripeService(cfg.StripeSecretKey, cfg.StripeCurrency)

	firebaseService, err := services.NewFirebaseService(context.Background(), cfg.FirebaseCredentialsFile)
	if err != nil {
		log.Printf("firebase initialization failed, phone login disabled: %v", err)
	}

	authHandler := handlers.NewAuthHandler(db, cfg, googleService, firebaseService)
	resetHandler := handlers.NewPasswordResetHandler(db, otpStore, mailService)
	productHandler := handlers.NewProductHandler(db)
	cartHandler := handlers.NewCartHandler(db)
	orderHandler := handlers.NewOrderHandler(db, cfg, stripeService, mailService)
	wishlistHandler := handlers.NewWishlistHandler(db)
	adminHandler := handlers.NewAdminHandler(db)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/google", authHandler.GoogleAuth)
	auth.Post("/phone", authHandler.PhoneAuth)
	auth.Post("/password-reset", resetHandler.RequestReset)
	auth.Post("/password-reset/confirm", resetHandler.ConfirmReset)

	// Public catalog reads
	products := api.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Get("/:id", productHandler.GetProduct)

	// Authenticated routes; the middleware re-runs the account gate on
	// every request.
	protected := api.Group("", middleware.AuthMiddleware(db, cfg))

	protected.Get("/profile", authHandler.Profile)

	cart := protected.Group("/cart")
	cart.Get("/", cartHandler.GetCart)
	cart.Post("/add", cartHandler.AddToCart)
	cart.Patch("/update/:itemID", cartHandler.UpdateItem)
	cart.Delete("/remove/:itemID", cartHandler.RemoveItem)
	cart.Delete("/clear", cartHandler.ClearCart)

	orders := protected.Group("/orders")
	orders.Post("/create-payment-intent", orderHandler.CreatePaymentIntent)
	orders.Post("/", orderHandler.Checkout)
	orders.Get("/", orderHandler.ListOrders)
	orders.Get("/:id", orderHandler.GetOrder)
	orders.Post("/:id/cancel", orderHandler.CancelOrder)

	wishlist := protected.Group("/wishlist")
	wishlist.Get("/", wishlistHandler.ListWishlist)
	wishlist.Post("/", wishlistHandler.AddToWishlist)
	wishlist.Delete("/remove/:productID", wishlistHandler.RemoveFromWishlist)

	// Admin routes
	admin := protected.Group("/admin", middleware.AdminMiddleware())
	admin.Get("/stats", adminHandler.DashboardStats)
	admin.Get("/users", adminHandler.ListUsers)
	admin.Patch("/users/:id/block", adminHandler.ToggleBlock)
	admin.Patch("/users/:id/role", adminHandler.SetRole)
	admin.Get("/orders", adminHandler.ListAllOrders)
	admin.Patch("/orders/:id/status", orderHandler.UpdateStatus)

	adminProducts := admin.Group("/products")
	adminProducts.Post("/", productHandler.CreateProduct)
	adminProducts.Put("/:id", productHandler.UpdateProduct)
	adminProducts.Delete("/:id", productHandler.DeleteProduct)
}
