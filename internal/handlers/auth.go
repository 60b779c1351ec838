package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Fahis7/horologie-backend/internal/config"
	"github.com/Fahis7/horologie-backend/internal/metrics"
	"github.com/Fahis7/horologie-backend/internal/middleware"
	"github.com/Fahis7/horologie-backend/internal/models"
	"github.com/Fahis7/horologie-backend/internal/services"
	"github.com/Fahis7/horologie-backend/internal/utils"
)

// AuthHandler bundles dependencies for registration and every login path.
type AuthHandler struct {
	db       *gorm.DB
	cfg      *config.Config
	google   *services.GoogleService
	firebase *services.FirebaseService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, google *services.GoogleService, firebase *services.FirebaseService) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, google: google, firebase: firebase}
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Register creates a new password-credentialed account.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.FirstName == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}
	if len(req.Password) < 8 {
		return fiber.NewError(fiber.StatusBadRequest, "password must be at least 8 characters")
	}

	var existing models.User
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusConflict, "user already exists")
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	user := models.User{
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: passwordHash,
		IsActive:     true,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "user registered successfully",
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates an existing user with email and password.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var user models.User
	if err := h.db.Where("email = ?", strings.TrimSpace(strings.ToLower(req.Email))).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	if user.PasswordHash == "" || !utils.CheckPassword(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	if err := h.issueSessionGate(&user); err != nil {
		return err
	}

	metrics.Logins.WithLabelValues("password").Inc()
	return h.respondWithToken(c, &user)
}

type googleAuthRequest struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
	Credential  string `json:"credential"`
}

// GoogleAuth resolves a Google OAuth access token to an account, creating
// one on first login.
func (h *AuthHandler) GoogleAuth(c *fiber.Ctx) error {
	var req googleAuthRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	token := req.Token
	if token == "" {
		token = req.AccessToken
	}
	if token == "" {
		token = req.Credential
	}
	if token == "" {
		return fiber.NewError(fiber.StatusBadRequest, "token missing")
	}

	info, err := h.google.FetchUserInfo(token)
	if err != nil {
		return mapIdentityProviderError(err)
	}

	var user models.User
	err = h.db.Where(models.User{Email: info.Email}).
		Attrs(models.User{
			FirstName: info.GivenName,
			LastName:  info.FamilyName,
			IsActive:  true,
		}).
		FirstOrCreate(&user).Error
	if err != nil {
		return err
	}

	if err := h.issueSessionGate(&user); err != nil {
		return err
	}

	metrics.Logins.WithLabelValues("google").Inc()
	return h.respondWithToken(c, &user)
}

type phoneAuthRequest struct {
	IDToken string `json:"id_token"`
}

// PhoneAuth resolves a Firebase phone ID token to an account, creating one
// for a first-time phone login with a synthesized placeholder email.
func (h *AuthHandler) PhoneAuth(c *fiber.Ctx) error {
	var req phoneAuthRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.IDToken == "" {
		return fiber.NewError(fiber.StatusBadRequest, "no token provided")
	}

	phone, err := h.firebase.VerifyPhoneToken(c.Context(), req.IDToken)
	if err != nil {
		return mapIdentityProviderError(err)
	}

	var user models.User
	err = h.db.Where(models.User{PhoneNumber: &phone}).
		Attrs(models.User{
			Email:     fmt.Sprintf("%s@mobile.login", strings.TrimPrefix(phone, "+")),
			FirstName: "Mobile",
			LastName:  "User",
			IsActive:  true,
		}).
		FirstOrCreate(&user).Error
	if err != nil {
		return err
	}

	if err := h.issueSessionGate(&user); err != nil {
		return err
	}

	metrics.Logins.WithLabelValues("phone").Inc()
	return h.respondWithToken(c, &user)
}

// Profile returns the authenticated account, cart included. The middleware
// already re-ran the block gate, so reaching here means the session is
// still valid.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := h.db.Preload("Cart.Items.Product").First(&user, "id = ?", current.ID).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    userPayload(&user),
	})
}

// issueSessionGate enforces the account gate shared by every login path.
func (h *AuthHandler) issueSessionGate(user *models.User) error {
	if user.IsBlocked {
		return fiber.NewError(fiber.StatusForbidden, "your account has been blocked by the administrator")
	}
	if !user.IsActive {
		return fiber.NewError(fiber.StatusForbidden, "this account is inactive")
	}
	return nil
}

func (h *AuthHandler) respondWithToken(c *fiber.Ctx, user *models.User) error {
	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    userPayload(user),
	})
}

func userPayload(user *models.User) fiber.Map {
	payload := fiber.Map{
		"id":           user.ID,
		"email":        user.Email,
		"phone_number": user.PhoneNumber,
		"first_name":   user.FirstName,
		"last_name":    user.LastName,
		"is_staff":     user.IsStaff,
		"is_superuser": user.IsSuperuser,
		"is_active":    user.IsActive,
	}
	if user.Cart != nil {
		payload["cart"] = cartPayload(user.Cart)
	}
	return payload
}

func mapIdentityProviderError(err error) error {
	switch {
	case errors.Is(err, services.ErrUpstreamUnavailable):
		return fiber.NewError(fiber.StatusBadGateway, "identity provider unavailable")
	case errors.Is(err, services.ErrInvalidToken):
		return fiber.NewError(fiber.StatusBadRequest, "invalid identity token")
	default:
		return err
	}
}
