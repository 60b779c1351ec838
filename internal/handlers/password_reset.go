package handlers

import (
	"crypto/subtle"
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Fahis7/horologie-backend/internal/metrics"
	"github.com/Fahis7/horologie-backend/internal/models"
	"github.com/Fahis7/horologie-backend/internal/services"
	"github.com/Fahis7/horologie-backend/internal/utils"
)

// PasswordResetHandler manages the one-time-code reset flow.
type PasswordResetHandler struct {
	db     *gorm.DB
	codes  *services.OTPStore
	mailer *services.MailService
}

// NewPasswordResetHandler constructs a PasswordResetHandler.
func NewPasswordResetHandler(db *gorm.DB, codes *services.OTPStore, mailer *services.MailService) *PasswordResetHandler {
	return &PasswordResetHandler{db: db, codes: codes, mailer: mailer}
}

type resetRequestBody struct {
	Email string `json:"email"`
}

// RequestReset issues a one-time code for the email. The response is the
// same whether or not an account exists: an attacker cannot use this
// endpoint to enumerate registered emails.
func (h *PasswordResetHandler) RequestReset(c *fiber.Ctx) error {
	var req resetRequestBody
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email is required")
	}

	var user models.User
	err := h.db.Where("email = ?", email).First(&user).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}

	if err == nil {
		code, issueErr := h.codes.Issue(c.Context(), email)
		if issueErr != nil {
			return issueErr
		}

		go func() {
			if sendErr := h.mailer.SendResetCode(email, code); sendErr != nil {
				log.Printf("[PasswordReset] failed to send code to %s: %v", email, sendErr)
			}
		}()
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "OTP sent successfully",
	})
}

type resetConfirmBody struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

// ConfirmReset redeems a code and sets the new password. The code is
// single-use: it is deleted the moment it matches, before the password
// write.
func (h *PasswordResetHandler) ConfirmReset(c *fiber.Ctx) error {
	var req resetConfirmBody
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email and code are required")
	}
	if len(req.NewPassword) < 8 {
		return fiber.NewError(fiber.StatusBadRequest, "password must be at least 8 characters")
	}

	stored, err := h.codes.Get(c.Context(), email)
	if err != nil {
		if errors.Is(err, services.ErrCodeNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "verification code expired or not found")
		}
		return err
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(req.Code)) != 1 {
		return fiber.NewError(fiber.StatusBadRequest, "incorrect verification code")
	}

	if err := h.codes.Delete(c.Context(), email); err != nil {
		log.Printf("[PasswordReset] failed to delete code for %s: %v", email, err)
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	if err := h.db.Model(&models.User{}).
		Where("email = ?", email).
		Update("password_hash", hash).Error; err != nil {
		return err
	}

	metrics.PasswordResets.Inc()
	return c.JSON(fiber.Map{
		"success": true,
		"message": "password has been reset successfully",
	})
}
