package handlers

import (
	"crypto/subtle"
	"time"

	"github.com/gofiber/fiber/v2"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/pkg/utils"
)

const sessionDuration = 24 * time.Hour

type AuthHandler struct {
	cfg *config.Config
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// Login exchanges the admin key for a session cookie.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	key := c.Query("key")
	if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(h.cfg.AdminAPIKey)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid admin key",
		})
	}

	token, err := utils.GenerateToken(h.cfg.SecretKey, "admin", sessionDuration)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to create session",
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(sessionDuration),
		HTTPOnly: true,
		Secure:   h.cfg.AppEnv == "production",
		SameSite: "Lax",
	})

	return c.JSON(fiber.Map{"status": "ok"})
}
