package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/maheshrc27/postpilot/internal/app"
	"github.com/maheshrc27/postpilot/internal/transfer"
)

type SettingsHandler struct {
	app *app.App
}

func NewSettingsHandler(a *app.App) *SettingsHandler {
	return &SettingsHandler{app: a}
}

func (h *SettingsHandler) GetSettingsInfo(c *fiber.Ctx) error {
	snapshot, err := h.app.Settings().Snapshot(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to load settings",
		})
	}

	return c.JSON(snapshot)
}

// UpdateSettings persists overrides and rebuilds the pipeline so they take
// effect without a restart.
func (h *SettingsHandler) UpdateSettings(c *fiber.Ctx) error {
	var update transfer.SettingsUpdate
	if err := c.BodyParser(&update); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	if err := h.app.Settings().Update(c.Context(), &update); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to update settings",
		})
	}

	if err := h.app.Reload(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Settings saved but reload failed",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

// ReloadConfig rebuilds the pipeline from the current snapshot.
func (h *SettingsHandler) ReloadConfig(c *fiber.Ctx) error {
	if err := h.app.Reload(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Reload failed",
		})
	}

	return c.JSON(fiber.Map{"status": "reloaded"})
}
