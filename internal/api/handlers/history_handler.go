package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/maheshrc27/postpilot/internal/app"
	"github.com/maheshrc27/postpilot/internal/models"
)

type HistoryHandler struct {
	app *app.App
}

func NewHistoryHandler(a *app.App) *HistoryHandler {
	return &HistoryHandler{app: a}
}

func (h *HistoryHandler) PostsHistory(c *fiber.Ctx) error {
	records, err := h.app.History().Recent(c.Context(), limitQuery(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to load post history",
		})
	}
	if records == nil {
		records = []*models.PostRecord{}
	}

	return c.JSON(fiber.Map{"posts": records})
}

func (h *HistoryHandler) CaptionLogs(c *fiber.Ctx) error {
	entries, err := h.app.CaptionLogs().Recent(c.Context(), limitQuery(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to load caption logs",
		})
	}
	if entries == nil {
		entries = []*models.CaptionLog{}
	}

	return c.JSON(fiber.Map{"captions": entries})
}
