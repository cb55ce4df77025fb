package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/maheshrc27/postpilot/internal/app"
	"github.com/maheshrc27/postpilot/internal/queue"
)

type PipelineHandler struct {
	app *app.App
}

func NewPipelineHandler(a *app.App) *PipelineHandler {
	return &PipelineHandler{app: a}
}

func (h *PipelineHandler) Health(c *fiber.Ctx) error {
	cfg := h.app.Config()
	return c.JSON(fiber.Map{
		"status":           "ok",
		"pipeline_enabled": cfg.PipelineEnabled,
		"dry_run":          cfg.DryRun,
		"running":          h.app.Pipeline().Running(),
		"platforms":        cfg.Platforms,
	})
}

// Run enqueues one cycle and returns immediately.
func (h *PipelineHandler) Run(c *fiber.Ctx) error {
	if err := queue.EnqueueRun(h.app.Client(), "manual"); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to enqueue pipeline run",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "queued"})
}

func (h *PipelineHandler) ScheduleOverview(c *fiber.Ctx) error {
	return c.JSON(h.app.Scheduler().Overview())
}
