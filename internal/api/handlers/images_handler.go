package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/maheshrc27/postpilot/internal/app"
	"github.com/maheshrc27/postpilot/internal/transfer"
)

type ImagesHandler struct {
	app *app.App
}

func NewImagesHandler(a *app.App) *ImagesHandler {
	return &ImagesHandler{app: a}
}

func (h *ImagesHandler) ReadyImages(c *fiber.Ctx) error {
	images, err := h.app.Images().ListReady(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list ready images",
		})
	}

	return c.JSON(fiber.Map{"images": images})
}

func (h *ImagesHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing file field",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to open upload",
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to read upload",
		})
	}

	filename, err := h.app.Images().SaveUpload(fileHeader.Filename, data)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"filename": filename})
}

// Generate forces one cloud generation.
func (h *ImagesHandler) Generate(c *fiber.Ctx) error {
	asset := h.app.Images().Generate(c.Context())
	return c.JSON(asset)
}

// CaptionPreview drafts a caption without logging it.
func (h *ImagesHandler) CaptionPreview(c *fiber.Ctx) error {
	var req transfer.CaptionPreview
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}
	if req.ImageName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "image_name is required",
		})
	}

	return c.JSON(h.app.Captions().Preview(c.Context(), req.ImageName, req.Style))
}
