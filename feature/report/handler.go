package report

import (
	"errors"

	"cycle-count/core/logger"
	"cycle-count/core/store"
	"cycle-count/feature/count/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for report export.
type Handler struct {
	exporter *Exporter
	store    store.Store
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(exporter *Exporter, st store.Store, logger *zap.Logger) *Handler {
	return &Handler{exporter: exporter, store: st, logger: logger}
}

// RegisterRoutes registers the report routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/report")
	group.Post("/export", h.HandleExport)
}

// HandleExport exports the active session's discrepancy table to object
// storage. The session must be signed off.
func (h *Handler) HandleExport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	payload, err := h.store.Load(c.Context())
	if err != nil {
		l.Error("failed to load session for export", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if payload == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no session"})
	}

	session, err := models.Decode(payload)
	if err != nil {
		l.Error("stored session unreadable", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	key, err := h.exporter.Export(c.Context(), session)
	if errors.Is(err, ErrNotCompleted) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("report export failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"object": key})
}
