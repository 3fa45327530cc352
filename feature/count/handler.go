package count

import (
	"errors"

	"cycle-count/core/logger"
	"cycle-count/feature/count/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the count session.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the session routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/session")
	group.Get("/", h.HandleGetState)
	group.Post("/start", h.HandleStart)
	group.Post("/scan", h.HandleScan)
	group.Post("/quantity", h.HandleSetQuantity)
	group.Post("/submit", h.HandleSubmit)
	group.Post("/reconcile", h.HandleAutoReconcile)
	group.Post("/discrepancy/reason", h.HandleSetReason)
	group.Post("/advance", h.HandleAdvance)
	group.Post("/retreat", h.HandleRetreat)
	group.Post("/sign", h.HandleConfirmSignature)
}

type scanRequest struct {
	Identifier string `json:"identifier"`
}

type quantityRequest struct {
	SKU         string `json:"sku"`
	Count       int    `json:"count"`
	ConfirmZero bool   `json:"confirm_zero"`
}

type reasonRequest struct {
	Identifier string `json:"identifier"`
	Reason     string `json:"reason"`
	Note       string `json:"note"`
}

// HandleGetState returns the current session, progress, partition, and
// summary.
func (h *Handler) HandleGetState(c *fiber.Ctx) error {
	return c.JSON(h.service.State())
}

// HandleStart confirms the start-count prompt.
func (h *Handler) HandleStart(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	if err := h.service.Start(c.Context()); err != nil {
		return h.respondError(c, l, err)
	}
	return c.JSON(h.service.State())
}

// HandleScan applies a scan event carrying an identifier string.
func (h *Handler) HandleScan(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req scanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	outcome, err := h.service.Scan(c.Context(), req.Identifier)
	if err != nil {
		return h.respondError(c, l, err)
	}
	if outcome.Duplicate {
		l.Info("duplicate scan", zap.String("identifier", req.Identifier))
	}
	return c.JSON(outcome)
}

// HandleSetQuantity applies a manual quantity entry for an aggregate SKU.
func (h *Handler) HandleSetQuantity(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req quantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	outcome, err := h.service.SetQuantity(c.Context(), req.SKU, req.Count, req.ConfirmZero)
	if err != nil {
		return h.respondError(c, l, err)
	}
	return c.JSON(outcome)
}

// HandleSubmit ends counting and computes discrepancies.
func (h *Handler) HandleSubmit(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	if err := h.service.Submit(c.Context()); err != nil {
		return h.respondError(c, l, err)
	}
	return c.JSON(h.service.State())
}

// HandleAutoReconcile triggers the auto-reconciliation pass.
func (h *Handler) HandleAutoReconcile(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	result, err := h.service.AutoReconcile(c.Context())
	if err != nil {
		return h.respondError(c, l, err)
	}
	return c.JSON(fiber.Map{
		"applied":   result.Applied,
		"explained": result.Explained,
	})
}

// HandleSetReason classifies a discrepancy manually.
func (h *Handler) HandleSetReason(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req reasonRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	err := h.service.SetDiscrepancyReason(c.Context(), req.Identifier, models.Reason(req.Reason), req.Note)
	if err != nil {
		return h.respondError(c, l, err)
	}
	return c.JSON(h.service.State())
}

// HandleAdvance moves the session toward sign-off.
func (h *Handler) HandleAdvance(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	if err := h.service.Advance(c.Context()); err != nil {
		return h.respondError(c, l, err)
	}
	return c.JSON(h.service.State())
}

// HandleRetreat walks one lifecycle step back.
func (h *Handler) HandleRetreat(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	if err := h.service.Retreat(c.Context()); err != nil {
		return h.respondError(c, l, err)
	}
	return c.JSON(h.service.State())
}

// HandleConfirmSignature completes the session after signature capture.
func (h *Handler) HandleConfirmSignature(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	if err := h.service.ConfirmSignature(c.Context()); err != nil {
		return h.respondError(c, l, err)
	}
	return c.JSON(h.service.State())
}

// respondError maps engine errors onto HTTP statuses: validation errors are
// 400, refused transitions and wrong-state operations are 409 (with the
// blocking identifiers when available), everything else is 500.
func (h *Handler) respondError(c *fiber.Ctx, l *zap.Logger, err error) error {
	var transition *TransitionError
	if errors.As(err, &transition) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":    transition.Error(),
			"blocking": transition.Blocking,
		})
	}

	var state *StateError
	if errors.As(err, &state) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": state.Error()})
	}

	switch {
	case errors.Is(err, ErrEmptyIdentifier),
		errors.Is(err, ErrNegativeQuantity),
		errors.Is(err, ErrUnknownSKU),
		errors.Is(err, ErrInvalidReason),
		errors.Is(err, ErrUnknownDiscrepancy):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	l.Error("session operation failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
