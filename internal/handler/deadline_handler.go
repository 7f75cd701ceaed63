package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Ahad-dev/fypify-api/internal/dto"
	"github.com/Ahad-dev/fypify-api/internal/service"
	"github.com/Ahad-dev/fypify-api/internal/utils"
)

// DeadlineHandler wires deadline scheduling HTTP routes.
type DeadlineHandler struct {
	service service.DeadlineService
	logger  zerolog.Logger
}

// NewDeadlineHandler constructs the handler.
func NewDeadlineHandler(service service.DeadlineService, logger zerolog.Logger) *DeadlineHandler {
	return &DeadlineHandler{
		service: service,
		logger:  logger.With().Str("component", "deadline_handler").Logger(),
	}
}

// Register attaches deadline endpoints to the router group.
func (h *DeadlineHandler) Register(router fiber.Router) {
	router.Get("/batches/:batchID", h.list)
	router.Put("/batches/:batchID", h.set)
	router.Post("/scan", h.scan)
}

func (h *DeadlineHandler) list(c *fiber.Ctx) error {
	batchID, err := parseUintParam(c, "batchID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	deadlines, err := h.service.ListByBatch(c.Context(), batchID)
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "deadlines retrieved", deadlines)
}

func (h *DeadlineHandler) set(c *fiber.Ctx) error {
	batchID, err := parseUintParam(c, "batchID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SetDeadlinesRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	deadlines, err := h.service.SetDeadlines(c.Context(), batchID, payload, actorFromContext(c))
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "deadlines set", deadlines)
}

func (h *DeadlineHandler) scan(c *fiber.Ctx) error {
	outcome, err := h.service.ScanApproaching(c.Context(), actorFromContext(c))
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "deadline scan complete", outcome)
}
