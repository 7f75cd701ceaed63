package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Ahad-dev/fypify-api/internal/dto"
	"github.com/Ahad-dev/fypify-api/internal/service"
	"github.com/Ahad-dev/fypify-api/internal/utils"
)

// MarkingHandler wires supervisor and committee marking HTTP routes.
type MarkingHandler struct {
	service service.MarkingService
	logger  zerolog.Logger
}

// NewMarkingHandler constructs the handler.
func NewMarkingHandler(service service.MarkingService, logger zerolog.Logger) *MarkingHandler {
	return &MarkingHandler{
		service: service,
		logger:  logger.With().Str("component", "marking_handler").Logger(),
	}
}

// Register attaches marking endpoints to the router group.
func (h *MarkingHandler) Register(router fiber.Router) {
	router.Post("/:id/supervisor", h.submitSupervisor)
	router.Post("/:id/evaluation", h.submitEvaluation)
	router.Get("/:id/summary", h.summary)
}

func (h *MarkingHandler) submitSupervisor(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SupervisorMarksRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	marks, err := h.service.SubmitSupervisorMarks(c.Context(), id, payload, actorFromContext(c))
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "supervisor marks recorded", marks)
}

func (h *MarkingHandler) submitEvaluation(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.EvaluationMarksRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	marks, err := h.service.SubmitEvaluationMarks(c.Context(), id, payload, actorFromContext(c))
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "evaluation marks recorded", marks)
}

func (h *MarkingHandler) summary(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	summary, err := h.service.GetEvaluationSummary(c.Context(), id, actorFromContext(c))
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "evaluation summary retrieved", summary)
}
