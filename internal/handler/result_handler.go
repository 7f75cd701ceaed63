package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Ahad-dev/fypify-api/internal/service"
	"github.com/Ahad-dev/fypify-api/internal/utils"
)

// ResultHandler wires final result HTTP routes.
type ResultHandler struct {
	service service.ResultService
	logger  zerolog.Logger
}

// NewResultHandler constructs the handler.
func NewResultHandler(service service.ResultService, logger zerolog.Logger) *ResultHandler {
	return &ResultHandler{
		service: service,
		logger:  logger.With().Str("component", "result_handler").Logger(),
	}
}

// Register attaches result endpoints to the router group.
func (h *ResultHandler) Register(router fiber.Router) {
	router.Post("/:projectID/compute", h.compute)
	router.Post("/:projectID/release", h.release)
	router.Get("/:projectID", h.get)
}

func (h *ResultHandler) compute(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "projectID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	outcome, err := h.service.ComputeIfReady(c.Context(), projectID, actorFromContext(c))
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	// Not-ready is a legitimate outcome, reported as 200 with the blocker list.
	if !outcome.Ready {
		return utils.SendSuccess(c, "result not ready", outcome)
	}

	return utils.SendSuccess(c, "result computed", outcome)
}

func (h *ResultHandler) release(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "projectID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.Release(c.Context(), projectID, actorFromContext(c))
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "result released", result)
}

func (h *ResultHandler) get(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "projectID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.GetReleased(c.Context(), projectID, actorFromContext(c))
	if err != nil {
		return respondServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "result retrieved", result)
}
