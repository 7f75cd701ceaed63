package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Ahad-dev/fypify-api/internal/middleware"
	"github.com/Ahad-dev/fypify-api/internal/models"
	"github.com/Ahad-dev/fypify-api/internal/service"
	"github.com/Ahad-dev/fypify-api/internal/utils"
)

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := c.Params(name)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

func actorFromContext(c *fiber.Ctx) service.Actor {
	return service.Actor{
		ID:   userIDFromContext(c),
		Role: models.ParseRole(userRoleFromContext(c)),
	}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Anything outside the taxonomy is an internal error and gets logged.
func respondServiceError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var (
		validationErrors validator.ValidationErrors
		validationErr    *service.ValidationError
		unauthorizedErr  *service.UnauthorizedError
		invalidStateErr  *service.InvalidStateError
		conflictErr      *service.SchedulingConflictError
	)

	switch {
	case errors.As(err, &validationErrors):
		fields := make([]utils.FieldError, 0, len(validationErrors))
		for _, fe := range validationErrors {
			fields = append(fields, utils.FieldError{
				Field:  strings.ToLower(fe.Field()),
				Reason: "failed " + fe.Tag() + " validation",
			})
		}
		return utils.SendValidationError(c, "validation failed", fields)
	case errors.As(err, &validationErr):
		return utils.SendValidationError(c, validationErr.Error(), []utils.FieldError{
			{Field: validationErr.Field, Reason: validationErr.Reason},
		})
	case errors.As(err, &unauthorizedErr):
		return utils.SendError(c, fiber.StatusForbidden, unauthorizedErr.Error())
	case errors.As(err, &invalidStateErr):
		return utils.SendError(c, fiber.StatusConflict, invalidStateErr.Error())
	case errors.As(err, &conflictErr):
		return utils.SendError(c, fiber.StatusConflict, conflictErr.Error())
	case errors.Is(err, service.ErrMarksFinalized):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrEvaluationComplete):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case service.IsNotFound(err):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	default:
		requestLogger(logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
