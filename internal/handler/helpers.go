package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/widya-labs/widya-go-api/internal/apperr"
	"github.com/widya-labs/widya-go-api/internal/service"
	"github.com/widya-labs/widya-go-api/internal/utils"
)

func parseUUIDParam(c *fiber.Ctx, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(key))
	if err != nil {
		return uuid.Nil, errors.New("invalid " + key)
	}
	return id, nil
}

// parseWindowDays reads the days query parameter, defaulting when absent and
// rejecting values outside 1..365.
func parseWindowDays(c *fiber.Ctx, fallback int) (int, error) {
	value := strings.TrimSpace(c.Query("days"))
	if value == "" {
		return fallback, nil
	}
	days, err := strconv.Atoi(value)
	if err != nil || days < 1 || days > 365 {
		return 0, errors.New("days must be between 1 and 365")
	}
	return days, nil
}

func actorFromContext(c *fiber.Ctx) service.Actor {
	actor := service.Actor{}
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uuid.UUID); ok {
			actor.ID = id
		}
	}
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			actor.Role = role
		}
	}
	return actor
}

// statusForKind maps failure classifications onto HTTP status codes.
func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindUnauthorized:
		return fiber.StatusUnauthorized
	case apperr.KindForbidden:
		return fiber.StatusForbidden
	case apperr.KindInvalidTransition, apperr.KindDuplicateSubmission:
		return fiber.StatusConflict
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindDependency:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func handleError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return utils.SendError(c, fiber.StatusBadRequest, string(apperr.KindValidation), validationErrors.Error())
	}

	kind := apperr.KindOf(err)
	status := statusForKind(kind)
	if status == fiber.StatusInternalServerError {
		logger.Error().Err(err).Msg("internal server error")
	}
	return utils.SendError(c, status, string(kind), apperr.MessageOf(err))
}
