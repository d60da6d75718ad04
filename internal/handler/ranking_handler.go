package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/widya-labs/widya-go-api/internal/service"
	"github.com/widya-labs/widya-go-api/internal/utils"
)

// RankingHandler serves class and teacher leaderboards.
type RankingHandler struct {
	service    service.RankingService
	windowDays int
	logger     zerolog.Logger
}

// NewRankingHandler builds a ranking handler instance.
func NewRankingHandler(service service.RankingService, windowDays int, logger zerolog.Logger) *RankingHandler {
	return &RankingHandler{
		service:    service,
		windowDays: windowDays,
		logger:     logger.With().Str("component", "ranking_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *RankingHandler) Register(router fiber.Router) {
	router.Get("/class/:classId", h.rankClass)
	router.Get("/teacher", h.rankTeacherStudents)
}

func (h *RankingHandler) rankClass(c *fiber.Ctx) error {
	classID, err := parseUUIDParam(c, "classId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	}

	days, err := parseWindowDays(c, h.windowDays)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	}

	ranking, err := h.service.RankClass(c.Context(), actorFromContext(c), classID, days)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "ranking retrieved", ranking)
}

func (h *RankingHandler) rankTeacherStudents(c *fiber.Ctx) error {
	days, err := parseWindowDays(c, h.windowDays)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	}

	ranking, err := h.service.RankTeacherStudents(c.Context(), actorFromContext(c), days)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "ranking retrieved", ranking)
}
