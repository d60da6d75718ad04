package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/widya-labs/widya-go-api/internal/dto"
	"github.com/widya-labs/widya-go-api/internal/middleware"
	"github.com/widya-labs/widya-go-api/internal/service"
	"github.com/widya-labs/widya-go-api/internal/utils"
)

// AnalyticsHandler serves the rollup endpoints.
type AnalyticsHandler struct {
	service    service.AnalyticsService
	windowDays int
	logger     zerolog.Logger
}

// NewAnalyticsHandler builds an analytics handler instance.
func NewAnalyticsHandler(service service.AnalyticsService, windowDays int, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:    service,
		windowDays: windowDays,
		logger:     logger.With().Str("component", "analytics_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. Staff and
// school views carry their own capability gate on top of the group-level
// student gate.
func (h *AnalyticsHandler) Register(router fiber.Router) {
	router.Get("/activities/:activityId", middleware.RequireOperation(middleware.OpAnalyticsStaff), h.activityRollup)
	router.Get("/students/:studentId", h.studentRollup)
	router.Get("/teacher", middleware.RequireOperation(middleware.OpAnalyticsStaff), h.teacherOverview)
	router.Get("/schools/:schoolId", middleware.RequireOperation(middleware.OpAnalyticsSchool), h.schoolOverview)
}

func (h *AnalyticsHandler) activityRollup(c *fiber.Ctx) error {
	activityID := c.Params("activityId")
	if activityID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid activityId")
	}

	days, err := parseWindowDays(c, h.windowDays)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	}

	rollup, err := h.service.ActivityRollup(c.Context(), actorFromContext(c), activityID, days)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "activity analytics retrieved", rollup)
}

func (h *AnalyticsHandler) studentRollup(c *fiber.Ctx) error {
	studentID, err := parseUUIDParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	}

	days, err := parseWindowDays(c, h.windowDays)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	}

	query := dto.StudentRollupQuery{}
	if raw := c.Query("class_id"); raw != "" {
		classID, err := uuid.Parse(raw)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid class_id")
		}
		query.ClassID = &classID
	}
	if raw := strings.ToUpper(strings.TrimSpace(c.Query("status"))); raw != "" {
		query.Status = &raw
	}

	rollup, err := h.service.StudentRollup(c.Context(), actorFromContext(c), studentID, query, days)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "student analytics retrieved", rollup)
}

func (h *AnalyticsHandler) teacherOverview(c *fiber.Ctx) error {
	days, err := parseWindowDays(c, h.windowDays)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	}

	overview, err := h.service.TeacherOverview(c.Context(), actorFromContext(c), days)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "teacher analytics retrieved", overview)
}

func (h *AnalyticsHandler) schoolOverview(c *fiber.Ctx) error {
	schoolID, err := parseUUIDParam(c, "schoolId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	}

	days, err := parseWindowDays(c, h.windowDays)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	}

	overview, err := h.service.SchoolOverview(c.Context(), actorFromContext(c), schoolID, days)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "school analytics retrieved", overview)
}
