package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/widya-labs/widya-go-api/internal/dto"
	"github.com/widya-labs/widya-go-api/internal/middleware"
	"github.com/widya-labs/widya-go-api/internal/service"
	"github.com/widya-labs/widya-go-api/internal/utils"
)

// AssignmentHandler manages assignment endpoints.
type AssignmentHandler struct {
	service service.AssignmentService
	logger  zerolog.Logger
}

// NewAssignmentHandler builds an assignment handler instance.
func NewAssignmentHandler(service service.AssignmentService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. Write routes
// carry their own capability gate on top of the group-level read gate.
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Post("", middleware.RequireOperation(middleware.OpAssignmentManage), h.create)
	router.Get("/:id", h.get)
	router.Post("/:id/archive", middleware.RequireOperation(middleware.OpAssignmentManage), h.archive)
	router.Get("/class/:classId", h.listByClass)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	var payload dto.AssignmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
	}

	assignment, err := h.service.Create(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assignment created", assignment)
}

func (h *AssignmentHandler) get(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	}

	assignment, err := h.service.GetByID(c.Context(), actorFromContext(c), id)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assignment retrieved", assignment)
}

func (h *AssignmentHandler) archive(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	}

	if err := h.service.Archive(c.Context(), actorFromContext(c), id); err != nil {
		return handleError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assignment archived", nil)
}

func (h *AssignmentHandler) listByClass(c *fiber.Ctx) error {
	classID, err := parseUUIDParam(c, "classId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	}

	assignments, err := h.service.ListByClass(c.Context(), actorFromContext(c), classID)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}
