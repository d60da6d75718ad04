package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/widya-labs/widya-go-api/internal/dto"
	"github.com/widya-labs/widya-go-api/internal/middleware"
	"github.com/widya-labs/widya-go-api/internal/service"
	"github.com/widya-labs/widya-go-api/internal/utils"
)

// CommentHandler manages the comment thread endpoints.
type CommentHandler struct {
	service service.CommentService
	logger  zerolog.Logger
}

// NewCommentHandler builds a comment handler instance.
func NewCommentHandler(service service.CommentService, logger zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		service: service,
		logger:  logger.With().Str("component", "comment_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *CommentHandler) Register(router fiber.Router) {
	router.Get("/:submissionId/comments", h.list)
	router.Post("/:submissionId/comments", middleware.RequireOperation(middleware.OpCommentWrite), h.create)
}

func (h *CommentHandler) create(c *fiber.Ctx) error {
	submissionID, err := parseUUIDParam(c, "submissionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	}

	var payload dto.CommentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
	}

	comment, err := h.service.Create(c.Context(), actorFromContext(c), submissionID, payload)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "comment created", comment)
}

func (h *CommentHandler) list(c *fiber.Ctx) error {
	submissionID, err := parseUUIDParam(c, "submissionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	}

	comments, err := h.service.ListBySubmission(c.Context(), actorFromContext(c), submissionID)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "comments retrieved", comments)
}
