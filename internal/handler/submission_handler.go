package handler

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/widya-labs/widya-go-api/internal/dto"
	"github.com/widya-labs/widya-go-api/internal/middleware"
	"github.com/widya-labs/widya-go-api/internal/service"
	"github.com/widya-labs/widya-go-api/internal/utils"
)

const maxProofSize = 32 << 20 // 32 MiB

// SubmissionHandler manages submission ledger endpoints.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. Write routes
// carry their own capability gate on top of the group-level read gate.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Get("/mine", h.listMine)
	router.Get("/:id", h.get)
	router.Post("/:id/proof", middleware.RequireOperation(middleware.OpSubmissionSubmit), h.submitProof)
	router.Post("/:id/review", middleware.RequireOperation(middleware.OpSubmissionReview), h.review)
	router.Get("/assignment/:assignmentId", h.listByAssignment)
	router.Get("/assignment/:assignmentId/student/:studentId", h.getForStudent)
}

func (h *SubmissionHandler) get(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	}

	submission, err := h.service.GetByID(c.Context(), actorFromContext(c), id)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "submission retrieved", submission)
}

func (h *SubmissionHandler) submitProof(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "file is required")
	}
	if file.Size > maxProofSize {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "file too large")
	}

	opened, err := file.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "could not read file")
	}
	defer opened.Close()

	data, err := io.ReadAll(opened)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "could not read file")
	}

	submission, err := h.service.SubmitProof(c.Context(), actorFromContext(c), id, service.Upload{
		FileName:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "proof submitted", submission)
}

func (h *SubmissionHandler) review(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	}

	var payload dto.SubmissionReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
	}

	submission, err := h.service.Review(c.Context(), actorFromContext(c), id, payload)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "submission reviewed", submission)
}

func (h *SubmissionHandler) listByAssignment(c *fiber.Ctx) error {
	assignmentID, err := parseUUIDParam(c, "assignmentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	}

	submissions, err := h.service.ListByAssignment(c.Context(), actorFromContext(c), assignmentID)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) getForStudent(c *fiber.Ctx) error {
	assignmentID, err := parseUUIDParam(c, "assignmentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	}

	studentID, err := parseUUIDParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	}

	submission, err := h.service.GetForStudent(c.Context(), actorFromContext(c), assignmentID, studentID)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "submission retrieved", submission)
}

func (h *SubmissionHandler) listMine(c *fiber.Ctx) error {
	submissions, err := h.service.ListMine(c.Context(), actorFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}
