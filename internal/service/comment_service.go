package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/widya-labs/widya-go-api/internal/apperr"
	"github.com/widya-labs/widya-go-api/internal/dto"
	"github.com/widya-labs/widya-go-api/internal/models"
	"github.com/widya-labs/widya-go-api/internal/repository"
)

// CommentService manages the append-only discussion thread on a submission.
type CommentService interface {
	Create(ctx context.Context, actor Actor, submissionID uuid.UUID, payload dto.CommentCreateRequest) (dto.CommentResponse, error)
	ListBySubmission(ctx context.Context, actor Actor, submissionID uuid.UUID) ([]dto.CommentResponse, error)
}

type commentService struct {
	comments    repository.CommentRepository
	submissions repository.SubmissionRepository
	roster      repository.RosterRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
}

// NewCommentService constructs the comment service.
func NewCommentService(
	comments repository.CommentRepository,
	submissions repository.SubmissionRepository,
	roster repository.RosterRepository,
	validator *validator.Validate,
	logger zerolog.Logger,
) CommentService {
	return &commentService{
		comments:    comments,
		submissions: submissions,
		roster:      roster,
		validator:   validator,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "comment_service").Logger(),
	}
}

// Create appends a comment. The author column depends on the actor role:
// students write student comments on their own submission, staff write staff
// comments on submissions in classes they can review.
func (s *commentService) Create(ctx context.Context, actor Actor, submissionID uuid.UUID, payload dto.CommentCreateRequest) (dto.CommentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CommentResponse{}, apperr.Wrap(apperr.KindValidation, "invalid comment payload", err)
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CommentResponse{}, apperr.New(apperr.KindNotFound, "submission not found")
		}
		return dto.CommentResponse{}, err
	}

	comment := models.Comment{
		SubmissionID: submissionID,
		Body:         s.sanitizer.Sanitize(strings.TrimSpace(payload.Body)),
	}
	if comment.Body == "" {
		return dto.CommentResponse{}, apperr.New(apperr.KindValidation, "comment body must not be empty")
	}

	switch {
	case actor.IsStaff():
		if err := s.authorizeStaff(ctx, actor, submission.Assignment.ClassID); err != nil {
			return dto.CommentResponse{}, err
		}
		staffID := actor.ID
		comment.StaffID = &staffID
	default:
		if submission.StudentID != actor.ID {
			return dto.CommentResponse{}, apperr.New(apperr.KindForbidden, "submission belongs to another student")
		}
		studentID := actor.ID
		comment.StudentID = &studentID
	}

	if err := s.comments.Create(ctx, &comment); err != nil {
		return dto.CommentResponse{}, err
	}

	return dto.NewCommentResponse(comment), nil
}

func (s *commentService) ListBySubmission(ctx context.Context, actor Actor, submissionID uuid.UUID) ([]dto.CommentResponse, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "submission not found")
		}
		return nil, err
	}

	if actor.IsStaff() {
		if err := s.authorizeStaff(ctx, actor, submission.Assignment.ClassID); err != nil {
			return nil, err
		}
	} else if submission.StudentID != actor.ID {
		return nil, apperr.New(apperr.KindForbidden, "submission belongs to another student")
	}

	comments, err := s.comments.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	return dto.NewCommentResponseSlice(comments), nil
}

func (s *commentService) authorizeStaff(ctx context.Context, actor Actor, classID uuid.UUID) error {
	if actor.Role == RoleAdministrator {
		return nil
	}

	class, err := s.roster.GetClass(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.KindNotFound, "class not found")
		}
		return apperr.Wrap(apperr.KindDependency, "roster lookup failed", err)
	}

	if class.TeacherID == nil || *class.TeacherID != actor.ID {
		return apperr.New(apperr.KindForbidden, "not the teacher of this class")
	}

	return nil
}
