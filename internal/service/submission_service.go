package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/widya-labs/widya-go-api/internal/apperr"
	"github.com/widya-labs/widya-go-api/internal/dto"
	"github.com/widya-labs/widya-go-api/internal/models"
	"github.com/widya-labs/widya-go-api/internal/observability"
	"github.com/widya-labs/widya-go-api/internal/repository"
)

// SubmissionService owns the ledger transitions: students submit proofs,
// teachers verify or reject them.
type SubmissionService interface {
	SubmitProof(ctx context.Context, actor Actor, submissionID uuid.UUID, upload Upload) (dto.SubmissionResponse, error)
	Review(ctx context.Context, actor Actor, submissionID uuid.UUID, payload dto.SubmissionReviewRequest) (dto.SubmissionResponse, error)
	GetByID(ctx context.Context, actor Actor, submissionID uuid.UUID) (dto.SubmissionResponse, error)
	GetForStudent(ctx context.Context, actor Actor, assignmentID, studentID uuid.UUID) (dto.SubmissionResponse, error)
	ListByAssignment(ctx context.Context, actor Actor, assignmentID uuid.UUID) ([]dto.SubmissionResponse, error)
	ListMine(ctx context.Context, actor Actor) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	roster      repository.RosterRepository
	uploader    FileUploader
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs the submission service.
func NewSubmissionService(
	submissions repository.SubmissionRepository,
	assignments repository.AssignmentRepository,
	roster repository.RosterRepository,
	uploader FileUploader,
	validator *validator.Validate,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissions: submissions,
		assignments: assignments,
		roster:      roster,
		uploader:    uploader,
		validator:   validator,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

// SubmitProof uploads the proof file and moves the student's ledger row to
// SUBMITTED. Only the owning student may submit, only while the assignment is
// active, and only from PENDING or REJECTED.
func (s *submissionService) SubmitProof(ctx context.Context, actor Actor, submissionID uuid.UUID, upload Upload) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/widya-labs/widya-go-api/internal/service/submission")
	ctx, span := tracer.Start(ctx, "submission.submit_proof")
	span.SetAttributes(attribute.String("submission.id", submissionID.String()))
	defer span.End()

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, apperr.New(apperr.KindNotFound, "submission not found")
		}
		return dto.SubmissionResponse{}, err
	}

	if submission.StudentID != actor.ID {
		return dto.SubmissionResponse{}, apperr.New(apperr.KindForbidden, "submission belongs to another student")
	}

	if !submission.Assignment.IsActive() {
		return dto.SubmissionResponse{}, apperr.New(apperr.KindInvalidTransition, "assignment no longer accepts submissions")
	}

	if !submission.CanSubmit() {
		return dto.SubmissionResponse{}, apperr.New(apperr.KindInvalidTransition, "submission already handed in")
	}

	if len(upload.Data) == 0 {
		return dto.SubmissionResponse{}, apperr.New(apperr.KindValidation, "proof file must not be empty")
	}

	kind := detectFileKind(upload.Data)
	fileURL, err := s.uploader.Upload(ctx, upload.FileName, bytes.NewReader(upload.Data))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload_failed")
		return dto.SubmissionResponse{}, apperr.Wrap(apperr.KindDependency, "proof upload failed", err)
	}

	changed, err := s.submissions.MarkSubmitted(ctx, submissionID, repository.ProofUpdate{
		FileURL:     fileURL,
		FileKind:    kind,
		SubmittedAt: s.now().UTC(),
	})
	if err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}
	if !changed {
		// Someone else won the race between our read and the update.
		return dto.SubmissionResponse{}, apperr.New(apperr.KindInvalidTransition, "submission already handed in")
	}

	observability.Transitions().WithLabelValues(models.SubmissionStatusSubmitted).Inc()
	s.logger.Info().
		Str("submission_id", submissionID.String()).
		Str("file_kind", kind).
		Msg("proof submitted")

	updated, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	span.SetAttributes(attribute.String("submission.file_kind", kind))
	return dto.NewSubmissionResponse(updated), nil
}

// Review applies a teacher verdict to a SUBMITTED row. VERIFIED is terminal
// and records the score; REJECTED reopens the row for resubmission.
func (s *submissionService) Review(ctx context.Context, actor Actor, submissionID uuid.UUID, payload dto.SubmissionReviewRequest) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/widya-labs/widya-go-api/internal/service/submission")
	ctx, span := tracer.Start(ctx, "submission.review")
	span.SetAttributes(
		attribute.String("submission.id", submissionID.String()),
		attribute.String("review.verdict", payload.Verdict),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, apperr.Wrap(apperr.KindValidation, "invalid review payload", err)
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, apperr.New(apperr.KindNotFound, "submission not found")
		}
		return dto.SubmissionResponse{}, err
	}

	if err := s.authorizeReviewer(ctx, actor, submission.Assignment.ClassID); err != nil {
		return dto.SubmissionResponse{}, err
	}

	score := 0
	if payload.Verdict == models.SubmissionStatusVerified && payload.Score != nil {
		score = *payload.Score
	}

	changed, err := s.submissions.ApplyReview(ctx, submissionID, repository.ReviewUpdate{
		Status:   payload.Verdict,
		Feedback: s.sanitizer.Sanitize(strings.TrimSpace(payload.Feedback)),
		Score:    score,
	})
	if err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}
	if !changed {
		return dto.SubmissionResponse{}, apperr.New(apperr.KindInvalidTransition, "submission is not awaiting review")
	}

	observability.Transitions().WithLabelValues(payload.Verdict).Inc()
	s.logger.Info().
		Str("submission_id", submissionID.String()).
		Str("verdict", payload.Verdict).
		Msg("submission reviewed")

	updated, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(updated), nil
}

func (s *submissionService) GetByID(ctx context.Context, actor Actor, submissionID uuid.UUID) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, apperr.New(apperr.KindNotFound, "submission not found")
		}
		return dto.SubmissionResponse{}, err
	}

	if !actor.IsStaff() && submission.StudentID != actor.ID {
		return dto.SubmissionResponse{}, apperr.New(apperr.KindForbidden, "submission belongs to another student")
	}

	return dto.NewSubmissionResponse(submission), nil
}

// GetForStudent looks up the ledger row for an (assignment, student) pair.
func (s *submissionService) GetForStudent(ctx context.Context, actor Actor, assignmentID, studentID uuid.UUID) (dto.SubmissionResponse, error) {
	if !actor.IsStaff() && studentID != actor.ID {
		return dto.SubmissionResponse{}, apperr.New(apperr.KindForbidden, "submission belongs to another student")
	}

	submission, err := s.submissions.GetByAssignmentAndStudent(ctx, assignmentID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, apperr.New(apperr.KindNotFound, "submission not found")
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) ListByAssignment(ctx context.Context, actor Actor, assignmentID uuid.UUID) ([]dto.SubmissionResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "assignment not found")
		}
		return nil, err
	}

	if err := s.authorizeReviewer(ctx, actor, assignment.ClassID); err != nil {
		return nil, err
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{AssignmentID: &assignmentID})
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) ListMine(ctx context.Context, actor Actor) ([]dto.SubmissionResponse, error) {
	studentID := actor.ID
	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{StudentID: &studentID})
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

// authorizeReviewer allows administrators everywhere and teachers on classes
// they own.
func (s *submissionService) authorizeReviewer(ctx context.Context, actor Actor, classID uuid.UUID) error {
	if actor.Role == RoleAdministrator {
		return nil
	}
	if actor.Role != RoleSchoolTeacher {
		return apperr.New(apperr.KindForbidden, "only staff can review submissions")
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

// detectFileKind sniffs the proof content and maps it to the coarse kinds the
// ledger stores.
func detectFileKind(data []byte) string {
	kind := mimetype.Detect(data)
	switch {
	case strings.HasPrefix(kind.String(), "image/"):
		return models.FileKindImage
	case strings.HasPrefix(kind.String(), "video/"):
		return models.FileKindVideo
	default:
		return models.FileKindOther
	}
}
