package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
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

// AssignmentService orchestrates the assignment lifecycle: creation with
// pending-row fan-out, listing with counters, archiving, and roster backfill.
type AssignmentService interface {
	Create(ctx context.Context, actor Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	GetByID(ctx context.Context, actor Actor, id uuid.UUID) (dto.AssignmentResponse, error)
	ListByClass(ctx context.Context, actor Actor, classID uuid.UUID) ([]dto.AssignmentResponse, error)
	Archive(ctx context.Context, actor Actor, id uuid.UUID) error
	BackfillStudent(ctx context.Context, classID, studentID uuid.UUID) (int, error)
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	roster      repository.RosterRepository
	activities  repository.ActivityInfoRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentService constructs the assignment service.
func NewAssignmentService(
	assignments repository.AssignmentRepository,
	submissions repository.SubmissionRepository,
	roster repository.RosterRepository,
	activities repository.ActivityInfoRepository,
	validator *validator.Validate,
	logger zerolog.Logger,
) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		submissions: submissions,
		roster:      roster,
		activities:  activities,
		validator:   validator,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

// Create assigns an activity to a class and fans out one pending submission
// per roster member inside one transaction.
func (s *assignmentService) Create(ctx context.Context, actor Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	tracer := otel.Tracer("github.com/widya-labs/widya-go-api/internal/service/assignment")
	ctx, span := tracer.Start(ctx, "assignment.create")
	span.SetAttributes(
		attribute.String("assignment.activity_id", payload.ActivityID),
		attribute.String("assignment.class_id", payload.ClassID.String()),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.AssignmentResponse{}, apperr.Wrap(apperr.KindValidation, "invalid assignment payload", err)
	}

	class, err := s.roster.GetClass(ctx, payload.ClassID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, apperr.New(apperr.KindNotFound, "class not found")
		}
		span.RecordError(err)
		return dto.AssignmentResponse{}, apperr.Wrap(apperr.KindDependency, "roster lookup failed", err)
	}

	if err := s.authorizeClassStaff(actor, class); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if _, err := s.activities.Get(ctx, payload.ActivityID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, apperr.New(apperr.KindNotFound, "activity not found")
		}
		span.RecordError(err)
		return dto.AssignmentResponse{}, apperr.Wrap(apperr.KindDependency, "activity catalog lookup failed", err)
	}

	studentIDs, err := s.roster.ListStudentIDs(ctx, payload.ClassID)
	if err != nil {
		span.RecordError(err)
		return dto.AssignmentResponse{}, apperr.Wrap(apperr.KindDependency, "roster lookup failed", err)
	}

	assignment := models.Assignment{
		ActivityID: payload.ActivityID,
		ClassID:    payload.ClassID,
		AssignedBy: actor.ID,
		DueDate:    payload.DueDate,
		Status:     models.AssignmentStatusActive,
	}

	if err := s.assignments.CreateWithFanout(ctx, &assignment, studentIDs); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fanout_failed")
		return dto.AssignmentResponse{}, apperr.Wrap(apperr.KindInternal, "failed to create assignment", err)
	}

	s.logger.Info().
		Str("assignment_id", assignment.ID.String()).
		Str("class_id", assignment.ClassID.String()).
		Int("students", len(studentIDs)).
		Msg("assignment fanned out")

	observability.FanoutSize().Observe(float64(len(studentIDs)))
	span.SetAttributes(attribute.Int("assignment.fanout_size", len(studentIDs)))

	return dto.NewAssignmentResponse(assignment, int64(len(studentIDs)), 0), nil
}

func (s *assignmentService) GetByID(ctx context.Context, actor Actor, id uuid.UUID) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, apperr.New(apperr.KindNotFound, "assignment not found")
		}
		return dto.AssignmentResponse{}, err
	}

	if err := s.authorizeClassRead(ctx, actor, assignment.ClassID); err != nil {
		return dto.AssignmentResponse{}, err
	}

	return s.withCounters(ctx, assignment)
}

func (s *assignmentService) ListByClass(ctx context.Context, actor Actor, classID uuid.UUID) ([]dto.AssignmentResponse, error) {
	if err := s.authorizeClassRead(ctx, actor, classID); err != nil {
		return nil, err
	}

	assignments, err := s.assignments.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		response, err := s.withCounters(ctx, assignment)
		if err != nil {
			return nil, err
		}
		responses = append(responses, response)
	}

	return responses, nil
}

// Archive retires an assignment. Archived assignments stop accepting
// submissions but keep their ledger rows for analytics.
func (s *assignmentService) Archive(ctx context.Context, actor Actor, id uuid.UUID) error {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.KindNotFound, "assignment not found")
		}
		return err
	}

	class, err := s.roster.GetClass(ctx, assignment.ClassID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.KindNotFound, "class not found")
		}
		return apperr.Wrap(apperr.KindDependency, "roster lookup failed", err)
	}

	if err := s.authorizeClassStaff(actor, class); err != nil {
		return err
	}

	if !assignment.IsActive() {
		return apperr.New(apperr.KindInvalidTransition, "assignment already archived")
	}

	if err := s.assignments.UpdateStatus(ctx, id, models.AssignmentStatusArchived); err != nil {
		return err
	}

	s.logger.Info().Str("assignment_id", id.String()).Msg("assignment archived")
	return nil
}

// BackfillStudent creates pending rows for every active assignment of a class
// the student joined after fan-out. Existing rows are left alone. Returns the
// number of rows created.
func (s *assignmentService) BackfillStudent(ctx context.Context, classID, studentID uuid.UUID) (int, error) {
	assignments, err := s.assignments.ListActiveByClass(ctx, classID)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, assignment := range assignments {
		submission := models.Submission{
			AssignmentID: assignment.ID,
			StudentID:    studentID,
		}
		if err := s.submissions.CreatePending(ctx, &submission); err != nil {
			if apperr.IsKind(err, apperr.KindDuplicateSubmission) {
				continue
			}
			return created, err
		}
		created++
	}

	if created > 0 {
		s.logger.Info().
			Str("class_id", classID.String()).
			Str("student_id", studentID.String()).
			Int("created", created).
			Msg("backfilled pending submissions")
	}

	return created, nil
}

func (s *assignmentService) withCounters(ctx context.Context, assignment models.Assignment) (dto.AssignmentResponse, error) {
	counts, err := s.submissions.CountersByAssignment(ctx, assignment.ID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	var total, completed int64
	for _, count := range counts {
		total += count.Count
		if count.Status != models.SubmissionStatusPending {
			completed += count.Count
		}
	}

	return dto.NewAssignmentResponse(assignment, total, completed), nil
}

// authorizeClassStaff allows administrators everywhere and teachers on their
// own classes.
func (s *assignmentService) authorizeClassStaff(actor Actor, class models.Class) error {
	if actor.Role == RoleAdministrator {
		return nil
	}
	if actor.Role == RoleSchoolTeacher && class.TeacherID != nil && *class.TeacherID == actor.ID {
		return nil
	}
	return apperr.New(apperr.KindForbidden, "not allowed to manage this class")
}

// authorizeClassRead allows staff plus enrolled students.
func (s *assignmentService) authorizeClassRead(ctx context.Context, actor Actor, classID uuid.UUID) error {
	if actor.IsStaff() {
		return nil
	}

	member, err := s.roster.IsMember(ctx, classID, actor.ID)
	if err != nil {
		return apperr.Wrap(apperr.KindDependency, "roster lookup failed", err)
	}
	if !member {
		return apperr.New(apperr.KindForbidden, "not enrolled in this class")
	}

	return nil
}
