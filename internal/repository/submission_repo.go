package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/widya-labs/widya-go-api/internal/apperr"
	"github.com/widya-labs/widya-go-api/internal/models"
)

// SubmissionFilter allows narrowing submission queries.
type SubmissionFilter struct {
	AssignmentID *uuid.UUID
	StudentID    *uuid.UUID
	Status       *string
	Since        *time.Time
}

// StatusCount pairs a ledger status with the number of rows holding it.
type StatusCount struct {
	Status string
	Count  int64
}

// ProofUpdate carries the fields recorded when a student hands in a proof.
type ProofUpdate struct {
	FileURL     string
	FileKind    string
	SubmittedAt time.Time
}

// ReviewUpdate carries the fields a teacher verdict writes to the ledger.
type ReviewUpdate struct {
	Status   string
	Feedback string
	Score    int
}

// SubmissionRepository defines data operations for the submission ledger.
// MarkSubmitted and ApplyReview are conditional updates: they only touch rows
// currently in an eligible status and report whether a row changed.
type SubmissionRepository interface {
	CreatePending(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (models.Submission, error)
	GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uuid.UUID) (models.Submission, error)
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	ListByAssignments(ctx context.Context, assignmentIDs []uuid.UUID) ([]models.Submission, error)
	MarkSubmitted(ctx context.Context, id uuid.UUID, update ProofUpdate) (bool, error)
	ApplyReview(ctx context.Context, id uuid.UUID, update ReviewUpdate) (bool, error)
	CountersByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]StatusCount, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// CreatePending inserts a PENDING row. A second row for the same
// (assignment, student) pair fails with KindDuplicateSubmission; the unique
// index is the arbiter.
func (r *submissionRepository) CreatePending(ctx context.Context, submission *models.Submission) error {
	submission.Status = models.SubmissionStatusPending
	if err := r.db.WithContext(ctx).Create(submission).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Wrap(apperr.KindDuplicateSubmission, "a submission already exists for this student", err)
		}
		return err
	}
	return nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).
		Preload("Assignment").
		First(&submission, "id = ?", id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uuid.UUID) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).
		Preload("Assignment").
		Where("assignment_id = ?", assignmentID).
		Where("student_id = ?", studentID).
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := r.db.WithContext(ctx).Model(&models.Submission{})

	if filter.AssignmentID != nil {
		query = query.Where("assignment_id = ?", *filter.AssignmentID)
	}

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if filter.Since != nil {
		query = query.Where("submitted_at >= ?", *filter.Since)
	}

	var submissions []models.Submission
	if err := query.Order("created_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) ListByAssignments(ctx context.Context, assignmentIDs []uuid.UUID) ([]models.Submission, error) {
	if len(assignmentIDs) == 0 {
		return []models.Submission{}, nil
	}

	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Where("assignment_id IN ?", assignmentIDs).
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

// MarkSubmitted moves a row to SUBMITTED if it is currently PENDING or
// REJECTED. Feedback from an earlier rejection is cleared. Returns false when
// the row exists but is not eligible, so concurrent submits cannot
// double-apply.
func (r *submissionRepository) MarkSubmitted(ctx context.Context, id uuid.UUID, update ProofUpdate) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ? AND status IN ?", id, []string{
			models.SubmissionStatusPending,
			models.SubmissionStatusRejected,
		}).
		Updates(map[string]interface{}{
			"status":       models.SubmissionStatusSubmitted,
			"file_url":     update.FileURL,
			"file_kind":    update.FileKind,
			"feedback":     "",
			"submitted_at": update.SubmittedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// ApplyReview moves a SUBMITTED row to VERIFIED or REJECTED. Returns false
// when the row is not awaiting review.
func (r *submissionRepository) ApplyReview(ctx context.Context, id uuid.UUID, update ReviewUpdate) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ? AND status = ?", id, models.SubmissionStatusSubmitted).
		Updates(map[string]interface{}{
			"status":   update.Status,
			"feedback": update.Feedback,
			"score":    update.Score,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *submissionRepository) CountersByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]StatusCount, error) {
	var counts []StatusCount
	if err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Select("status, COUNT(*) AS count").
		Where("assignment_id = ?", assignmentID).
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, err
	}

	return counts, nil
}
