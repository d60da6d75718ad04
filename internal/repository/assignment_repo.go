package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/widya-labs/widya-go-api/internal/models"
)

// AssignmentRepository defines persistence operations for assignments.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	CreateWithFanout(ctx context.Context, assignment *models.Assignment, studentIDs []uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (models.Assignment, error)
	ListByClass(ctx context.Context, classID uuid.UUID) ([]models.Assignment, error)
	ListActiveByClass(ctx context.Context, classID uuid.UUID) ([]models.Assignment, error)
	ListByActivity(ctx context.Context, activityID string) ([]models.Assignment, error)
	ListByClasses(ctx context.Context, classIDs []uuid.UUID) ([]models.Assignment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

// CreateWithFanout persists the assignment and one pending submission per
// roster member in a single transaction. Either everything lands or nothing
// does.
func (r *assignmentRepository) CreateWithFanout(ctx context.Context, assignment *models.Assignment, studentIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(assignment).Error; err != nil {
			return err
		}

		if len(studentIDs) == 0 {
			return nil
		}

		submissions := make([]models.Submission, 0, len(studentIDs))
		for _, studentID := range studentIDs {
			submissions = append(submissions, models.Submission{
				AssignmentID: assignment.ID,
				StudentID:    studentID,
				Status:       models.SubmissionStatusPending,
			})
		}

		return tx.Create(&submissions).Error
	})
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).First(&assignment, "id = ?", id).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) ListByClass(ctx context.Context, classID uuid.UUID) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("created_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) ListActiveByClass(ctx context.Context, classID uuid.UUID) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.db.WithContext(ctx).
		Where("class_id = ? AND status = ?", classID, models.AssignmentStatusActive).
		Order("created_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) ListByActivity(ctx context.Context, activityID string) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Order("created_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) ListByClasses(ctx context.Context, classIDs []uuid.UUID) ([]models.Assignment, error) {
	if len(classIDs) == 0 {
		return []models.Assignment{}, nil
	}

	var assignments []models.Assignment
	if err := r.db.WithContext(ctx).
		Where("class_id IN ?", classIDs).
		Order("created_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
