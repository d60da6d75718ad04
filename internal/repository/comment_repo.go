package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/widya-labs/widya-go-api/internal/models"
)

// CommentRepository defines data operations for the append-only comment
// thread attached to a submission.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository instantiates the repository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]models.Comment, error) {
	var comments []models.Comment
	if err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}

	return comments, nil
}
