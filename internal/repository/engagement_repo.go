package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/widya-labs/widya-go-api/internal/models"
)

// EngagementRepository reads wellbeing and usage signals produced by the
// engagement pipeline. Read-only; callers must tolerate missing rows.
type EngagementRepository interface {
	GetSummary(ctx context.Context, studentID uuid.UUID) (models.EngagementSummary, error)
	ListSummaries(ctx context.Context, studentIDs []uuid.UUID) ([]models.EngagementSummary, error)
	CountSessions(ctx context.Context, studentID uuid.UUID, since time.Time) (int64, error)
	ContentScores(ctx context.Context, studentIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

type engagementRepository struct {
	db *gorm.DB
}

// NewEngagementRepository instantiates the repository.
func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

func (r *engagementRepository) GetSummary(ctx context.Context, studentID uuid.UUID) (models.EngagementSummary, error) {
	var summary models.EngagementSummary
	if err := r.db.WithContext(ctx).First(&summary, "student_id = ?", studentID).Error; err != nil {
		return models.EngagementSummary{}, err
	}

	return summary, nil
}

func (r *engagementRepository) ListSummaries(ctx context.Context, studentIDs []uuid.UUID) ([]models.EngagementSummary, error) {
	if len(studentIDs) == 0 {
		return []models.EngagementSummary{}, nil
	}

	var summaries []models.EngagementSummary
	if err := r.db.WithContext(ctx).
		Where("student_id IN ?", studentIDs).
		Find(&summaries).Error; err != nil {
		return nil, err
	}

	return summaries, nil
}

func (r *engagementRepository) CountSessions(ctx context.Context, studentID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AppSession{}).
		Where("student_id = ? AND started_at >= ?", studentID, since).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *engagementRepository) ContentScores(ctx context.Context, studentIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int, len(studentIDs))
	if len(studentIDs) == 0 {
		return out, nil
	}

	var scores []models.ContentScore
	if err := r.db.WithContext(ctx).
		Where("student_id IN ?", studentIDs).
		Find(&scores).Error; err != nil {
		return nil, err
	}

	for _, score := range scores {
		out[score.StudentID] = score.Points
	}

	return out, nil
}
