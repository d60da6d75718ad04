package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/widya-labs/widya-go-api/internal/models"
)

// ActivityInfoRepository reads the activity catalog maintained by the content
// service. Read-only.
type ActivityInfoRepository interface {
	Get(ctx context.Context, activityID string) (models.ActivityInfo, error)
	BatchGet(ctx context.Context, activityIDs []string) (map[string]models.ActivityInfo, error)
}

type activityInfoRepository struct {
	db *gorm.DB
}

// NewActivityInfoRepository instantiates the repository.
func NewActivityInfoRepository(db *gorm.DB) ActivityInfoRepository {
	return &activityInfoRepository{db: db}
}

func (r *activityInfoRepository) Get(ctx context.Context, activityID string) (models.ActivityInfo, error) {
	var info models.ActivityInfo
	if err := r.db.WithContext(ctx).First(&info, "activity_id = ?", activityID).Error; err != nil {
		return models.ActivityInfo{}, err
	}

	return info, nil
}

func (r *activityInfoRepository) BatchGet(ctx context.Context, activityIDs []string) (map[string]models.ActivityInfo, error) {
	out := make(map[string]models.ActivityInfo, len(activityIDs))
	if len(activityIDs) == 0 {
		return out, nil
	}

	var infos []models.ActivityInfo
	if err := r.db.WithContext(ctx).
		Where("activity_id IN ?", activityIDs).
		Find(&infos).Error; err != nil {
		return nil, err
	}

	for _, info := range infos {
		out[info.ActivityID] = info
	}

	return out, nil
}
