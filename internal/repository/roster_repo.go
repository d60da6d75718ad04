package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/widya-labs/widya-go-api/internal/models"
)

// RosterRepository reads class and membership data owned by the B2B tenancy
// service. All operations are read-only.
type RosterRepository interface {
	GetClass(ctx context.Context, classID uuid.UUID) (models.Class, error)
	ListClassesByTeacher(ctx context.Context, teacherID uuid.UUID) ([]models.Class, error)
	ListClassesBySchool(ctx context.Context, schoolID uuid.UUID) ([]models.Class, error)
	ListStudentIDs(ctx context.Context, classID uuid.UUID) ([]uuid.UUID, error)
	IsMember(ctx context.Context, classID, studentID uuid.UUID) (bool, error)
}

type rosterRepository struct {
	db *gorm.DB
}

// NewRosterRepository instantiates the repository.
func NewRosterRepository(db *gorm.DB) RosterRepository {
	return &rosterRepository{db: db}
}

func (r *rosterRepository) GetClass(ctx context.Context, classID uuid.UUID) (models.Class, error) {
	var class models.Class
	if err := r.db.WithContext(ctx).First(&class, "class_id = ?", classID).Error; err != nil {
		return models.Class{}, err
	}

	return class, nil
}

func (r *rosterRepository) ListClassesByTeacher(ctx context.Context, teacherID uuid.UUID) ([]models.Class, error) {
	var classes []models.Class
	if err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("name ASC").
		Find(&classes).Error; err != nil {
		return nil, err
	}

	return classes, nil
}

func (r *rosterRepository) ListClassesBySchool(ctx context.Context, schoolID uuid.UUID) ([]models.Class, error) {
	var classes []models.Class
	if err := r.db.WithContext(ctx).
		Where("school_id = ?", schoolID).
		Order("name ASC").
		Find(&classes).Error; err != nil {
		return nil, err
	}

	return classes, nil
}

func (r *rosterRepository) ListStudentIDs(ctx context.Context, classID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.ClassMember{}).
		Where("class_id = ?", classID).
		Order("student_id ASC").
		Pluck("student_id", &ids).Error; err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *rosterRepository) IsMember(ctx context.Context, classID, studentID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ClassMember{}).
		Where("class_id = ? AND student_id = ?", classID, studentID).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}
