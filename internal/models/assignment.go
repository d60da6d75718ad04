package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Assignment lifecycle states.
const (
	AssignmentStatusActive   = "ACTIVE"
	AssignmentStatusArchived = "ARCHIVED"
)

// Assignment binds one learning activity to one class. Immutable after
// creation except for the lifecycle status.
type Assignment struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ActivityID string     `gorm:"size:64;not null;index" json:"activity_id"`
	ClassID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"class_id"`
	AssignedBy uuid.UUID  `gorm:"type:uuid;not null" json:"assigned_by"`
	DueDate    *time.Time `json:"due_date"`
	Status     string     `gorm:"size:16;not null;default:ACTIVE" json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Submissions []Submission `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"submissions,omitempty"`
}

// BeforeCreate assigns a fresh identifier when none was provided.
func (a *Assignment) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// IsActive reports whether the assignment still accepts submissions.
func (a Assignment) IsActive() bool {
	return a.Status == AssignmentStatusActive
}
