package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/widya-labs/widya-go-api/internal/models"
)

// AssignmentCreateRequest describes the payload for assigning an activity
// to a class.
type AssignmentCreateRequest struct {
	ActivityID string     `json:"activity_id" validate:"required,min=1,max=64"`
	ClassID    uuid.UUID  `json:"class_id" validate:"required"`
	DueDate    *time.Time `json:"due_date" validate:"omitempty"`
}

// AssignmentResponse is the serialized assignment view returned to clients,
// including the fan-out counters.
type AssignmentResponse struct {
	ID              uuid.UUID  `json:"id"`
	ActivityID      string     `json:"activity_id"`
	ClassID         uuid.UUID  `json:"class_id"`
	AssignedBy      uuid.UUID  `json:"assigned_by"`
	DueDate         *time.Time `json:"due_date"`
	Status          string     `json:"status"`
	TotalStudents   int64      `json:"total_students"`
	SubmissionCount int64      `json:"submission_count"`
	CreatedAt       time.Time  `json:"created_at"`
}

// NewAssignmentResponse converts a model plus its counters into a DTO.
func NewAssignmentResponse(model models.Assignment, totalStudents, submissionCount int64) AssignmentResponse {
	return AssignmentResponse{
		ID:              model.ID,
		ActivityID:      model.ActivityID,
		ClassID:         model.ClassID,
		AssignedBy:      model.AssignedBy,
		DueDate:         model.DueDate,
		Status:          model.Status,
		TotalStudents:   totalStudents,
		SubmissionCount: submissionCount,
		CreatedAt:       model.CreatedAt,
	}
}
