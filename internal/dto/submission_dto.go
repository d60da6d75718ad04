package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/widya-labs/widya-go-api/internal/models"
)

// SubmissionReviewRequest carries a teacher's verdict on a submitted proof.
type SubmissionReviewRequest struct {
	Verdict  string `json:"verdict" validate:"required,oneof=VERIFIED REJECTED"`
	Score    *int   `json:"score" validate:"omitempty,min=0,max=100"`
	Feedback string `json:"feedback" validate:"omitempty,max=2000"`
}

// SubmissionResponse is the serialized submission ledger row.
type SubmissionResponse struct {
	ID           uuid.UUID  `json:"id"`
	AssignmentID uuid.UUID  `json:"assignment_id"`
	StudentID    uuid.UUID  `json:"student_id"`
	FileURL      string     `json:"file_url,omitempty"`
	FileKind     string     `json:"file_kind,omitempty"`
	Status       string     `json:"status"`
	Feedback     string     `json:"feedback,omitempty"`
	Score        int        `json:"score"`
	SubmittedAt  *time.Time `json:"submitted_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewSubmissionResponse converts a submission model into its API shape.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		StudentID:    model.StudentID,
		FileURL:      model.FileURL,
		FileKind:     model.FileKind,
		Status:       model.Status,
		Feedback:     model.Feedback,
		Score:        model.Score,
		SubmittedAt:  model.SubmittedAt,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

// NewSubmissionResponseSlice maps a batch of submissions.
func NewSubmissionResponseSlice(items []models.Submission) []SubmissionResponse {
	out := make([]SubmissionResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewSubmissionResponse(item))
	}

	return out
}
