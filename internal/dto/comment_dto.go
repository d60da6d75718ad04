package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/widya-labs/widya-go-api/internal/models"
)

// CommentCreateRequest is the payload for posting a comment on a submission.
type CommentCreateRequest struct {
	Body string `json:"body" validate:"required,min=1,max=2000"`
}

// CommentResponse is the serialized comment view. Exactly one of StaffID and
// StudentID is set depending on who authored it.
type CommentResponse struct {
	ID           uuid.UUID  `json:"id"`
	SubmissionID uuid.UUID  `json:"submission_id"`
	StaffID      *uuid.UUID `json:"staff_id,omitempty"`
	StudentID    *uuid.UUID `json:"student_id,omitempty"`
	Body         string     `json:"body"`
	CreatedAt    time.Time  `json:"created_at"`
}

func NewCommentResponse(model models.Comment) CommentResponse {
	return CommentResponse{
		ID:           model.ID,
		SubmissionID: model.SubmissionID,
		StaffID:      model.StaffID,
		StudentID:    model.StudentID,
		Body:         model.Body,
		CreatedAt:    model.CreatedAt,
	}
}

func NewCommentResponseSlice(items []models.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewCommentResponse(item))
	}

	return out
}
