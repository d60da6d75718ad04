package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Submission ledger states. PENDING rows are created by assignment fan-out;
// students move them to SUBMITTED, teachers to VERIFIED or REJECTED.
// VERIFIED is terminal, REJECTED allows resubmission.
const (
	SubmissionStatusPending   = "PENDING"
	SubmissionStatusSubmitted = "SUBMITTED"
	SubmissionStatusVerified  = "VERIFIED"
	SubmissionStatusRejected  = "REJECTED"
)

// Proof file classifications derived from the uploaded content type.
const (
	FileKindImage = "IMAGE"
	FileKindVideo = "VIDEO"
	FileKindOther = "OTHER"
)

// Submission is the ledger row for one (assignment, student) pair.
// Exactly one row exists per pair; rows are never deleted.
type Submission struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_submission_pair" json:"assignment_id"`
	StudentID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_submission_pair;index" json:"student_id"`
	FileURL      string     `gorm:"size:512" json:"file_url"`
	FileKind     string     `gorm:"size:16" json:"file_kind"`
	Status       string     `gorm:"size:16;not null;default:PENDING;index" json:"status"`
	Feedback     string     `gorm:"type:text" json:"feedback"`
	Score        int        `gorm:"not null;default:0" json:"score"`
	SubmittedAt  *time.Time `json:"submitted_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Assignment Assignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment,omitempty"`
}

// BeforeCreate assigns a fresh identifier when none was provided.
func (s *Submission) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SubmissionStatuses lists every ledger state in display order.
func SubmissionStatuses() []string {
	return []string{
		SubmissionStatusPending,
		SubmissionStatusSubmitted,
		SubmissionStatusVerified,
		SubmissionStatusRejected,
	}
}

// IsValidSubmissionStatus reports whether the value is a known ledger state.
func IsValidSubmissionStatus(status string) bool {
	switch status {
	case SubmissionStatusPending, SubmissionStatusSubmitted, SubmissionStatusVerified, SubmissionStatusRejected:
		return true
	default:
		return false
	}
}

// Completed reports whether the student has touched the row: any state
// other than PENDING counts toward completion metrics.
func (s Submission) Completed() bool {
	return s.Status != SubmissionStatusPending
}

// CanSubmit reports whether a student upload is currently allowed.
func (s Submission) CanSubmit() bool {
	return s.Status == SubmissionStatusPending || s.Status == SubmissionStatusRejected
}
