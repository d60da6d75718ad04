package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is an append-only note on a submission. Exactly one of StaffID
// or StudentID is set, identifying the author side of the conversation.
type Comment struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SubmissionID uuid.UUID  `gorm:"type:uuid;not null;index" json:"submission_id"`
	StaffID      *uuid.UUID `gorm:"type:uuid" json:"staff_id"`
	StudentID    *uuid.UUID `gorm:"type:uuid" json:"student_id"`
	Body         string     `gorm:"type:text;not null" json:"body"`
	CreatedAt    time.Time  `json:"created_at"`
}

// BeforeCreate assigns a fresh identifier when none was provided.
func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
