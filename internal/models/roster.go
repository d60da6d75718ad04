package models

import (
	"github.com/google/uuid"
)

// Class mirrors the roster service's class table. The core reads it for
// fan-out targets and authorization scoping and never writes to it.
type Class struct {
	ClassID   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"class_id"`
	SchoolID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"school_id"`
	Name      string     `gorm:"size:255;not null" json:"name"`
	Grade     string     `gorm:"size:32" json:"grade"`
	TeacherID *uuid.UUID `gorm:"type:uuid;index" json:"teacher_id"`
}

// TableName points at the externally owned roster table.
func (Class) TableName() string { return "b2b_classes" }

// ClassMember is one (class, student) enrollment pair, owned by the
// roster service.
type ClassMember struct {
	ClassID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"class_id"`
	StudentID uuid.UUID `gorm:"type:uuid;primaryKey" json:"student_id"`
}

// TableName points at the externally owned membership table.
func (ClassMember) TableName() string { return "b2b_class_members" }
