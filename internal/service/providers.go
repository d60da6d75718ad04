package service

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Platform roles carried in the access token.
const (
	RoleConsumer      = "consumer"
	RoleSchoolStudent = "school-student"
	RoleSchoolTeacher = "school-teacher"
	RoleAdministrator = "administrator"
)

// Actor identifies the authenticated caller of a service operation.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// IsStaff reports whether the actor reviews work rather than producing it.
func (a Actor) IsStaff() bool {
	return a.Role == RoleSchoolTeacher || a.Role == RoleAdministrator
}

// Upload is the payload handed to the file uploader.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// FileUploader stores proof files and returns their public URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}
