package model

import (
	"time"

	"github.com/stemsi/schoolhub-backend/internal/ability"
)

// Subject represents an academic course.
type Subject struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	TeacherID *int      `json:"teacher_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubjectType implements ability.Subject.
func (s *Subject) SubjectType() ability.SubjectType { return ability.SubjectSubject }

// Attr implements ability.Subject.
func (s *Subject) Attr(f ability.Field) (int, bool) {
	if f == ability.FieldTeacherID && s.TeacherID != nil {
		return *s.TeacherID, true
	}
	return 0, false
}

// CreateSubjectRequest is the payload for creating a subject.
type CreateSubjectRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}

// UpdateSubjectRequest renames a subject.
type UpdateSubjectRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}

// SubjectTeacherRequest assigns a teacher to a subject or removes them.
type SubjectTeacherRequest struct {
	TeacherID int `json:"teacher_id" binding:"required,gt=0"`
	SubjectID int `json:"subject_id" binding:"required,gt=0"`
}

// SubjectAssignment links a teacher to a subject they teach. Lessons and
// grades reference the assignment rather than the subject.
type SubjectAssignment struct {
	ID        int `json:"id"`
	SubjectID int `json:"subject_id"`
	TeacherID int `json:"teacher_id"`
}
