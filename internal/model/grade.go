package model

import (
	"time"

	"github.com/stemsi/schoolhub-backend/internal/ability"
)

// Grade is a mark given by a teacher to a student in a subject.
type Grade struct {
	ID                 int       `json:"id"`
	Value              float64   `json:"value"`
	Weight             int       `json:"weight"`
	Description        string    `json:"description"`
	StudentID          int       `json:"student_id"`
	SubjectOnTeacherID int       `json:"subject_on_teacher_id"`
	TeacherID          int       `json:"teacher_id"`
	SubjectID          int       `json:"subject_id"`
	SubjectName        string    `json:"subject_name"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// SubjectType implements ability.Subject.
func (g *Grade) SubjectType() ability.SubjectType { return ability.SubjectGrade }

// Attr implements ability.Subject.
func (g *Grade) Attr(f ability.Field) (int, bool) {
	switch f {
	case ability.FieldStudentID:
		return g.StudentID, true
	case ability.FieldTeacherID:
		return g.TeacherID, true
	}
	return 0, false
}

// CreateGradeRequest is the payload for adding a grade.
type CreateGradeRequest struct {
	StudentID          int     `json:"student_id" binding:"required,gt=0"`
	SubjectOnTeacherID int     `json:"subject_on_teacher_id" binding:"required,gt=0"`
	Value              float64 `json:"value" binding:"required,gte=1,lte=6"`
	Weight             int     `json:"weight" binding:"required,gte=1,lte=6"`
	Description        string  `json:"description" binding:"max=500"`
}

// UpdateGradeRequest changes the value of a grade.
type UpdateGradeRequest struct {
	Value float64 `json:"value" binding:"required,gte=1,lte=6"`
}
