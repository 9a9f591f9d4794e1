package model

import (
	"time"

	"github.com/stemsi/schoolhub-backend/internal/ability"
)

// TimetableEntry is one scheduled lesson of a group.
type TimetableEntry struct {
	ID                    int       `json:"id"`
	Date                  time.Time `json:"date"`
	LessonNumber          int       `json:"lesson_number"`
	SubjectOnTeacherID    int       `json:"subject_on_teacher_id"`
	GroupID               int       `json:"group_id"`
	GroupName             string    `json:"group_name"`
	TeacherID             int       `json:"teacher_id"`
	SubjectName           string    `json:"subject_name"`
	SubstitutionTeacherID *int      `json:"substitution_teacher_id,omitempty"`
	IsCanceled            bool      `json:"is_canceled"`
}

// SubjectType implements ability.Subject.
func (e *TimetableEntry) SubjectType() ability.SubjectType { return ability.SubjectTimetable }

// Attr implements ability.Subject.
func (e *TimetableEntry) Attr(f ability.Field) (int, bool) {
	switch f {
	case ability.FieldGroupID:
		return e.GroupID, true
	case ability.FieldTeacherID:
		return e.TeacherID, true
	}
	return 0, false
}

// TimetableRequest schedules a lesson or moves an existing one.
type TimetableRequest struct {
	GroupID            int    `json:"group_id" binding:"required,gt=0"`
	SubjectOnTeacherID int    `json:"subject_on_teacher_id" binding:"required,gt=0"`
	Date               string `json:"date" binding:"required"`
	LessonNumber       int    `json:"lesson_number" binding:"required,gt=0,lte=16"`
}

// TimetableSlot is a validated TimetableRequest.
type TimetableSlot struct {
	GroupID            int
	SubjectOnTeacherID int
	Date               time.Time
	LessonNumber       int
}
