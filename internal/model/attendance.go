package model

import (
	"time"

	"github.com/stemsi/schoolhub-backend/internal/ability"
)

// AttendanceStatus enumerates attendance states.
type AttendanceStatus string

const (
	AttendancePresent            AttendanceStatus = "PRESENT"
	AttendanceAbsent             AttendanceStatus = "ABSENT"
	AttendanceLate               AttendanceStatus = "LATE"
	AttendanceExcused            AttendanceStatus = "EXCUSED"
	AttendanceWaitingForApproval AttendanceStatus = "WAITING_FOR_APPROVAL"
)

// Attendance records a student's presence at one lesson.
type Attendance struct {
	ID            int              `json:"id"`
	StudentID     int              `json:"student_id"`
	TimetableID   int              `json:"timetable_id"`
	TeacherID     int              `json:"teacher_id"`
	Status        AttendanceStatus `json:"status"`
	Justification *string          `json:"justification,omitempty"`
	LessonDate    time.Time        `json:"lesson_date"`
	SubjectName   string           `json:"subject_name"`
}

// SubjectType implements ability.Subject.
func (a *Attendance) SubjectType() ability.SubjectType { return ability.SubjectAttendance }

// Attr implements ability.Subject.
func (a *Attendance) Attr(f ability.Field) (int, bool) {
	switch f {
	case ability.FieldStudentID:
		return a.StudentID, true
	case ability.FieldTeacherID:
		return a.TeacherID, true
	}
	return 0, false
}

// JustifyAttendanceRequest asks for absences to be excused.
type JustifyAttendanceRequest struct {
	AttendanceIDs []int  `json:"attendance_ids" binding:"required,min=1,dive,gt=0"`
	Justification string `json:"justification" binding:"required,max=1000"`
}

// UpdateAttendanceStatusRequest sets the status of one record.
type UpdateAttendanceStatusRequest struct {
	Status AttendanceStatus `json:"status" binding:"required,oneof=PRESENT ABSENT LATE EXCUSED WAITING_FOR_APPROVAL"`
}
