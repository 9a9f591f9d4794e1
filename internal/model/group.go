package model

import "time"

// Group is a class of students taught subjects by teachers.
type Group struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateGroupRequest is the payload for creating a group.
type CreateGroupRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// GroupMemberRequest adds or removes a student from a group.
type GroupMemberRequest struct {
	StudentID int `json:"student_id" binding:"required,gt=0"`
	GroupID   int `json:"group_id" binding:"required,gt=0"`
}

// GroupTeacherRequest assigns a teacher, through one of the subjects they
// teach, to a group or removes that assignment.
type GroupTeacherRequest struct {
	TeacherID int `json:"teacher_id" binding:"required,gt=0"`
	GroupID   int `json:"group_id" binding:"required,gt=0"`
	SubjectID int `json:"subject_id" binding:"required,gt=0"`
}
