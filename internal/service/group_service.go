package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/stemsi/schoolhub-backend/internal/ability"
	"github.com/stemsi/schoolhub-backend/internal/model"
	"github.com/stemsi/schoolhub-backend/internal/repository"
)

// Group errors.
var (
	ErrGroupExists   = errors.New("group already exists")
	ErrAlreadyMember = errors.New("student is already in the group")
	// ErrNotSubjectTeacher is returned when a teacher is assigned to a group
	// through a subject they do not teach.
	ErrNotSubjectTeacher = errors.New("teacher does not teach the subject")
	ErrAlreadyTeaching   = errors.New("teacher already teaches the subject to the group")
)

// GroupStore persists groups and their members.
type GroupStore interface {
	ListByStudent(ctx context.Context, studentID int) ([]model.Group, error)
	ListByTeacher(ctx context.Context, teacherID int) ([]model.Group, error)
	Create(ctx context.Context, g *model.Group) error
	AddStudent(ctx context.Context, groupID, studentID int) error
	RemoveStudent(ctx context.Context, groupID, studentID int) error
	Delete(ctx context.Context, id int) error
	AssignmentID(ctx context.Context, subjectID, teacherID int) (int, error)
	AddTeacher(ctx context.Context, groupID, assignmentID int) error
	RemoveTeacher(ctx context.Context, groupID, assignmentID int) error
}

// GroupService handles group business logic.
type GroupService struct {
	groups GroupStore
	log    zerolog.Logger
}

// NewGroupService creates a new GroupService.
func NewGroupService(groups GroupStore, log zerolog.Logger) *GroupService {
	return &GroupService{
		groups: groups,
		log:    log.With().Str("component", "group_service").Logger(),
	}
}

// ListForStudent returns the groups studentID belongs to.
func (s *GroupService) ListForStudent(ctx context.Context, ab *ability.Ability, studentID int) ([]model.Group, error) {
	if err := authorize(ab, ability.Read, studentScope(ability.SubjectGroup, studentID)); err != nil {
		return nil, err
	}
	return s.groups.ListByStudent(ctx, studentID)
}

// ListForTeacher returns the groups teacherID teaches.
func (s *GroupService) ListForTeacher(ctx context.Context, ab *ability.Ability, teacherID int) ([]model.Group, error) {
	if err := authorize(ab, ability.Read, teacherScope(ability.SubjectGroup, teacherID)); err != nil {
		return nil, err
	}
	return s.groups.ListByTeacher(ctx, teacherID)
}

// Create adds a group.
func (s *GroupService) Create(ctx context.Context, ab *ability.Ability, req *model.CreateGroupRequest) (*model.Group, error) {
	if ab.Cannot(ability.Create, ability.SubjectGroup, nil) {
		return nil, ErrForbidden
	}

	g := &model.Group{Name: req.Name}
	if err := s.groups.Create(ctx, g); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrGroupExists
		}
		return nil, err
	}
	return g, nil
}

// AddStudent enrolls a student in a group.
func (s *GroupService) AddStudent(ctx context.Context, ab *ability.Ability, req *model.GroupMemberRequest) error {
	if err := authorize(ab, ability.AddTo, membership(req)); err != nil {
		return err
	}
	if err := s.groups.AddStudent(ctx, req.GroupID, req.StudentID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrAlreadyMember
		}
		return err
	}
	s.log.Info().Int("group_id", req.GroupID).Int("student_id", req.StudentID).Msg("Student added to group")
	return nil
}

// RemoveStudent removes a student from a group.
func (s *GroupService) RemoveStudent(ctx context.Context, ab *ability.Ability, req *model.GroupMemberRequest) error {
	if err := authorize(ab, ability.RemoveFrom, membership(req)); err != nil {
		return err
	}
	if err := s.groups.RemoveStudent(ctx, req.GroupID, req.StudentID); err != nil {
		return err
	}
	s.log.Info().Int("group_id", req.GroupID).Int("student_id", req.StudentID).Msg("Student removed from group")
	return nil
}

// Delete removes a group along with its memberships and lessons.
func (s *GroupService) Delete(ctx context.Context, ab *ability.Ability, groupID int) error {
	inst := ability.Instance(ability.SubjectGroup, ability.Attrs{ability.FieldGroupID: groupID})
	if err := authorize(ab, ability.Delete, inst); err != nil {
		return err
	}
	if err := s.groups.Delete(ctx, groupID); err != nil {
		return err
	}
	s.log.Info().Int("group_id", groupID).Msg("Group deleted")
	return nil
}

// AddTeacher lets a teacher teach one of their subjects to a group.
func (s *GroupService) AddTeacher(ctx context.Context, ab *ability.Ability, req *model.GroupTeacherRequest) error {
	if err := authorize(ab, ability.AddTo, teaching(req)); err != nil {
		return err
	}

	assignmentID, err := s.groups.AssignmentID(ctx, req.SubjectID, req.TeacherID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotSubjectTeacher
	}
	if err != nil {
		return err
	}

	if err := s.groups.AddTeacher(ctx, req.GroupID, assignmentID); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return ErrAlreadyTeaching
		case errors.Is(err, repository.ErrInvalidReference):
			return ErrNotFound
		}
		return err
	}
	s.log.Info().Int("group_id", req.GroupID).Int("teacher_id", req.TeacherID).Int("subject_id", req.SubjectID).
		Msg("Teacher added to group")
	return nil
}

// RemoveTeacher stops a teacher teaching a subject to a group. ErrNotFound is
// returned when the teacher does not teach the subject or not to that group.
func (s *GroupService) RemoveTeacher(ctx context.Context, ab *ability.Ability, req *model.GroupTeacherRequest) error {
	if err := authorize(ab, ability.RemoveFrom, teaching(req)); err != nil {
		return err
	}

	assignmentID, err := s.groups.AssignmentID(ctx, req.SubjectID, req.TeacherID)
	if err != nil {
		return err
	}
	if err := s.groups.RemoveTeacher(ctx, req.GroupID, assignmentID); err != nil {
		return err
	}
	s.log.Info().Int("group_id", req.GroupID).Int("teacher_id", req.TeacherID).Int("subject_id", req.SubjectID).
		Msg("Teacher removed from group")
	return nil
}

func teaching(req *model.GroupTeacherRequest) ability.Subject {
	return ability.Instance(ability.SubjectGroup, ability.Attrs{
		ability.FieldTeacherID: req.TeacherID,
		ability.FieldGroupID:   req.GroupID,
	})
}

func membership(req *model.GroupMemberRequest) ability.Subject {
	return ability.Instance(ability.SubjectGroup, ability.Attrs{
		ability.FieldStudentID: req.StudentID,
		ability.FieldGroupID:   req.GroupID,
	})
}
