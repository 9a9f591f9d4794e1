package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/stemsi/schoolhub-backend/internal/ability"
	"github.com/stemsi/schoolhub-backend/internal/model"
	"github.com/stemsi/schoolhub-backend/internal/repository"
)

var (
	ErrSubjectExists          = errors.New("subject already exists")
	ErrTeacherAlreadyAssigned = errors.New("teacher already teaches the subject")
)

type SubjectStore interface {
	ListByStudent(ctx context.Context, studentID int) ([]model.Subject, error)
	ListByTeacher(ctx context.Context, teacherID int) ([]model.Subject, error)
	ListByGroup(ctx context.Context, groupID int) ([]model.Subject, error)
	Create(ctx context.Context, s *model.Subject) error
	Update(ctx context.Context, s *model.Subject) error
	Delete(ctx context.Context, id int) error
	AssignTeacher(ctx context.Context, a *model.SubjectAssignment) error
	UnassignTeacher(ctx context.Context, subjectID, teacherID int) error
}

type SubjectService struct {
	subjects SubjectStore
	log      zerolog.Logger
}

func NewSubjectService(subjects SubjectStore, log zerolog.Logger) *SubjectService {
	return &SubjectService{
		subjects: subjects,
		log:      log.With().Str("component", "subject_service").Logger(),
	}
}

func (s *SubjectService) ListForStudent(ctx context.Context, ab *ability.Ability, studentID int) ([]model.Subject, error) {
	if err := authorize(ab, ability.Read, studentScope(ability.SubjectSubject, studentID)); err != nil {
		return nil, err
	}
	return s.subjects.ListByStudent(ctx, studentID)
}

func (s *SubjectService) ListForTeacher(ctx context.Context, ab *ability.Ability, teacherID int) ([]model.Subject, error) {
	if err := authorize(ab, ability.Read, teacherScope(ability.SubjectSubject, teacherID)); err != nil {
		return nil, err
	}
	return s.subjects.ListByTeacher(ctx, teacherID)
}

func (s *SubjectService) Create(ctx context.Context, ab *ability.Ability, req *model.CreateSubjectRequest) (*model.Subject, error) {
	if ab.Cannot(ability.Create, ability.SubjectSubject, nil) {
		return nil, ErrForbidden
	}

	sub := &model.Subject{Name: req.Name}
	if err := s.subjects.Create(ctx, sub); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrSubjectExists
		}
		return nil, err
	}
	return sub, nil
}

// ListForGroup returns the subjects taught to a group. Any role allowed to
// read subjects may list them.
func (s *SubjectService) ListForGroup(ctx context.Context, ab *ability.Ability, groupID int) ([]model.Subject, error) {
	if ab.Cannot(ability.Read, ability.SubjectSubject, nil) {
		return nil, ErrForbidden
	}
	return s.subjects.ListByGroup(ctx, groupID)
}

func (s *SubjectService) Rename(ctx context.Context, ab *ability.Ability, id int, req *model.UpdateSubjectRequest) (*model.Subject, error) {
	if ab.Cannot(ability.Update, ability.SubjectSubject, nil) {
		return nil, ErrForbidden
	}

	sub := &model.Subject{ID: id, Name: req.Name}
	if err := s.subjects.Update(ctx, sub); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrSubjectExists
		}
		return nil, err
	}
	return sub, nil
}

func (s *SubjectService) Delete(ctx context.Context, ab *ability.Ability, id int) error {
	if ab.Cannot(ability.Delete, ability.SubjectSubject, nil) {
		return ErrForbidden
	}
	if err := s.subjects.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int("subject_id", id).Msg("Subject deleted")
	return nil
}

// AssignTeacher lets a teacher teach a subject.
func (s *SubjectService) AssignTeacher(ctx context.Context, ab *ability.Ability, req *model.SubjectTeacherRequest) (*model.SubjectAssignment, error) {
	if err := authorize(ab, ability.AddTo, teacherScope(ability.SubjectSubject, req.TeacherID)); err != nil {
		return nil, err
	}

	a := &model.SubjectAssignment{SubjectID: req.SubjectID, TeacherID: req.TeacherID}
	if err := s.subjects.AssignTeacher(ctx, a); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrTeacherAlreadyAssigned
		case errors.Is(err, repository.ErrInvalidReference):
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.log.Info().Int("subject_id", a.SubjectID).Int("teacher_id", a.TeacherID).Msg("Teacher assigned to subject")
	return a, nil
}

// UnassignTeacher removes a teacher from a subject together with the groups,
// lessons and grades recorded under that assignment.
func (s *SubjectService) UnassignTeacher(ctx context.Context, ab *ability.Ability, req *model.SubjectTeacherRequest) error {
	if err := authorize(ab, ability.RemoveFrom, teacherScope(ability.SubjectSubject, req.TeacherID)); err != nil {
		return err
	}
	if err := s.subjects.UnassignTeacher(ctx, req.SubjectID, req.TeacherID); err != nil {
		return err
	}
	s.log.Info().Int("subject_id", req.SubjectID).Int("teacher_id", req.TeacherID).Msg("Teacher unassigned from subject")
	return nil
}
