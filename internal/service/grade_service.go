package service

import (
	"context"
	"errors"
	"math"

	"github.com/rs/zerolog"
	"github.com/stemsi/schoolhub-backend/internal/ability"
	"github.com/stemsi/schoolhub-backend/internal/model"
)

// ErrInvalidGradeValue is returned for values outside 1..6 or not on a half step.
var ErrInvalidGradeValue = errors.New("grade value must be between 1 and 6 in steps of 0.5")

// GradeStore persists grades.
type GradeStore interface {
	GetByID(ctx context.Context, id int) (*model.Grade, error)
	ListByStudent(ctx context.Context, studentID int) ([]model.Grade, error)
	TeacherOfSubjectAssignment(ctx context.Context, subjectOnTeacherID int) (int, error)
	Create(ctx context.Context, g *model.Grade) error
	UpdateValue(ctx context.Context, id int, value float64) error
	Delete(ctx context.Context, id int) error
}

// GradeService handles grade business logic.
type GradeService struct {
	grades GradeStore
	log    zerolog.Logger
}

// NewGradeService creates a new GradeService.
func NewGradeService(grades GradeStore, log zerolog.Logger) *GradeService {
	return &GradeService{
		grades: grades,
		log:    log.With().Str("component", "grade_service").Logger(),
	}
}

// ListForStudent returns the grades of studentID.
func (s *GradeService) ListForStudent(ctx context.Context, ab *ability.Ability, studentID int) ([]model.Grade, error) {
	if err := authorize(ab, ability.Read, studentScope(ability.SubjectGrade, studentID)); err != nil {
		return nil, err
	}
	return s.grades.ListByStudent(ctx, studentID)
}

// Get returns one grade.
func (s *GradeService) Get(ctx context.Context, ab *ability.Ability, id int) (*model.Grade, error) {
	g, err := s.grades.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(ab, ability.Read, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Add records a new grade. The grade belongs to the teacher of the subject
// assignment it is given under.
func (s *GradeService) Add(ctx context.Context, ab *ability.Ability, req *model.CreateGradeRequest) (*model.Grade, error) {
	if !validGradeValue(req.Value) {
		return nil, ErrInvalidGradeValue
	}

	teacherID, err := s.grades.TeacherOfSubjectAssignment(ctx, req.SubjectOnTeacherID)
	if err != nil {
		return nil, err
	}

	g := &model.Grade{
		Value:              req.Value,
		Weight:             req.Weight,
		Description:        req.Description,
		StudentID:          req.StudentID,
		SubjectOnTeacherID: req.SubjectOnTeacherID,
		TeacherID:          teacherID,
	}
	if err := authorize(ab, ability.Add, g); err != nil {
		return nil, err
	}

	if err := s.grades.Create(ctx, g); err != nil {
		return nil, err
	}
	s.log.Info().Int("grade_id", g.ID).Int("student_id", g.StudentID).Int("teacher_id", g.TeacherID).Msg("Grade added")
	return g, nil
}

// UpdateValue changes a grade's value.
func (s *GradeService) UpdateValue(ctx context.Context, ab *ability.Ability, id int, value float64) (*model.Grade, error) {
	if !validGradeValue(value) {
		return nil, ErrInvalidGradeValue
	}

	g, err := s.grades.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(ab, ability.Update, g); err != nil {
		return nil, err
	}

	if err := s.grades.UpdateValue(ctx, id, value); err != nil {
		return nil, err
	}
	g.Value = value
	return g, nil
}

// Delete removes a grade.
func (s *GradeService) Delete(ctx context.Context, ab *ability.Ability, id int) error {
	g, err := s.grades.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(ab, ability.Delete, g); err != nil {
		return err
	}

	if err := s.grades.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int("grade_id", id).Msg("Grade deleted")
	return nil
}

func validGradeValue(v float64) bool {
	return v >= 1 && v <= 6 && v*2 == math.Trunc(v*2)
}
