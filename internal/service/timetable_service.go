package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/schoolhub-backend/internal/ability"
	"github.com/stemsi/schoolhub-backend/internal/model"
	"github.com/stemsi/schoolhub-backend/internal/repository"
)

// Timetable errors.
var (
	// ErrInvalidRange is returned when a date range ends before it starts.
	ErrInvalidRange = errors.New("range end precedes start")
	// ErrSlotTaken is returned when a group already has a lesson with the
	// same number on the same day.
	ErrSlotTaken    = errors.New("lesson slot already taken")
	ErrInvalidDate  = errors.New("invalid date")
)

// defaultTimetableSpan is used when the caller gives no end date.
const defaultTimetableSpan = 7 * 24 * time.Hour

// TimetableStore persists scheduled lessons.
type TimetableStore interface {
	ListByGroup(ctx context.Context, groupID int, from, to time.Time) ([]model.TimetableEntry, error)
	ListByTeacher(ctx context.Context, teacherID int, from, to time.Time) ([]model.TimetableEntry, error)
	GetByID(ctx context.Context, id int) (*model.TimetableEntry, error)
	Create(ctx context.Context, slot model.TimetableSlot) (*model.TimetableEntry, error)
	Update(ctx context.Context, id int, slot model.TimetableSlot) (*model.TimetableEntry, error)
	SetSubstitute(ctx context.Context, id, teacherID int) (*model.TimetableEntry, error)
	SetCanceled(ctx context.Context, id int, canceled bool) (*model.TimetableEntry, error)
	Delete(ctx context.Context, id int) error
}

// DateRange bounds a timetable query. Zero values are filled in by the service.
type DateRange struct {
	From time.Time
	To   time.Time
}

// TimetableService handles timetable queries.
type TimetableService struct {
	entries TimetableStore
	clock   Clock
	log     zerolog.Logger
}

// NewTimetableService creates a new TimetableService.
func NewTimetableService(entries TimetableStore, clock Clock, log zerolog.Logger) *TimetableService {
	return &TimetableService{
		entries: entries,
		clock:   clock,
		log:     log.With().Str("component", "timetable_service").Logger(),
	}
}

// ForGroup returns a group's lessons in the range.
func (s *TimetableService) ForGroup(ctx context.Context, ab *ability.Ability, groupID int, r DateRange) ([]model.TimetableEntry, error) {
	inst := ability.Instance(ability.SubjectTimetable, ability.Attrs{ability.FieldGroupID: groupID})
	if err := authorize(ab, ability.Read, inst); err != nil {
		return nil, err
	}
	r, err := s.normalize(r)
	if err != nil {
		return nil, err
	}
	return s.entries.ListByGroup(ctx, groupID, r.From, r.To)
}

// ForTeacher returns the lessons a teacher gives or substitutes in the range.
func (s *TimetableService) ForTeacher(ctx context.Context, ab *ability.Ability, teacherID int, r DateRange) ([]model.TimetableEntry, error) {
	if err := authorize(ab, ability.Read, teacherScope(ability.SubjectTimetable, teacherID)); err != nil {
		return nil, err
	}
	r, err := s.normalize(r)
	if err != nil {
		return nil, err
	}
	return s.entries.ListByTeacher(ctx, teacherID, r.From, r.To)
}

// ─── Scheduling ────────────────────────────────────────────────────────

// Schedule adds a lesson to a group's timetable.
func (s *TimetableService) Schedule(ctx context.Context, ab *ability.Ability, req *model.TimetableRequest) (*model.TimetableEntry, error) {
	if ab.Cannot(ability.Create, ability.SubjectTimetable, nil) {
		return nil, ErrForbidden
	}
	slot, err := parseSlot(req)
	if err != nil {
		return nil, err
	}

	e, err := s.entries.Create(ctx, slot)
	if err != nil {
		return nil, writeErr(err)
	}
	s.log.Info().Int("timetable_id", e.ID).Int("group_id", e.GroupID).Msg("Lesson scheduled")
	return e, nil
}

// Reschedule moves a lesson to another slot, group or teacher assignment.
func (s *TimetableService) Reschedule(ctx context.Context, ab *ability.Ability, id int, req *model.TimetableRequest) (*model.TimetableEntry, error) {
	if err := s.authorizeEntry(ctx, ab, ability.Update, id); err != nil {
		return nil, err
	}
	slot, err := parseSlot(req)
	if err != nil {
		return nil, err
	}

	e, err := s.entries.Update(ctx, id, slot)
	if err != nil {
		return nil, writeErr(err)
	}
	return e, nil
}

// Substitute records teacherID as covering a lesson.
func (s *TimetableService) Substitute(ctx context.Context, ab *ability.Ability, id, teacherID int) (*model.TimetableEntry, error) {
	if err := s.authorizeEntry(ctx, ab, ability.Update, id); err != nil {
		return nil, err
	}
	e, err := s.entries.SetSubstitute(ctx, id, teacherID)
	if err != nil {
		return nil, writeErr(err)
	}
	s.log.Info().Int("timetable_id", id).Int("teacher_id", teacherID).Msg("Substitution recorded")
	return e, nil
}

// SetCanceled cancels a lesson or restores a canceled one. Both clear any
// substitution.
func (s *TimetableService) SetCanceled(ctx context.Context, ab *ability.Ability, id int, canceled bool) (*model.TimetableEntry, error) {
	if err := s.authorizeEntry(ctx, ab, ability.Update, id); err != nil {
		return nil, err
	}
	e, err := s.entries.SetCanceled(ctx, id, canceled)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("timetable_id", id).Bool("canceled", canceled).Msg("Lesson status changed")
	return e, nil
}

// Delete removes a lesson.
func (s *TimetableService) Delete(ctx context.Context, ab *ability.Ability, id int) error {
	if err := s.authorizeEntry(ctx, ab, ability.Delete, id); err != nil {
		return err
	}
	if err := s.entries.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int("timetable_id", id).Msg("Lesson deleted")
	return nil
}

func (s *TimetableService) authorizeEntry(ctx context.Context, ab *ability.Ability, action ability.Action, id int) error {
	e, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return authorize(ab, action, e)
}

func parseSlot(req *model.TimetableRequest) (model.TimetableSlot, error) {
	date, err := ParseDate(req.Date)
	if err != nil {
		return model.TimetableSlot{}, ErrInvalidDate
	}
	return model.TimetableSlot{
		GroupID:            req.GroupID,
		SubjectOnTeacherID: req.SubjectOnTeacherID,
		Date:               date,
		LessonNumber:       req.LessonNumber,
	}, nil
}

func writeErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return ErrSlotTaken
	case errors.Is(err, repository.ErrInvalidReference):
		return ErrNotFound
	}
	return err
}

// normalize defaults an empty start to today and an empty end to a week
// after the start.
func (s *TimetableService) normalize(r DateRange) (DateRange, error) {
	if r.From.IsZero() {
		r.From = s.clock.Now().Truncate(24 * time.Hour)
	}
	if r.To.IsZero() {
		r.To = r.From.Add(defaultTimetableSpan)
	}
	if r.To.Before(r.From) {
		return r, ErrInvalidRange
	}
	return r, nil
}
