package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/stemsi/schoolhub-backend/internal/ability"
	"github.com/stemsi/schoolhub-backend/internal/model"
)

// AttendanceStore persists attendance records.
type AttendanceStore interface {
	GetByID(ctx context.Context, id int) (*model.Attendance, error)
	ListByStudent(ctx context.Context, studentID int) ([]model.Attendance, error)
	ListByIDs(ctx context.Context, ids []int) ([]model.Attendance, error)
	Justify(ctx context.Context, ids []int, justification string) error
	UpdateStatus(ctx context.Context, id int, status model.AttendanceStatus) error
}

// AttendanceService handles attendance business logic.
type AttendanceService struct {
	records AttendanceStore
	log     zerolog.Logger
}

// NewAttendanceService creates a new AttendanceService.
func NewAttendanceService(records AttendanceStore, log zerolog.Logger) *AttendanceService {
	return &AttendanceService{
		records: records,
		log:     log.With().Str("component", "attendance_service").Logger(),
	}
}

// ListForStudent returns the records of studentID the caller may read.
// A teacher sees only the lessons they teach.
func (s *AttendanceService) ListForStudent(ctx context.Context, ab *ability.Ability, studentID int) ([]model.Attendance, error) {
	all, err := s.records.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	visible := make([]model.Attendance, 0, len(all))
	for i := range all {
		if ab.CanOn(ability.Read, &all[i]) {
			visible = append(visible, all[i])
		}
	}
	return visible, nil
}

// Justify submits a justification for every listed record and moves them to
// WAITING_FOR_APPROVAL. The request is all or nothing: an unknown id yields
// ErrNotFound and a record the caller may not update yields ErrForbidden.
func (s *AttendanceService) Justify(ctx context.Context, ab *ability.Ability, ids []int, justification string) error {
	ids = uniqueIDs(ids)

	records, err := s.records.ListByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(records) != len(ids) {
		return ErrNotFound
	}
	for i := range records {
		if err := authorize(ab, ability.Update, &records[i]); err != nil {
			return err
		}
	}

	if err := s.records.Justify(ctx, ids, justification); err != nil {
		return err
	}
	s.log.Info().Ints("attendance_ids", ids).Int("user_id", ab.Actor().ID).Msg("Attendance justified")
	return nil
}

// UpdateStatus sets the status of a single record. It needs full control
// over the record, so students cannot approve their own justifications.
func (s *AttendanceService) UpdateStatus(ctx context.Context, ab *ability.Ability, id int, status model.AttendanceStatus) (*model.Attendance, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(ab, ability.Manage, rec); err != nil {
		return nil, err
	}

	if err := s.records.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	rec.Status = status
	return rec, nil
}

func uniqueIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
