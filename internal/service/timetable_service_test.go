package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/schoolhub-backend/internal/ability"
	"github.com/stemsi/schoolhub-backend/internal/model"
	"github.com/stemsi/schoolhub-backend/internal/repository"
)

type recordingTimetable struct {
	from, to time.Time
	entries  map[int]*model.TimetableEntry
	slots    map[model.TimetableSlot]bool
}

func newRecordingTimetable(entries ...model.TimetableEntry) *recordingTimetable {
	r := &recordingTimetable{entries: map[int]*model.TimetableEntry{}, slots: map[model.TimetableSlot]bool{}}
	for i := range entries {
		e := entries[i]
		r.entries[e.ID] = &e
	}
	return r
}

func (r *recordingTimetable) GetByID(_ context.Context, id int) (*model.TimetableEntry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *recordingTimetable) place(id int, slot model.TimetableSlot) (*model.TimetableEntry, error) {
	if slot.GroupID > 100 {
		return nil, repository.ErrInvalidReference
	}
	key := model.TimetableSlot{GroupID: slot.GroupID, Date: slot.Date, LessonNumber: slot.LessonNumber}
	if r.slots[key] {
		return nil, repository.ErrDuplicate
	}
	r.slots[key] = true
	e := &model.TimetableEntry{ID: id, Date: slot.Date, LessonNumber: slot.LessonNumber,
		SubjectOnTeacherID: slot.SubjectOnTeacherID, GroupID: slot.GroupID}
	r.entries[id] = e
	return r.GetByID(context.Background(), id)
}

func (r *recordingTimetable) Create(_ context.Context, slot model.TimetableSlot) (*model.TimetableEntry, error) {
	return r.place(len(r.entries)+1, slot)
}

func (r *recordingTimetable) Update(ctx context.Context, id int, slot model.TimetableSlot) (*model.TimetableEntry, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return r.place(id, slot)
}

func (r *recordingTimetable) SetSubstitute(ctx context.Context, id, teacherID int) (*model.TimetableEntry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	e.SubstitutionTeacherID = &teacherID
	return r.GetByID(ctx, id)
}

func (r *recordingTimetable) SetCanceled(ctx context.Context, id int, canceled bool) (*model.TimetableEntry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	e.IsCanceled = canceled
	e.SubstitutionTeacherID = nil
	return r.GetByID(ctx, id)
}

func (r *recordingTimetable) Delete(_ context.Context, id int) error {
	if _, ok := r.entries[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *recordingTimetable) ListByGroup(_ context.Context, groupID int, from, to time.Time) ([]model.TimetableEntry, error) {
	r.from, r.to = from, to
	return []model.TimetableEntry{{ID: 1, GroupID: groupID}}, nil
}

func (r *recordingTimetable) ListByTeacher(_ context.Context, teacherID int, from, to time.Time) ([]model.TimetableEntry, error) {
	r.from, r.to = from, to
	return []model.TimetableEntry{{ID: 2, TeacherID: teacherID}}, nil
}

func TestTimetableAccess(t *testing.T) {
	store := newRecordingTimetable()
	svc := NewTimetableService(store, newFixedClock(t0), zerolog.New(io.Discard))
	ctx := context.Background()

	_, err := svc.ForTeacher(ctx, abilityOf(3, ability.RoleTeacher), 3, DateRange{})
	require.NoError(t, err)
	_, err = svc.ForTeacher(ctx, abilityOf(3, ability.RoleTeacher), 4, DateRange{})
	assert.ErrorIs(t, err, ErrForbidden)

	// Students are matched on group id against their own id.
	_, err = svc.ForGroup(ctx, abilityOf(5, ability.RoleStudent), 5, DateRange{})
	require.NoError(t, err)
	_, err = svc.ForGroup(ctx, abilityOf(5, ability.RoleStudent), 6, DateRange{})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.ForGroup(ctx, abilityOf(3, ability.RoleTeacher), 5, DateRange{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestTimetableRangeDefaults(t *testing.T) {
	store := newRecordingTimetable()
	svc := NewTimetableService(store, newFixedClock(t0), zerolog.New(io.Discard))
	admin := abilityOf(1, ability.RoleAdmin)
	ctx := context.Background()

	_, err := svc.ForGroup(ctx, admin, 1, DateRange{})
	require.NoError(t, err)
	assert.Equal(t, t0.Truncate(24*time.Hour), store.from)
	assert.Equal(t, store.from.Add(7*24*time.Hour), store.to)

	from := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.ForGroup(ctx, admin, 1, DateRange{From: from})
	require.NoError(t, err)
	assert.Equal(t, from.Add(7*24*time.Hour), store.to)

	_, err = svc.ForGroup(ctx, admin, 1, DateRange{From: from, To: from.Add(-time.Hour)})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestTimetableScheduling(t *testing.T) {
	store := newRecordingTimetable()
	svc := NewTimetableService(store, newFixedClock(t0), zerolog.New(io.Discard))
	ctx := context.Background()
	admin := abilityOf(1, ability.RoleAdmin)
	req := &model.TimetableRequest{GroupID: 5, SubjectOnTeacherID: 30, Date: "2024-09-02", LessonNumber: 1}

	_, err := svc.Schedule(ctx, abilityOf(3, ability.RoleTeacher), req)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Schedule(ctx, abilityOf(5, ability.RoleStudent), req)
	assert.ErrorIs(t, err, ErrForbidden)

	e, err := svc.Schedule(ctx, admin, req)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC), e.Date)
	assert.Equal(t, 5, e.GroupID)

	_, err = svc.Schedule(ctx, admin, req)
	assert.ErrorIs(t, err, ErrSlotTaken)

	bad := *req
	bad.Date = "02.09.2024"
	_, err = svc.Schedule(ctx, admin, &bad)
	assert.ErrorIs(t, err, ErrInvalidDate)

	missing := *req
	missing.GroupID = 404
	_, err = svc.Schedule(ctx, admin, &missing)
	assert.ErrorIs(t, err, ErrNotFound)

	moved := *req
	moved.LessonNumber = 2
	e, err = svc.Reschedule(ctx, admin, e.ID, &moved)
	require.NoError(t, err)
	assert.Equal(t, 2, e.LessonNumber)
	_, err = svc.Reschedule(ctx, admin, 99, &moved)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTimetableSubstitution(t *testing.T) {
	store := newRecordingTimetable(model.TimetableEntry{ID: 1, GroupID: 5, TeacherID: 3})
	svc := NewTimetableService(store, newFixedClock(t0), zerolog.New(io.Discard))
	ctx := context.Background()
	admin := abilityOf(1, ability.RoleAdmin)

	// Teachers read their own lessons but may not change them.
	_, err := svc.Substitute(ctx, abilityOf(3, ability.RoleTeacher), 1, 4)
	assert.ErrorIs(t, err, ErrForbidden)

	e, err := svc.Substitute(ctx, admin, 1, 4)
	require.NoError(t, err)
	require.NotNil(t, e.SubstitutionTeacherID)
	assert.Equal(t, 4, *e.SubstitutionTeacherID)

	e, err = svc.SetCanceled(ctx, admin, 1, true)
	require.NoError(t, err)
	assert.True(t, e.IsCanceled)
	assert.Nil(t, e.SubstitutionTeacherID)

	_, err = svc.Substitute(ctx, admin, 1, 4)
	require.NoError(t, err)
	e, err = svc.SetCanceled(ctx, admin, 1, false)
	require.NoError(t, err)
	assert.False(t, e.IsCanceled)
	assert.Nil(t, e.SubstitutionTeacherID)

	_, err = svc.SetCanceled(ctx, admin, 2, true)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, abilityOf(3, ability.RoleTeacher), 1), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, admin, 1))
	assert.ErrorIs(t, svc.Delete(ctx, admin, 1), ErrNotFound)
}
