package service

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/schoolhub-backend/internal/ability"
	"github.com/stemsi/schoolhub-backend/internal/model"
	"github.com/stemsi/schoolhub-backend/internal/repository"
)

type fakeGrades struct {
	grades      map[int]*model.Grade
	assignments map[int]int
	nextID      int
}

func newFakeGrades() *fakeGrades {
	return &fakeGrades{
		grades:      map[int]*model.Grade{},
		assignments: map[int]int{10: 3, 11: 4},
		nextID:      100,
	}
}

func (f *fakeGrades) GetByID(_ context.Context, id int) (*model.Grade, error) {
	g, ok := f.grades[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (f *fakeGrades) ListByStudent(_ context.Context, studentID int) ([]model.Grade, error) {
	out := []model.Grade{}
	for _, g := range f.grades {
		if g.StudentID == studentID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (f *fakeGrades) TeacherOfSubjectAssignment(_ context.Context, id int) (int, error) {
	t, ok := f.assignments[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return t, nil
}

func (f *fakeGrades) Create(_ context.Context, g *model.Grade) error {
	f.nextID++
	g.ID = f.nextID
	cp := *g
	f.grades[g.ID] = &cp
	return nil
}

func (f *fakeGrades) UpdateValue(_ context.Context, id int, value float64) error {
	g, ok := f.grades[id]
	if !ok {
		return repository.ErrNotFound
	}
	g.Value = value
	return nil
}

func (f *fakeGrades) Delete(_ context.Context, id int) error {
	if _, ok := f.grades[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.grades, id)
	return nil
}

func abilityOf(id int, role ability.Role) *ability.Ability {
	return ability.For(ability.Actor{ID: id, Role: role})
}

func TestGradeAccess(t *testing.T) {
	store := newFakeGrades()
	store.grades[1] = &model.Grade{ID: 1, StudentID: 7, TeacherID: 3, Value: 5}
	store.grades[2] = &model.Grade{ID: 2, StudentID: 8, TeacherID: 4, Value: 3}
	svc := NewGradeService(store, zerolog.New(io.Discard))
	ctx := context.Background()

	student := abilityOf(7, ability.RoleStudent)
	teacher := abilityOf(3, ability.RoleTeacher)
	admin := abilityOf(1, ability.RoleAdmin)

	grades, err := svc.ListForStudent(ctx, student, 7)
	require.NoError(t, err)
	assert.Len(t, grades, 1)

	_, err = svc.ListForStudent(ctx, student, 8)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Get(ctx, student, 2)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Get(ctx, admin, 2)
	assert.NoError(t, err)

	_, err = svc.Get(ctx, admin, 404)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UpdateValue(ctx, teacher, 1, 4.5)
	require.NoError(t, err)
	assert.Equal(t, 4.5, store.grades[1].Value)

	_, err = svc.UpdateValue(ctx, teacher, 2, 4.5)
	assert.ErrorIs(t, err, ErrForbidden)

	assert.ErrorIs(t, svc.Delete(ctx, teacher, 2), ErrForbidden)
	assert.NoError(t, svc.Delete(ctx, teacher, 1))
	assert.ErrorIs(t, svc.Delete(ctx, student, 2), ErrForbidden)
}

func TestGradeAdd(t *testing.T) {
	store := newFakeGrades()
	svc := NewGradeService(store, zerolog.New(io.Discard))
	ctx := context.Background()
	teacher := abilityOf(3, ability.RoleTeacher)

	g, err := svc.Add(ctx, teacher, &model.CreateGradeRequest{StudentID: 7, SubjectOnTeacherID: 10, Value: 5.5, Weight: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, g.TeacherID)

	_, err = svc.Add(ctx, teacher, &model.CreateGradeRequest{StudentID: 7, SubjectOnTeacherID: 11, Value: 5, Weight: 2})
	assert.ErrorIs(t, err, ErrForbidden, "subject taught by another teacher")

	_, err = svc.Add(ctx, teacher, &model.CreateGradeRequest{StudentID: 7, SubjectOnTeacherID: 99, Value: 5, Weight: 2})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Add(ctx, abilityOf(7, ability.RoleStudent), &model.CreateGradeRequest{StudentID: 7, SubjectOnTeacherID: 10, Value: 6, Weight: 1})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Add(ctx, teacher, &model.CreateGradeRequest{StudentID: 7, SubjectOnTeacherID: 10, Value: 4.25, Weight: 1})
	assert.ErrorIs(t, err, ErrInvalidGradeValue)
}

func TestValidGradeValue(t *testing.T) {
	for _, v := range []float64{1, 1.5, 3, 5.5, 6} {
		assert.Truef(t, validGradeValue(v), "%v", v)
	}
	for _, v := range []float64{0, 0.5, 6.5, 2.25, 7} {
		assert.Falsef(t, validGradeValue(v), "%v", v)
	}
}
