package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/schoolhub-backend/internal/model"
)

// TimetableRepository handles timetable data access.
type TimetableRepository struct {
	pool *pgxpool.Pool
}

// NewTimetableRepository creates a new TimetableRepository.
func NewTimetableRepository(pool *pgxpool.Pool) *TimetableRepository {
	return &TimetableRepository{pool: pool}
}

const timetableSelect = `SELECT t.id, t.date, t.lesson_number, t.subject_on_teacher_id, t.group_id,
	g.name, sot.teacher_id, s.name, t.substitution_teacher_id, t.is_canceled
	FROM timetables t
	JOIN school_groups g ON g.id = t.group_id
	JOIN subject_on_teacher sot ON sot.id = t.subject_on_teacher_id
	JOIN subjects s ON s.id = sot.subject_id`

func collectTimetable(rows pgx.Rows, err error) ([]model.TimetableEntry, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.TimetableEntry{}
	for rows.Next() {
		var e model.TimetableEntry
		if err := rows.Scan(&e.ID, &e.Date, &e.LessonNumber, &e.SubjectOnTeacherID, &e.GroupID,
			&e.GroupName, &e.TeacherID, &e.SubjectName, &e.SubstitutionTeacherID, &e.IsCanceled); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListByGroup retrieves a group's lessons dated within [from, to].
func (r *TimetableRepository) ListByGroup(ctx context.Context, groupID int, from, to time.Time) ([]model.TimetableEntry, error) {
	return collectTimetable(r.pool.Query(ctx,
		timetableSelect+` WHERE t.group_id = $1 AND t.date BETWEEN $2 AND $3
		ORDER BY t.date, t.lesson_number`, groupID, from, to))
}

// ListByTeacher retrieves lessons a teacher gives or substitutes within [from, to].
func (r *TimetableRepository) ListByTeacher(ctx context.Context, teacherID int, from, to time.Time) ([]model.TimetableEntry, error) {
	return collectTimetable(r.pool.Query(ctx,
		timetableSelect+` WHERE (sot.teacher_id = $1 OR t.substitution_teacher_id = $1)
		AND t.date BETWEEN $2 AND $3
		ORDER BY t.date, t.lesson_number`, teacherID, from, to))
}

// GetByID retrieves one lesson.
func (r *TimetableRepository) GetByID(ctx context.Context, id int) (*model.TimetableEntry, error) {
	entries, err := collectTimetable(r.pool.Query(ctx, timetableSelect+` WHERE t.id = $1`, id))
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	return &entries[0], nil
}

// Create schedules a lesson. ErrDuplicate is returned when the group already
// has a lesson in the slot.
func (r *TimetableRepository) Create(ctx context.Context, slot model.TimetableSlot) (*model.TimetableEntry, error) {
	var id int
	err := r.pool.QueryRow(ctx,
		`INSERT INTO timetables (date, lesson_number, subject_on_teacher_id, group_id)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		slot.Date, slot.LessonNumber, slot.SubjectOnTeacherID, slot.GroupID).Scan(&id)
	if err != nil {
		return nil, mapErr(err)
	}
	return r.GetByID(ctx, id)
}

// Update moves a lesson to another slot, group or teacher assignment.
func (r *TimetableRepository) Update(ctx context.Context, id int, slot model.TimetableSlot) (*model.TimetableEntry, error) {
	err := requireAffected(r.pool.Exec(ctx,
		`UPDATE timetables SET date = $2, lesson_number = $3, subject_on_teacher_id = $4, group_id = $5
		 WHERE id = $1`,
		id, slot.Date, slot.LessonNumber, slot.SubjectOnTeacherID, slot.GroupID))
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// SetSubstitute records the teacher covering a lesson.
func (r *TimetableRepository) SetSubstitute(ctx context.Context, id, teacherID int) (*model.TimetableEntry, error) {
	err := requireAffected(r.pool.Exec(ctx,
		`UPDATE timetables SET substitution_teacher_id = $2 WHERE id = $1`, id, teacherID))
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// SetCanceled cancels or restores a lesson. Either way any substitution is
// cleared.
func (r *TimetableRepository) SetCanceled(ctx context.Context, id int, canceled bool) (*model.TimetableEntry, error) {
	err := requireAffected(r.pool.Exec(ctx,
		`UPDATE timetables SET is_canceled = $2, substitution_teacher_id = NULL WHERE id = $1`, id, canceled))
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a lesson and the attendance taken for it.
func (r *TimetableRepository) Delete(ctx context.Context, id int) error {
	return requireAffected(r.pool.Exec(ctx, `DELETE FROM timetables WHERE id = $1`, id))
}
