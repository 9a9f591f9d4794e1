package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/schoolhub-backend/internal/model"
)

// AttendanceRepository handles attendance data access.
type AttendanceRepository struct {
	pool *pgxpool.Pool
}

// NewAttendanceRepository creates a new AttendanceRepository.
func NewAttendanceRepository(pool *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

const attendanceSelect = `SELECT a.id, a.student_id, a.timetable_id, sot.teacher_id, a.status,
	a.justification, t.date, s.name
	FROM attendances a
	JOIN timetables t ON t.id = a.timetable_id
	JOIN subject_on_teacher sot ON sot.id = t.subject_on_teacher_id
	JOIN subjects s ON s.id = sot.subject_id`

func scanAttendance(row pgx.Row) (*model.Attendance, error) {
	a := &model.Attendance{}
	err := row.Scan(&a.ID, &a.StudentID, &a.TimetableID, &a.TeacherID, &a.Status,
		&a.Justification, &a.LessonDate, &a.SubjectName)
	if err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

func collectAttendances(rows pgx.Rows) ([]model.Attendance, error) {
	defer rows.Close()
	out := []model.Attendance{}
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// GetByID retrieves an attendance record.
func (r *AttendanceRepository) GetByID(ctx context.Context, id int) (*model.Attendance, error) {
	return scanAttendance(r.pool.QueryRow(ctx, attendanceSelect+` WHERE a.id = $1`, id))
}

// ListByStudent retrieves a student's attendance, most recent lesson first.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID int) ([]model.Attendance, error) {
	rows, err := r.pool.Query(ctx,
		attendanceSelect+` WHERE a.student_id = $1 ORDER BY t.date DESC, t.lesson_number DESC`, studentID)
	if err != nil {
		return nil, err
	}
	return collectAttendances(rows)
}

// ListByIDs retrieves the records with the given ids. Missing ids are skipped.
func (r *AttendanceRepository) ListByIDs(ctx context.Context, ids []int) ([]model.Attendance, error) {
	rows, err := r.pool.Query(ctx, attendanceSelect+` WHERE a.id = ANY($1) ORDER BY a.id`, ids)
	if err != nil {
		return nil, err
	}
	return collectAttendances(rows)
}

// Justify attaches a justification to the records and marks them for approval.
func (r *AttendanceRepository) Justify(ctx context.Context, ids []int, justification string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE attendances SET status = $1, justification = $2, updated_at = NOW()
		 WHERE id = ANY($3)`,
		model.AttendanceWaitingForApproval, justification, ids)
	return err
}

// UpdateStatus sets the status of one record.
func (r *AttendanceRepository) UpdateStatus(ctx context.Context, id int, status model.AttendanceStatus) error {
	return requireAffected(r.pool.Exec(ctx,
		`UPDATE attendances SET status = $1, updated_at = NOW() WHERE id = $2`, status, id))
}
