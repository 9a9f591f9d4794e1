package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/schoolhub-backend/internal/model"
)

type SubjectRepository struct {
	pool *pgxpool.Pool
}

func NewSubjectRepository(pool *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{pool: pool}
}

func (r *SubjectRepository) Create(ctx context.Context, s *model.Subject) error {
	return mapErr(r.pool.QueryRow(ctx,
		`INSERT INTO subjects (name) VALUES ($1) RETURNING id, created_at, updated_at`,
		s.Name).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt))
}

func collectSubjects(rows pgx.Rows, err error) ([]model.Subject, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subjects := []model.Subject{}
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.TeacherID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// ListByTeacher returns the subjects a teacher is assigned to.
func (r *SubjectRepository) ListByTeacher(ctx context.Context, teacherID int) ([]model.Subject, error) {
	return collectSubjects(r.pool.Query(ctx,
		`SELECT s.id, s.name, sot.teacher_id, s.created_at, s.updated_at
		 FROM subjects s
		 JOIN subject_on_teacher sot ON sot.subject_id = s.id
		 WHERE sot.teacher_id = $1
		 ORDER BY s.name ASC`, teacherID))
}

// ListByStudent returns the subjects taught to any group the student is in.
func (r *SubjectRepository) ListByStudent(ctx context.Context, studentID int) ([]model.Subject, error) {
	return collectSubjects(r.pool.Query(ctx,
		`SELECT DISTINCT s.id, s.name, sot.teacher_id, s.created_at, s.updated_at
		 FROM subjects s
		 JOIN subject_on_teacher sot ON sot.subject_id = s.id
		 JOIN group_on_subject_on_teacher gsot ON gsot.subject_on_teacher_id = sot.id
		 JOIN student_on_group sog ON sog.group_id = gsot.group_id
		 WHERE sog.student_id = $1
		 ORDER BY s.name ASC`, studentID))
}

// ListByGroup returns the subjects taught to a group, one row per teacher.
func (r *SubjectRepository) ListByGroup(ctx context.Context, groupID int) ([]model.Subject, error) {
	return collectSubjects(r.pool.Query(ctx,
		`SELECT s.id, s.name, sot.teacher_id, s.created_at, s.updated_at
		 FROM subjects s
		 JOIN subject_on_teacher sot ON sot.subject_id = s.id
		 JOIN group_on_subject_on_teacher gsot ON gsot.subject_on_teacher_id = sot.id
		 WHERE gsot.group_id = $1
		 ORDER BY s.name ASC, sot.teacher_id ASC`, groupID))
}

func (r *SubjectRepository) Update(ctx context.Context, s *model.Subject) error {
	return mapErr(r.pool.QueryRow(ctx,
		`UPDATE subjects SET name = $2, updated_at = NOW() WHERE id = $1
		 RETURNING created_at, updated_at`,
		s.ID, s.Name).Scan(&s.CreatedAt, &s.UpdatedAt))
}

// Delete removes a subject together with its teacher assignments and
// everything recorded against them.
func (r *SubjectRepository) Delete(ctx context.Context, id int) error {
	return requireAffected(r.pool.Exec(ctx, `DELETE FROM subjects WHERE id = $1`, id))
}

func (r *SubjectRepository) AssignTeacher(ctx context.Context, a *model.SubjectAssignment) error {
	return mapErr(r.pool.QueryRow(ctx,
		`INSERT INTO subject_on_teacher (subject_id, teacher_id) VALUES ($1, $2) RETURNING id`,
		a.SubjectID, a.TeacherID).Scan(&a.ID))
}

func (r *SubjectRepository) UnassignTeacher(ctx context.Context, subjectID, teacherID int) error {
	return requireAffected(r.pool.Exec(ctx,
		`DELETE FROM subject_on_teacher WHERE subject_id = $1 AND teacher_id = $2`,
		subjectID, teacherID))
}
