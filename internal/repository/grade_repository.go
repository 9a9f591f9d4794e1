package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/schoolhub-backend/internal/model"
)

// GradeRepository handles grade data access.
type GradeRepository struct {
	pool *pgxpool.Pool
}

// NewGradeRepository creates a new GradeRepository.
func NewGradeRepository(pool *pgxpool.Pool) *GradeRepository {
	return &GradeRepository{pool: pool}
}

const gradeSelect = `SELECT g.id, g.value::float8, g.weight, g.description, g.student_id,
	g.subject_on_teacher_id, sot.teacher_id, sot.subject_id, s.name, g.created_at, g.updated_at
	FROM grades g
	JOIN subject_on_teacher sot ON sot.id = g.subject_on_teacher_id
	JOIN subjects s ON s.id = sot.subject_id`

func scanGrade(row pgx.Row) (*model.Grade, error) {
	g := &model.Grade{}
	err := row.Scan(&g.ID, &g.Value, &g.Weight, &g.Description, &g.StudentID,
		&g.SubjectOnTeacherID, &g.TeacherID, &g.SubjectID, &g.SubjectName,
		&g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return g, nil
}

// GetByID retrieves a grade with its teacher and subject.
func (r *GradeRepository) GetByID(ctx context.Context, id int) (*model.Grade, error) {
	return scanGrade(r.pool.QueryRow(ctx, gradeSelect+` WHERE g.id = $1`, id))
}

// ListByStudent retrieves all grades of a student, newest first.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID int) ([]model.Grade, error) {
	rows, err := r.pool.Query(ctx, gradeSelect+` WHERE g.student_id = $1 ORDER BY g.created_at DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	grades := []model.Grade{}
	for rows.Next() {
		g, err := scanGrade(rows)
		if err != nil {
			return nil, err
		}
		grades = append(grades, *g)
	}
	return grades, rows.Err()
}

// TeacherOfSubjectAssignment returns the teacher of a subject-on-teacher link.
func (r *GradeRepository) TeacherOfSubjectAssignment(ctx context.Context, subjectOnTeacherID int) (int, error) {
	var teacherID int
	err := r.pool.QueryRow(ctx,
		`SELECT teacher_id FROM subject_on_teacher WHERE id = $1`, subjectOnTeacherID,
	).Scan(&teacherID)
	return teacherID, mapErr(err)
}

// Create inserts a grade and reloads it with its joined fields.
func (r *GradeRepository) Create(ctx context.Context, g *model.Grade) error {
	var id int
	err := r.pool.QueryRow(ctx,
		`INSERT INTO grades (value, weight, description, student_id, subject_on_teacher_id)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		g.Value, g.Weight, g.Description, g.StudentID, g.SubjectOnTeacherID,
	).Scan(&id)
	if err != nil {
		return mapErr(err)
	}
	created, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	*g = *created
	return nil
}

// UpdateValue changes the value of a grade.
func (r *GradeRepository) UpdateValue(ctx context.Context, id int, value float64) error {
	return requireAffected(r.pool.Exec(ctx,
		`UPDATE grades SET value = $1, updated_at = NOW() WHERE id = $2`, value, id))
}

// Delete removes a grade.
func (r *GradeRepository) Delete(ctx context.Context, id int) error {
	return requireAffected(r.pool.Exec(ctx, `DELETE FROM grades WHERE id = $1`, id))
}
