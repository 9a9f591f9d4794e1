package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/schoolhub-backend/internal/model"
)

// GroupRepository handles group and membership data access.
type GroupRepository struct {
	pool *pgxpool.Pool
}

// NewGroupRepository creates a new GroupRepository.
func NewGroupRepository(pool *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{pool: pool}
}

func collectGroups(rows pgx.Rows, err error) ([]model.Group, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := []model.Group{}
	for rows.Next() {
		var g model.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// ListByStudent retrieves the groups a student belongs to.
func (r *GroupRepository) ListByStudent(ctx context.Context, studentID int) ([]model.Group, error) {
	return collectGroups(r.pool.Query(ctx,
		`SELECT g.id, g.name, g.created_at, g.updated_at
		 FROM school_groups g
		 JOIN student_on_group sog ON sog.group_id = g.id
		 WHERE sog.student_id = $1
		 ORDER BY g.name`, studentID))
}

// ListByTeacher retrieves the groups a teacher teaches at least one subject to.
func (r *GroupRepository) ListByTeacher(ctx context.Context, teacherID int) ([]model.Group, error) {
	return collectGroups(r.pool.Query(ctx,
		`SELECT DISTINCT g.id, g.name, g.created_at, g.updated_at
		 FROM school_groups g
		 JOIN group_on_subject_on_teacher gsot ON gsot.group_id = g.id
		 JOIN subject_on_teacher sot ON sot.id = gsot.subject_on_teacher_id
		 WHERE sot.teacher_id = $1
		 ORDER BY g.name`, teacherID))
}

// Create inserts a group. ErrDuplicate is returned when the name is taken.
func (r *GroupRepository) Create(ctx context.Context, g *model.Group) error {
	return mapErr(r.pool.QueryRow(ctx,
		`INSERT INTO school_groups (name) VALUES ($1) RETURNING id, created_at, updated_at`,
		g.Name).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt))
}

// AddStudent enrolls a student in a group.
func (r *GroupRepository) AddStudent(ctx context.Context, groupID, studentID int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO student_on_group (group_id, student_id) VALUES ($1, $2)`, groupID, studentID)
	return mapErr(err)
}

// RemoveStudent removes a student from a group.
func (r *GroupRepository) RemoveStudent(ctx context.Context, groupID, studentID int) error {
	return requireAffected(r.pool.Exec(ctx,
		`DELETE FROM student_on_group WHERE group_id = $1 AND student_id = $2`, groupID, studentID))
}

// Delete removes a group. Memberships, teacher assignments and lessons of the
// group go with it.
func (r *GroupRepository) Delete(ctx context.Context, id int) error {
	return requireAffected(r.pool.Exec(ctx, `DELETE FROM school_groups WHERE id = $1`, id))
}

// AssignmentID returns the subject_on_teacher row linking teacherID to
// subjectID, or ErrNotFound when the teacher does not teach the subject.
func (r *GroupRepository) AssignmentID(ctx context.Context, subjectID, teacherID int) (int, error) {
	var id int
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM subject_on_teacher WHERE subject_id = $1 AND teacher_id = $2`,
		subjectID, teacherID).Scan(&id)
	return id, mapErr(err)
}

// AddTeacher lets the teacher of an assignment teach its subject to a group.
func (r *GroupRepository) AddTeacher(ctx context.Context, groupID, assignmentID int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO group_on_subject_on_teacher (group_id, subject_on_teacher_id) VALUES ($1, $2)`,
		groupID, assignmentID)
	return mapErr(err)
}

// RemoveTeacher removes an assignment from a group.
func (r *GroupRepository) RemoveTeacher(ctx context.Context, groupID, assignmentID int) error {
	return requireAffected(r.pool.Exec(ctx,
		`DELETE FROM group_on_subject_on_teacher WHERE group_id = $1 AND subject_on_teacher_id = $2`,
		groupID, assignmentID))
}
