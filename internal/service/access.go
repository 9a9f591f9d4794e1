package service

import (
	"errors"

	"github.com/stemsi/schoolhub-backend/internal/ability"
	"github.com/stemsi/schoolhub-backend/internal/repository"
)

var (
	// ErrForbidden is returned when the caller's abilities do not cover the
	// requested action on the concrete record.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = repository.ErrNotFound
)

// authorize checks action against a concrete instance.
func authorize(ab *ability.Ability, action ability.Action, inst ability.Subject) error {
	if !ab.CanOn(action, inst) {
		return ErrForbidden
	}
	return nil
}

func studentScope(typ ability.SubjectType, studentID int) ability.Subject {
	return ability.Instance(typ, ability.Attrs{ability.FieldStudentID: studentID})
}

func teacherScope(typ ability.SubjectType, teacherID int) ability.Subject {
	return ability.Instance(typ, ability.Attrs{ability.FieldTeacherID: teacherID})
}
