package ability

import (
	"encoding/json"
	"errors"
	"math"
)

// ErrAmbiguousSubject is returned when a record's shape fits more than one
// subject type.
var ErrAmbiguousSubject = errors.New("ability: record matches more than one subject type")

// Record is untagged data, e.g. a decoded JSON object, whose subject type must
// be inferred from the fields it carries.
type Record map[string]any

func (r Record) has(keys ...string) bool {
	for _, k := range keys {
		if _, ok := r[k]; !ok {
			return false
		}
	}
	return true
}

// shapes lists the field-presence checks in priority order.
var shapes = []struct {
	typ  SubjectType
	keys []string
}{
	{SubjectUser, []string{"email", "role"}},
	{SubjectGrade, []string{"gradeValue", "studentId"}},
	{SubjectGroup, []string{"groupName", "studentId"}},
	{SubjectTimetable, []string{"schedule"}},
	{SubjectSubject, []string{"subjectName"}},
	{SubjectAttendance, []string{"status", "studentId"}},
}

// Detect infers the subject type of rec. A record matching no shape is typed
// SubjectAll, which only a wildcard rule can satisfy. A record matching
// several shapes yields ErrAmbiguousSubject.
func Detect(rec Record) (SubjectType, error) {
	found := SubjectAll
	for _, s := range shapes {
		if !rec.has(s.keys...) {
			continue
		}
		if found != SubjectAll {
			return SubjectAll, ErrAmbiguousSubject
		}
		found = s.typ
	}
	return found, nil
}

type recordSubject struct {
	typ SubjectType
	rec Record
}

func (r recordSubject) SubjectType() SubjectType { return r.typ }

func (r recordSubject) Attr(f Field) (int, bool) {
	v, ok := r.rec[string(f)]
	if !ok {
		return 0, false
	}
	return toInt(v)
}

// toInt accepts the integer representations a decoded record may hold.
// Non-integral numbers and other kinds never compare equal to an id.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}
