package ability

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	allActions = []Action{Manage, Read, Create, Update, Delete, Add, AddTo, RemoveFrom, Restore, All}
	allTypes   = []SubjectType{
		SubjectUser, SubjectSession, SubjectSubject, SubjectGroup, SubjectGrade,
		SubjectTimetable, SubjectAttendance, SubjectAnnouncement, SubjectAll,
	}
)

func TestEveryRoleHasPolicy(t *testing.T) {
	for _, r := range Roles() {
		_, ok := policies[r]
		assert.Truef(t, ok, "role %s has no policy", r)
	}
}

func TestManageAllOnlyForAdmin(t *testing.T) {
	assert.True(t, For(Actor{ID: 1, Role: RoleAdmin}).Can(Manage, SubjectAll, nil))

	for _, r := range []Role{RoleTeacher, RoleStudent, "JANITOR", ""} {
		assert.Falsef(t, For(Actor{ID: 1, Role: r}).Can(Manage, SubjectAll, nil), "role %q", r)
	}
}

func TestAdminCanEverything(t *testing.T) {
	a := For(Actor{ID: 1, Role: RoleAdmin})

	for _, act := range allActions {
		for _, typ := range allTypes {
			assert.Truef(t, a.Can(act, typ, nil), "%s %s", act, typ)
			for _, other := range allTypes {
				assert.Truef(t, a.Can(act, typ, Instance(other, Attrs{FieldGroupID: 3})), "%s %s tagged %s", act, typ, other)
			}
			assert.Truef(t, a.Can(act, typ, Instance(typ, Attrs{})), "%s %s empty instance", act, typ)
			assert.Truef(t, a.Can(act, typ, Instance(typ, Attrs{FieldStudentID: 99, FieldTeacherID: 42})), "%s %s", act, typ)
		}
	}
}

func TestStudentAttendanceOwnership(t *testing.T) {
	a := For(Actor{ID: 7, Role: RoleStudent})
	own := Instance(SubjectAttendance, Attrs{FieldStudentID: 7})
	other := Instance(SubjectAttendance, Attrs{FieldStudentID: 8})

	assert.True(t, a.Can(Read, SubjectAttendance, own))
	assert.True(t, a.Can(Update, SubjectAttendance, own))
	assert.False(t, a.Can(Read, SubjectAttendance, other))
	assert.False(t, a.Can(Update, SubjectAttendance, other))
	assert.False(t, a.Can(Delete, SubjectAttendance, own))
}

func TestTeacherGradesAndAnnouncements(t *testing.T) {
	a := For(Actor{ID: 3, Role: RoleTeacher})

	assert.True(t, a.Can(Delete, SubjectGrade, Instance(SubjectGrade, Attrs{FieldTeacherID: 3})))
	assert.False(t, a.Can(Delete, SubjectGrade, Instance(SubjectGrade, Attrs{FieldTeacherID: 4})))
	assert.False(t, a.Can(Read, SubjectGrade, Instance(SubjectGrade, Attrs{FieldTeacherID: 3})))

	for _, inst := range []Subject{
		nil,
		Instance(SubjectAnnouncement, Attrs{}),
		Instance(SubjectAnnouncement, Attrs{FieldTeacherID: 1000}),
	} {
		assert.True(t, a.Can(Read, SubjectAnnouncement, inst))
		assert.True(t, a.Can(Delete, SubjectAnnouncement, inst))
	}
}

func TestPolicyTable(t *testing.T) {
	const id = 5
	tests := []struct {
		name   string
		role   Role
		action Action
		typ    SubjectType
		attrs  Attrs
		want   bool
	}{
		{"student reads own grade", RoleStudent, Read, SubjectGrade, Attrs{FieldStudentID: id}, true},
		{"student cannot add grade", RoleStudent, Add, SubjectGrade, Attrs{FieldStudentID: id}, false},
		{"student reads own group", RoleStudent, Read, SubjectGroup, Attrs{FieldStudentID: id}, true},
		{"student reads any subject", RoleStudent, Read, SubjectSubject, Attrs{FieldTeacherID: 77}, true},
		{"student timetable compares group id with user id", RoleStudent, Read, SubjectTimetable, Attrs{FieldGroupID: id}, true},
		{"student timetable of other group", RoleStudent, Read, SubjectTimetable, Attrs{FieldGroupID: id + 1}, false},
		{"student reads announcement", RoleStudent, Read, SubjectAnnouncement, nil, true},
		{"student cannot create announcement", RoleStudent, Create, SubjectAnnouncement, nil, false},
		{"student cannot read users", RoleStudent, Read, SubjectUser, nil, false},
		{"teacher reads own group", RoleTeacher, Read, SubjectGroup, Attrs{FieldTeacherID: id}, true},
		{"teacher reads foreign group", RoleTeacher, Read, SubjectGroup, Attrs{FieldTeacherID: 9}, false},
		{"teacher reads own subject", RoleTeacher, Read, SubjectSubject, Attrs{FieldTeacherID: id}, true},
		{"teacher reads own timetable", RoleTeacher, Read, SubjectTimetable, Attrs{FieldTeacherID: id}, true},
		{"teacher adds own grade", RoleTeacher, Add, SubjectGrade, Attrs{FieldTeacherID: id}, true},
		{"teacher updates own grade", RoleTeacher, Update, SubjectGrade, Attrs{FieldTeacherID: id}, true},
		{"teacher manages own attendance", RoleTeacher, Restore, SubjectAttendance, Attrs{FieldTeacherID: id}, true},
		{"teacher foreign attendance", RoleTeacher, Read, SubjectAttendance, Attrs{FieldTeacherID: 9}, false},
		{"teacher cannot create group", RoleTeacher, Create, SubjectGroup, nil, false},
		{"unknown role reads announcement", "GUEST", Read, SubjectAnnouncement, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := For(Actor{ID: id, Role: tt.role})
			var inst Subject
			if tt.attrs != nil {
				inst = Instance(tt.typ, tt.attrs)
			}
			assert.Equal(t, tt.want, a.Can(tt.action, tt.typ, inst))
			assert.Equal(t, !tt.want, a.Cannot(tt.action, tt.typ, inst))
		})
	}
}

func TestConditionsAreConjunctive(t *testing.T) {
	a := &Ability{rules: []Rule{{
		Action:     Read,
		Subject:    SubjectGrade,
		Conditions: Conditions{FieldStudentID: 1, FieldTeacherID: 2},
	}}}

	assert.True(t, a.Can(Read, SubjectGrade, Instance(SubjectGrade, Attrs{FieldStudentID: 1, FieldTeacherID: 2})))
	assert.False(t, a.Can(Read, SubjectGrade, Instance(SubjectGrade, Attrs{FieldStudentID: 1})))
	assert.False(t, a.Can(Read, SubjectGrade, Instance(SubjectGrade, Attrs{FieldStudentID: 1, FieldTeacherID: 3})))
}

func TestTypeLevelQueryIgnoresConditions(t *testing.T) {
	a := For(Actor{ID: 3, Role: RoleTeacher})
	assert.True(t, a.Can(Add, SubjectGrade, nil))
	assert.False(t, a.Can(Read, SubjectGrade, nil))
}

func TestMismatchedInstanceTagIsDenied(t *testing.T) {
	a := For(Actor{ID: 7, Role: RoleStudent})
	assert.False(t, a.Can(Read, SubjectGrade, Instance(SubjectAttendance, Attrs{FieldStudentID: 7})))
	// Unconditional grants do not look at the tag.
	assert.True(t, a.Can(Read, SubjectAnnouncement, Instance(SubjectGrade, Attrs{FieldStudentID: 8})))
	assert.True(t, a.CanOn(Read, Instance(SubjectAttendance, Attrs{FieldStudentID: 7})))
	assert.False(t, a.CanOn(Read, nil))
}

func TestDecisionDistinguishesExplicitDenial(t *testing.T) {
	assert.Equal(t, ExplicitlyDenied, For(Actor{ID: 1, Role: "GUEST"}).Decide(Read, SubjectGrade, nil))
	assert.Equal(t, NoMatchingRule, For(Actor{ID: 1, Role: RoleStudent}).Decide(Delete, SubjectGrade, nil))
	assert.Equal(t, Allowed, For(Actor{ID: 1, Role: RoleStudent}).Decide(Read, SubjectSubject, nil))

	var nilAbility *Ability
	assert.Equal(t, NoMatchingRule, nilAbility.Decide(Read, SubjectSubject, nil))
}

func TestForIsPure(t *testing.T) {
	actor := Actor{ID: 11, Role: RoleTeacher}
	first, second := For(actor), For(actor)
	require.Equal(t, first.Rules(), second.Rules())

	for _, act := range allActions {
		for _, typ := range allTypes {
			for _, attrs := range []Attrs{nil, {FieldTeacherID: 11}, {FieldTeacherID: 12}, {FieldStudentID: 11}} {
				var inst Subject
				if attrs != nil {
					inst = Instance(typ, attrs)
				}
				assert.Equal(t, first.Can(act, typ, inst), second.Can(act, typ, inst))
			}
		}
	}
}

func TestEndToEndGradeScenario(t *testing.T) {
	student := For(Actor{ID: 7, Role: RoleStudent})
	assert.True(t, student.CanOn(Read, Instance(SubjectGrade, Attrs{FieldStudentID: 7})))
	assert.False(t, student.CanOn(Read, Instance(SubjectGrade, Attrs{FieldStudentID: 8})))

	teacher := For(Actor{ID: 3, Role: RoleTeacher})
	assert.True(t, teacher.CanOn(Add, Instance(SubjectGrade, Attrs{FieldTeacherID: 3})))
	assert.False(t, teacher.CanOn(Read, Instance(SubjectGroup, Attrs{FieldTeacherID: 9})))
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		want    SubjectType
		wantErr error
	}{
		{"user", Record{"email": "a@b.c", "role": "STUDENT"}, SubjectUser, nil},
		{"grade", Record{"gradeValue": 5, "studentId": 7}, SubjectGrade, nil},
		{"group", Record{"groupName": "1A", "studentId": 7}, SubjectGroup, nil},
		{"timetable", Record{"schedule": "mon"}, SubjectTimetable, nil},
		{"subject", Record{"subjectName": "Math"}, SubjectSubject, nil},
		{"attendance", Record{"status": "ABSENT", "studentId": 7}, SubjectAttendance, nil},
		{"unknown", Record{"value": 5}, SubjectAll, nil},
		{"grade and attendance", Record{"gradeValue": 5, "status": "x", "studentId": 7}, SubjectAll, ErrAmbiguousSubject},
		{"grade and group", Record{"gradeValue": 5, "groupName": "1A", "studentId": 7}, SubjectAll, ErrAmbiguousSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(tt.rec)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanRecord(t *testing.T) {
	student := For(Actor{ID: 7, Role: RoleStudent})
	admin := For(Actor{ID: 1, Role: RoleAdmin})

	var decoded Record
	require.NoError(t, json.Unmarshal([]byte(`{"gradeValue": 5, "studentId": 7}`), &decoded))
	assert.True(t, student.CanRecord(Read, decoded))

	assert.False(t, student.CanRecord(Read, Record{"gradeValue": 5, "studentId": 8}))
	assert.False(t, student.CanRecord(Read, Record{"gradeValue": 5, "studentId": "7"}))
	assert.False(t, student.CanRecord(Read, Record{"gradeValue": 5, "studentId": 7.5}))
	assert.True(t, student.CanRecord(Read, Record{"status": "ABSENT", "studentId": json.Number("7")}))

	untyped := Record{"value": 5}
	assert.False(t, student.CanRecord(Read, untyped))
	assert.True(t, admin.CanRecord(Read, untyped))

	ambiguous := Record{"gradeValue": 5, "status": "x", "studentId": 7}
	assert.False(t, student.CanRecord(Read, ambiguous))
	assert.False(t, admin.CanRecord(Read, ambiguous))
}
