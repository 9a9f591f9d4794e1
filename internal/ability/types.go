package ability

// Role is the closed set of user roles known to the policy table.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

// Roles lists every declared role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleTeacher, RoleStudent}
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	for _, known := range Roles() {
		if r == known {
			return true
		}
	}
	return false
}

// Action is an operation a rule may grant.
type Action string

const (
	Manage     Action = "manage" // wildcard: matches every action
	Read       Action = "read"
	Create     Action = "create"
	Update     Action = "update"
	Delete     Action = "delete"
	Add        Action = "add"
	AddTo      Action = "addTo"
	RemoveFrom Action = "removeFrom"
	Restore    Action = "restore"
	All        Action = "all"
)

// SubjectType is the domain noun an action is performed against.
type SubjectType string

const (
	SubjectUser         SubjectType = "User"
	SubjectSession      SubjectType = "Session"
	SubjectSubject      SubjectType = "Subject"
	SubjectGroup        SubjectType = "Group"
	SubjectGrade        SubjectType = "Grade"
	SubjectTimetable    SubjectType = "Timetable"
	SubjectAttendance   SubjectType = "Attendance"
	SubjectAnnouncement SubjectType = "Announcement"
	SubjectAll          SubjectType = "all" // wildcard: matches every subject type
)

// Field names an instance attribute that conditions may constrain.
type Field string

const (
	FieldStudentID Field = "studentId"
	FieldTeacherID Field = "teacherId"
	FieldGroupID   Field = "groupId"
)

// Conditions is a conjunction of equality constraints.
type Conditions map[Field]int

// Actor is the minimal view of an authenticated user the policy needs.
type Actor struct {
	ID   int
	Role Role
}

// Subject is a concrete instance carrying its own type tag.
type Subject interface {
	SubjectType() SubjectType
	Attr(f Field) (int, bool)
}

// Attrs is a plain attribute set used by Instance.
type Attrs map[Field]int

type tagged struct {
	typ   SubjectType
	attrs Attrs
}

func (t tagged) SubjectType() SubjectType { return t.typ }

func (t tagged) Attr(f Field) (int, bool) {
	v, ok := t.attrs[f]
	return v, ok
}

// Instance builds a tagged subject from known attributes, typically route
// parameters identifying the records a request is about.
func Instance(typ SubjectType, attrs Attrs) Subject {
	return tagged{typ: typ, attrs: attrs}
}
