package ability

// policyFunc declares the rules granted to a role.
type policyFunc func(b *builder, actor Actor)

// policies maps every role to its rule set. Roles without an entry fall
// through to denyAll.
var policies = map[Role]policyFunc{
	RoleAdmin:   adminPolicy,
	RoleStudent: studentPolicy,
	RoleTeacher: teacherPolicy,
}

func adminPolicy(b *builder, _ Actor) {
	b.can(Manage, SubjectAll, nil)
}

func studentPolicy(b *builder, actor Actor) {
	own := Conditions{FieldStudentID: actor.ID}

	b.can(Read, SubjectGrade, own)
	b.can(Read, SubjectGroup, own)
	b.can(Read, SubjectSubject, nil)
	// TODO: groupId is compared to the user id as existing clients expect;
	// replace with a group membership lookup once the intended rule is confirmed.
	b.can(Read, SubjectTimetable, Conditions{FieldGroupID: actor.ID})
	b.can(Read, SubjectAttendance, own)
	b.can(Update, SubjectAttendance, own)
	b.can(Read, SubjectAnnouncement, nil)
}

func teacherPolicy(b *builder, actor Actor) {
	own := Conditions{FieldTeacherID: actor.ID}

	b.can(Read, SubjectGroup, own)
	b.can(Read, SubjectSubject, own)
	b.can(Read, SubjectTimetable, own)
	b.can(Add, SubjectGrade, own)
	b.can(Update, SubjectGrade, own)
	b.can(Delete, SubjectGrade, own)
	b.can(Manage, SubjectAttendance, own)
	b.can(Manage, SubjectAnnouncement, nil)
}

func denyAll(b *builder, _ Actor) {
	b.cannot(Manage, SubjectAll, nil)
}
