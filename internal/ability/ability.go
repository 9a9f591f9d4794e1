// Package ability resolves what an authenticated user may do.
//
// A role maps to a list of rules, each granting a set of actions on a subject
// type, optionally restricted by equality conditions on the concrete
// instance. Anything not granted is denied.
package ability

// Rule is a single grant (or, when Inverted, an explicit denial).
type Rule struct {
	Action     Action
	Subject    SubjectType
	Conditions Conditions
	Inverted   bool
}

func (r Rule) matchesAction(a Action) bool {
	return r.Action == a || r.Action == Manage
}

func (r Rule) matchesSubject(s SubjectType) bool {
	return r.Subject == s || r.Subject == SubjectAll
}

// matchesInstance reports whether every condition holds on inst. A nil
// instance asks about the subject type as a whole, so conditions are ignored.
// Conditions never hold on an instance tagged with another type than
// subjectType; unconditional rules ignore the tag.
func (r Rule) matchesInstance(subjectType SubjectType, inst Subject) bool {
	if len(r.Conditions) == 0 || inst == nil {
		return true
	}
	if inst.SubjectType() != subjectType {
		return false
	}
	for field, want := range r.Conditions {
		got, ok := inst.Attr(field)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Decision is the outcome of evaluating a query against a rule set.
type Decision int

const (
	NoMatchingRule Decision = iota
	Allowed
	ExplicitlyDenied
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case ExplicitlyDenied:
		return "explicitly_denied"
	default:
		return "no_matching_rule"
	}
}

// Ability is the capability set of one actor.
type Ability struct {
	actor Actor
	rules []Rule
}

// For builds the capability set for actor. It is a pure function of the
// actor's id and role.
func For(actor Actor) *Ability {
	b := &builder{}
	policy, ok := policies[actor.Role]
	if !ok {
		policy = denyAll
	}
	policy(b, actor)
	return &Ability{actor: actor, rules: b.rules}
}

// Actor returns the actor the rules were built for.
func (a *Ability) Actor() Actor {
	return a.actor
}

// Rules returns a copy of the rule set.
func (a *Ability) Rules() []Rule {
	out := make([]Rule, len(a.rules))
	copy(out, a.rules)
	return out
}

// Decide evaluates action on subjectType, optionally against a concrete
// instance.
func (a *Ability) Decide(action Action, subjectType SubjectType, inst Subject) Decision {
	if a == nil {
		return NoMatchingRule
	}

	denied := false
	for _, r := range a.rules {
		if !r.matchesAction(action) || !r.matchesSubject(subjectType) || !r.matchesInstance(subjectType, inst) {
			continue
		}
		if !r.Inverted {
			return Allowed
		}
		denied = true
	}
	if denied {
		return ExplicitlyDenied
	}
	return NoMatchingRule
}

// Can reports whether action is permitted on subjectType (and inst, if given).
func (a *Ability) Can(action Action, subjectType SubjectType, inst Subject) bool {
	return a.Decide(action, subjectType, inst) == Allowed
}

// Cannot is the negation of Can.
func (a *Ability) Cannot(action Action, subjectType SubjectType, inst Subject) bool {
	return !a.Can(action, subjectType, inst)
}

// CanOn checks action against an instance using the instance's own type tag.
func (a *Ability) CanOn(action Action, inst Subject) bool {
	if inst == nil {
		return false
	}
	return a.Can(action, inst.SubjectType(), inst)
}

// CanRecord checks action against untagged data whose type is inferred from
// its fields. Ambiguous records are denied.
func (a *Ability) CanRecord(action Action, rec Record) bool {
	typ, err := Detect(rec)
	if err != nil {
		return false
	}
	return a.Can(action, typ, recordSubject{typ: typ, rec: rec})
}

type builder struct {
	rules []Rule
}

func (b *builder) can(action Action, subject SubjectType, cond Conditions) {
	b.rules = append(b.rules, Rule{Action: action, Subject: subject, Conditions: cond})
}

func (b *builder) cannot(action Action, subject SubjectType, cond Conditions) {
	b.rules = append(b.rules, Rule{Action: action, Subject: subject, Conditions: cond, Inverted: true})
}
