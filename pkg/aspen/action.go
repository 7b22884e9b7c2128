package aspen

// ActionSet carries a Statement's Action or NotAction field, collapsed into
// one carrier per design notes §9: Negated distinguishes which JSON key it
// came from. Patterns is always non-empty (spec.md §3 invariant).
type ActionSet struct {
	Patterns []string
	Negated  bool
}

// NewActionSet builds a positive (Action) set.
func NewActionSet(patterns ...string) ActionSet {
	return ActionSet{Patterns: patterns}
}

// NewNotActionSet builds a negative (NotAction) set.
func NewNotActionSet(patterns ...string) ActionSet {
	return ActionSet{Patterns: patterns, Negated: true}
}

// anyMatches reports whether action matches any pattern in the set,
// case-insensitively per spec.md §4.2.
func (a ActionSet) anyMatches(action string) bool {
	for _, p := range a.Patterns {
		if MatchPattern(p, action, false) {
			return true
		}
	}
	return false
}

// Matches implements the Action/NotAction gate: for a positive set, at
// least one pattern must match; for NotAction, none may match.
func (a ActionSet) Matches(action string) bool {
	hit := a.anyMatches(action)
	if a.Negated {
		return !hit
	}
	return hit
}

// expandForVariables resolves ${...} substitutions in every pattern.
// Statement.Matches does not call it: action patterns are matched without
// variable substitution in every policy version.
func (a ActionSet) expandForVariables(req *Request, resolver VariableResolver) ActionSet {
	out := ActionSet{Patterns: make([]string, len(a.Patterns)), Negated: a.Negated}
	for i, p := range a.Patterns {
		out.Patterns[i] = ExpandVariables(p, req, resolver)
	}
	return out
}
