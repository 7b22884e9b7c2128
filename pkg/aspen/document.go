package aspen

// Policy is an ordered, immutable sequence of Statements bound to a
// PolicyVersion dialect (spec.md §3). Once constructed, a Policy is never
// mutated; Evaluate only reads it, so concurrent evaluations against the
// same Policy need no synchronization (spec.md §5).
type Policy struct {
	Version    PolicyVersion
	ID         string
	Statements []Statement
}

// NewPolicy builds a Policy, defaulting Version to Version2008 when unset,
// mirroring the JSON codec's default (spec.md §3, §4.5).
func NewPolicy(version PolicyVersion, id string, statements ...Statement) Policy {
	if version == "" {
		version = DefaultVersion
	}
	return Policy{Version: version, ID: id, Statements: statements}
}

// Evaluate implements spec.md §4.4's algorithm: every statement is tested
// independently; any matching Deny wins outright; otherwise any matching
// Allow wins; otherwise the request fails closed as DefaultDeny. Statement
// order is preserved on the Policy for diagnostics but doesn't affect the
// decision.
func (p Policy) Evaluate(req *Request) Decision {
	sawAllow := false
	for _, stmt := range p.Statements {
		if !stmt.Matches(req, p.Version) {
			continue
		}
		if stmt.Effect == Deny {
			return DecisionDeny
		}
		sawAllow = true
	}
	if sawAllow {
		return DecisionAllow
	}
	return DecisionDefaultDeny
}

// MatchingStatements returns every Statement that matches req, in document
// order, alongside the Effect each contributes — useful for diagnostics and
// policy simulation without re-deriving the final Decision's reasoning.
func (p Policy) MatchingStatements(req *Request) []Statement {
	var out []Statement
	for _, stmt := range p.Statements {
		if stmt.Matches(req, p.Version) {
			out = append(out, stmt)
		}
	}
	return out
}
