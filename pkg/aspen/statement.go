package aspen

// PrincipalClause carries a Statement's Principal or NotPrincipal field.
// A nil *PrincipalClause on a Statement means neither was present
// (identity-policy mode, spec.md §3).
type PrincipalClause struct {
	Set     PrincipalSet
	Negated bool
}

func (p PrincipalClause) expandForVariables(req *Request, resolver VariableResolver) PrincipalClause {
	expanded := make(PrincipalSet, len(p.Set))
	for kind, ids := range p.Set {
		out := make([]string, len(ids))
		for i, id := range ids {
			out[i] = ExpandVariables(id, req, resolver)
		}
		expanded[kind] = out
	}
	return PrincipalClause{Set: expanded, Negated: p.Negated}
}

// Statement binds an Effect to who/what/where and an optional Condition
// block, and exposes Matches to test it against a single Request
// (spec.md §3, §4.2).
type Statement struct {
	Sid       string
	Effect    Effect
	Action    ActionSet
	Resource  ResourceSet
	Principal *PrincipalClause // nil => identity-policy mode, no principal gate
	Condition ConditionBlock
}

// Matches evaluates the four gates in order — principal, action, resource,
// condition — short-circuiting on the first failure, and reports whether
// the statement applies to req. version controls whether ${...} policy
// variables are resolved in resource/principal patterns and condition
// operands before matching (spec.md §4.1, §4.2).
func (s Statement) Matches(req *Request, version PolicyVersion) bool {
	resolver := req.resolver()

	if s.Principal != nil {
		principal := s.Principal
		if version.SupportsVariables() {
			expanded := principal.expandForVariables(req, resolver)
			principal = &expanded
		}
		hit := principal.Set.Matches(req.Principal)
		if principal.Negated {
			hit = !hit
		}
		if !hit {
			return false
		}
	}

	if !s.Action.Matches(req.Action) {
		return false
	}

	resource := s.Resource
	if version.SupportsVariables() {
		resource = resource.expandForVariables(req, resolver)
	}
	if !resource.Matches(req.Resource) {
		return false
	}

	if len(s.Condition) > 0 && !s.Condition.evaluate(req, version, resolver) {
		return false
	}

	return true
}
