package aspen

// ResourceSet carries a Statement's Resource or NotResource field. Matching
// is ARN-aware (segment-aware wildcarding) rather than a plain whole-string
// glob, per spec.md §4.1/§4.2.
type ResourceSet struct {
	Patterns []string
	Negated  bool
}

// NewResourceSet builds a positive (Resource) set.
func NewResourceSet(patterns ...string) ResourceSet {
	return ResourceSet{Patterns: patterns}
}

// NewNotResourceSet builds a negative (NotResource) set.
func NewNotResourceSet(patterns ...string) ResourceSet {
	return ResourceSet{Patterns: patterns, Negated: true}
}

func (r ResourceSet) anyMatches(resource string) bool {
	for _, p := range r.Patterns {
		if MatchARNPattern(p, resource) {
			return true
		}
	}
	return false
}

// Matches implements the Resource/NotResource gate.
func (r ResourceSet) Matches(resource string) bool {
	hit := r.anyMatches(resource)
	if r.Negated {
		return !hit
	}
	return hit
}

func (r ResourceSet) expandForVariables(req *Request, resolver VariableResolver) ResourceSet {
	out := ResourceSet{Patterns: make([]string, len(r.Patterns)), Negated: r.Negated}
	for i, p := range r.Patterns {
		out.Patterns[i] = ExpandVariables(p, req, resolver)
	}
	return out
}
