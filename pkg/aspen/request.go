package aspen

import "strings"

// Request is the input to a single authorization decision: a principal
// attempting an action on a resource, with a bag of typed, potentially
// multi-valued context values available to condition operators.
type Request struct {
	Principal PrincipalIdentity
	Action    string
	Resource  string

	// context is keyed case-insensitively (AWS context keys compare
	// case-insensitively, spec.md §3) and each entry keeps the casing of the
	// key as it was passed to the most recent WithContext call.
	context map[string]contextEntry

	// VariableResolver overrides DefaultVariableResolver for this
	// request's policy-variable substitution, if set.
	VariableResolver VariableResolver
}

type contextEntry struct {
	key    string
	values []ContextValue
}

// NewRequest builds a Request for the given principal/action/resource with
// an empty context.
func NewRequest(principal PrincipalIdentity, action, resource string) *Request {
	return &Request{
		Principal: principal,
		Action:    action,
		Resource:  resource,
		context:   make(map[string]contextEntry),
	}
}

// WithContext sets (replacing any existing values) a context key to one or
// more typed values and returns the Request for chaining.
func (r *Request) WithContext(key string, values ...ContextValue) *Request {
	if r.context == nil {
		r.context = make(map[string]contextEntry)
	}
	r.context[strings.ToLower(key)] = contextEntry{key: key, values: values}
	return r
}

// HasContext reports whether key is present in the request context at all.
// Condition evaluation does not call it; it reads the context through
// contextLookup.
func (r *Request) HasContext(key string) bool {
	if r == nil {
		return false
	}
	_, ok := r.context[strings.ToLower(key)]
	return ok
}

// contextLookup returns the values for key, or nil if absent.
func (r *Request) contextLookup(key string) []ContextValue {
	if r == nil {
		return nil
	}
	entry, ok := r.context[strings.ToLower(key)]
	if !ok {
		return nil
	}
	return entry.values
}

// ContextKeys returns every context key present on the request, in no
// particular order.
func (r *Request) ContextKeys() []string {
	keys := make([]string, 0, len(r.context))
	for _, entry := range r.context {
		keys = append(keys, entry.key)
	}
	return keys
}

func (r *Request) resolver() VariableResolver {
	if r != nil && r.VariableResolver != nil {
		return r.VariableResolver
	}
	return DefaultVariableResolver{}
}
