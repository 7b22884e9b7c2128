package aspen

import (
	"regexp"
	"strings"
)

// VariableResolver resolves a policy-variable key (e.g. "aws:username") to
// its value against a specific request, returning ok=false if the key has
// no value in that request. It is the named external contract spec.md §6
// reserves for policy-variable substitution; DefaultVariableResolver below
// is the in-tree implementation this repo ships since no external provider
// is available in this retrieval pack (see DESIGN.md).
type VariableResolver interface {
	Resolve(key string, req *Request) (string, bool)
}

// DefaultVariableResolver resolves policy variables directly against a
// Request's context map, taking the first value of a multi-valued key (AWS
// IAM's own documented behavior when a variable refers to a multi-valued
// key).
type DefaultVariableResolver struct{}

func (DefaultVariableResolver) Resolve(key string, req *Request) (string, bool) {
	if req == nil {
		return "", false
	}
	values := req.contextLookup(key)
	if len(values) == 0 {
		return "", false
	}
	return values[0].stringForm(), true
}

var variablePattern = regexp.MustCompile(`\$\{([^}]*)\}`)

// ExpandVariables resolves every ${key} / ${key,'default'} occurrence in s
// against req using resolver. The escape forms ${*}, ${?}, and ${$} yield
// the literal metacharacter instead of a lookup. An unresolved variable
// with no default renders as the empty string. Version2008 documents never
// call this (the caller checks PolicyVersion.SupportsVariables first).
func ExpandVariables(s string, req *Request, resolver VariableResolver) string {
	if !strings.Contains(s, "${") {
		return s
	}
	if resolver == nil {
		resolver = DefaultVariableResolver{}
	}
	return variablePattern.ReplaceAllStringFunc(s, func(match string) string {
		inner := match[2 : len(match)-1]
		switch inner {
		case "*", "?", "$":
			return inner
		}

		key := inner
		def := ""
		hasDefault := false
		if idx := strings.Index(inner, ","); idx >= 0 {
			key = strings.TrimSpace(inner[:idx])
			def = strings.TrimSpace(inner[idx+1:])
			def = strings.Trim(def, "'")
			hasDefault = true
		}

		if val, ok := resolver.Resolve(key, req); ok {
			return val
		}
		if hasDefault {
			return def
		}
		return ""
	})
}
