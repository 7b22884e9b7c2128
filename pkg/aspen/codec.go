package aspen

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ParsePolicy decodes a JSON Aspen policy document, accepting every
// surface tolerance spec.md §4.5 documents (scalar-or-array for
// Action/Resource/Principal.<kind>, Principal "*", single-or-array
// Statement, absent Condition/Version) and enforcing the structural
// invariants of §3 (mutually exclusive Action/NotAction etc., non-empty
// collections, closed condition-operator set). Any violation yields a
// *PolicyFormatError.
func ParsePolicy(data []byte) (Policy, error) {
	var doc policyDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return Policy{}, newFormatError("", "invalid JSON: %v", err)
	}
	return doc.toPolicy()
}

// SerializePolicy encodes p to its canonical JSON form: single-element
// Action/Resource/Principal collections are emitted as bare scalars,
// everything else as arrays. Byte-exact round-trip with the original input
// is not guaranteed (spec.md §4.5); semantic round-trip (parse(serialize(p))
// evaluates identically to p) is.
func SerializePolicy(p Policy) ([]byte, error) {
	return json.Marshal(policyDocFromPolicy(p))
}

// MarshalJSON makes Policy a drop-in json.Marshaler.
func (p Policy) MarshalJSON() ([]byte, error) { return SerializePolicy(p) }

// UnmarshalJSON makes *Policy a drop-in json.Unmarshaler.
func (p *Policy) UnmarshalJSON(data []byte) error {
	parsed, err := ParsePolicy(data)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// --- wire-format types -----------------------------------------------------

// stringOrSlice decodes either a bare JSON string/number/bool or an array
// of such scalars into a []string, per spec.md §4.5. An empty array decodes
// to an empty slice; empty collections are rejected where each statement is
// assembled from its wire form.
type stringOrSlice []string

func (s *stringOrSlice) UnmarshalJSON(data []byte) error {
	var single any
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	switch v := single.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			str, err := scalarToString(elem)
			if err != nil {
				return err
			}
			out = append(out, str)
		}
		*s = out
		return nil
	default:
		str, err := scalarToString(v)
		if err != nil {
			return err
		}
		*s = []string{str}
		return nil
	}
}

func scalarToString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case bool:
		if t {
			return "true", nil
		}
		return "false", nil
	case float64:
		return strconvFloat(t), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

// strconvFloat formats a JSON number the way AWS condition operands are
// written: integral values without a trailing ".0".
func strconvFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

// marshalCanonical emits a scalar for a single-element sequence, an array
// otherwise.
func marshalCanonical(values []string) ([]byte, error) {
	if len(values) == 1 {
		return json.Marshal(values[0])
	}
	return json.Marshal(values)
}

// principalDoc decodes either the literal "*" or an object keyed by
// PrincipalKind.
type principalDoc struct {
	any   bool
	kinds map[PrincipalKind]stringOrSlice
}

func (p *principalDoc) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		if asString != "*" {
			return newFormatError("Principal", "bare string Principal must be \"*\", got %q", asString)
		}
		p.any = true
		return nil
	}

	var asObject map[string]stringOrSlice
	if err := json.Unmarshal(data, &asObject); err != nil {
		return newFormatError("Principal", "must be \"*\" or an object: %v", err)
	}
	p.kinds = make(map[PrincipalKind]stringOrSlice, len(asObject))
	for k, v := range asObject {
		kind := PrincipalKind(k)
		if !kind.valid() {
			return newFormatError("Principal", "unknown principal kind: %s", k)
		}
		p.kinds[kind] = v
	}
	return nil
}

func (p principalDoc) toSet() (PrincipalSet, error) {
	if p.any {
		return AnyPrincipal(), nil
	}
	if len(p.kinds) == 0 {
		return nil, newFormatError("Principal", "at least one principal kind is required")
	}
	set := make(PrincipalSet, len(p.kinds))
	for kind, values := range p.kinds {
		if len(values) == 0 {
			return nil, newFormatError("Principal."+string(kind), "must be non-empty")
		}
		set[kind] = []string(values)
	}
	return set, nil
}

func principalDocFromSet(set PrincipalSet) principalDoc {
	if set.isWildcardAny() && len(set) == 1 && len(set[PrincipalAWS]) == 1 {
		return principalDoc{any: true}
	}
	kinds := make(map[PrincipalKind]stringOrSlice, len(set))
	for kind, values := range set {
		kinds[kind] = stringOrSlice(values)
	}
	return principalDoc{kinds: kinds}
}

func (p principalDoc) MarshalJSON() ([]byte, error) {
	if p.any {
		return json.Marshal("*")
	}
	kindNames := make([]string, 0, len(p.kinds))
	for k := range p.kinds {
		kindNames = append(kindNames, string(k))
	}
	sort.Strings(kindNames)

	out := make(map[string]json.RawMessage, len(p.kinds))
	for _, name := range kindNames {
		raw, err := marshalCanonical(p.kinds[PrincipalKind(name)])
		if err != nil {
			return nil, err
		}
		out[name] = raw
	}
	return json.Marshal(out)
}

// conditionOperand decodes the operand sequence under a single operator+key
// pair, reusing stringOrSlice's scalar-or-array tolerance.
type conditionOperand = stringOrSlice

type statementDoc struct {
	Sid          string                             `json:"Sid,omitempty"`
	Effect       string                             `json:"Effect"`
	Action       *stringOrSlice                     `json:"Action,omitempty"`
	NotAction    *stringOrSlice                     `json:"NotAction,omitempty"`
	Resource     *stringOrSlice                     `json:"Resource,omitempty"`
	NotResource  *stringOrSlice                     `json:"NotResource,omitempty"`
	Principal    *principalDoc                      `json:"Principal,omitempty"`
	NotPrincipal *principalDoc                      `json:"NotPrincipal,omitempty"`
	Condition    map[string]map[string]conditionOperand `json:"Condition,omitempty"`
}

// statementList decodes a single Statement object or an array of them
// (spec.md §4.5).
type statementList []statementDoc

func (l *statementList) UnmarshalJSON(data []byte) error {
	var single statementDoc
	if err := json.Unmarshal(data, &single); err == nil {
		*l = statementList{single}
		return nil
	}
	var multi []statementDoc
	if err := json.Unmarshal(data, &multi); err != nil {
		return err
	}
	*l = multi
	return nil
}

type policyDoc struct {
	Version   string        `json:"Version,omitempty"`
	ID        string        `json:"Id,omitempty"`
	Statement statementList `json:"Statement"`
}

func (d policyDoc) toPolicy() (Policy, error) {
	version := PolicyVersion(d.Version)
	if version == "" {
		version = DefaultVersion
	}
	if !version.valid() {
		return Policy{}, newFormatError("Version", "unsupported policy version: %s", d.Version)
	}

	if len(d.Statement) == 0 {
		return Policy{}, newFormatError("Statement", "at least one statement is required")
	}

	statements := make([]Statement, 0, len(d.Statement))
	for i, sd := range d.Statement {
		stmt, err := sd.toStatement(i)
		if err != nil {
			return Policy{}, err
		}
		statements = append(statements, stmt)
	}

	return Policy{Version: version, ID: d.ID, Statements: statements}, nil
}

func (sd statementDoc) toStatement(index int) (Statement, error) {
	path := fmt.Sprintf("Statement[%d]", index)

	effect := Effect(sd.Effect)
	if !effect.valid() {
		return Statement{}, newFormatError(path+".Effect", "must be Allow or Deny, got %q", sd.Effect)
	}

	if sd.Action != nil && sd.NotAction != nil {
		return Statement{}, newFormatError(path, "must not have both Action and NotAction")
	}
	if sd.Action == nil && sd.NotAction == nil {
		return Statement{}, newFormatError(path, "must have exactly one of Action or NotAction")
	}
	var actions ActionSet
	if sd.Action != nil {
		if len(*sd.Action) == 0 {
			return Statement{}, newFormatError(path+".Action", "must be non-empty")
		}
		actions = NewActionSet(*sd.Action...)
	} else {
		if len(*sd.NotAction) == 0 {
			return Statement{}, newFormatError(path+".NotAction", "must be non-empty")
		}
		actions = NewNotActionSet(*sd.NotAction...)
	}

	if sd.Resource != nil && sd.NotResource != nil {
		return Statement{}, newFormatError(path, "must not have both Resource and NotResource")
	}
	if sd.Resource == nil && sd.NotResource == nil {
		return Statement{}, newFormatError(path, "must have exactly one of Resource or NotResource")
	}
	var resources ResourceSet
	if sd.Resource != nil {
		if len(*sd.Resource) == 0 {
			return Statement{}, newFormatError(path+".Resource", "must be non-empty")
		}
		resources = NewResourceSet(*sd.Resource...)
	} else {
		if len(*sd.NotResource) == 0 {
			return Statement{}, newFormatError(path+".NotResource", "must be non-empty")
		}
		resources = NewNotResourceSet(*sd.NotResource...)
	}

	if sd.Principal != nil && sd.NotPrincipal != nil {
		return Statement{}, newFormatError(path, "must not have both Principal and NotPrincipal")
	}
	var principal *PrincipalClause
	if sd.Principal != nil {
		set, err := sd.Principal.toSet()
		if err != nil {
			return Statement{}, err
		}
		principal = &PrincipalClause{Set: set}
	} else if sd.NotPrincipal != nil {
		set, err := sd.NotPrincipal.toSet()
		if err != nil {
			return Statement{}, err
		}
		principal = &PrincipalClause{Set: set, Negated: true}
	}

	condition := NewConditionBlock()
	for operatorName, byKey := range sd.Condition {
		if _, err := ParseOperatorName(operatorName); err != nil {
			return Statement{}, newFormatError(path+".Condition", "unknown condition operator: %s", operatorName)
		}
		if len(byKey) == 0 {
			return Statement{}, newFormatError(path+".Condition."+operatorName, "must have at least one context key")
		}
		for key, operands := range byKey {
			if key == "" {
				return Statement{}, newFormatError(path+".Condition."+operatorName, "context key must be non-empty")
			}
			if len(operands) == 0 {
				return Statement{}, newFormatError(path+".Condition."+operatorName+"."+key, "must be non-empty")
			}
			condition.Add(operatorName, key, []string(operands)...)
		}
	}

	return Statement{
		Sid:       sd.Sid,
		Effect:    effect,
		Action:    actions,
		Resource:  resources,
		Principal: principal,
		Condition: condition,
	}, nil
}

func policyDocFromPolicy(p Policy) policyDoc {
	statements := make(statementList, 0, len(p.Statements))
	for _, stmt := range p.Statements {
		statements = append(statements, statementDocFromStatement(stmt))
	}
	return policyDoc{Version: string(p.Version), ID: p.ID, Statement: statements}
}

func statementDocFromStatement(s Statement) statementDoc {
	sd := statementDoc{Sid: s.Sid, Effect: string(s.Effect)}

	actions := stringOrSlice(s.Action.Patterns)
	if s.Action.Negated {
		sd.NotAction = &actions
	} else {
		sd.Action = &actions
	}

	resources := stringOrSlice(s.Resource.Patterns)
	if s.Resource.Negated {
		sd.NotResource = &resources
	} else {
		sd.Resource = &resources
	}

	if s.Principal != nil {
		doc := principalDocFromSet(s.Principal.Set)
		if s.Principal.Negated {
			sd.NotPrincipal = &doc
		} else {
			sd.Principal = &doc
		}
	}

	if len(s.Condition) > 0 {
		sd.Condition = make(map[string]map[string]conditionOperand, len(s.Condition))
		for operator, byKey := range s.Condition {
			keys := make(map[string]conditionOperand, len(byKey))
			for key, values := range byKey {
				keys[key] = conditionOperand(values)
			}
			sd.Condition[operator] = keys
		}
	}

	return sd
}

// MarshalJSON emits the canonical scalar-or-array form for Action/
// NotAction/Resource/NotResource.
func (sd statementDoc) MarshalJSON() ([]byte, error) {
	type alias struct {
		Sid          string                                  `json:"Sid,omitempty"`
		Effect       string                                  `json:"Effect"`
		Action       json.RawMessage                         `json:"Action,omitempty"`
		NotAction    json.RawMessage                         `json:"NotAction,omitempty"`
		Resource     json.RawMessage                         `json:"Resource,omitempty"`
		NotResource  json.RawMessage                         `json:"NotResource,omitempty"`
		Principal    *principalDoc                           `json:"Principal,omitempty"`
		NotPrincipal *principalDoc                           `json:"NotPrincipal,omitempty"`
		Condition    map[string]map[string]conditionOperand `json:"Condition,omitempty"`
	}

	a := alias{Sid: sd.Sid, Effect: sd.Effect, Principal: sd.Principal, NotPrincipal: sd.NotPrincipal, Condition: sd.Condition}

	var err error
	if sd.Action != nil {
		if a.Action, err = marshalCanonical(*sd.Action); err != nil {
			return nil, err
		}
	}
	if sd.NotAction != nil {
		if a.NotAction, err = marshalCanonical(*sd.NotAction); err != nil {
			return nil, err
		}
	}
	if sd.Resource != nil {
		if a.Resource, err = marshalCanonical(*sd.Resource); err != nil {
			return nil, err
		}
	}
	if sd.NotResource != nil {
		if a.NotResource, err = marshalCanonical(*sd.NotResource); err != nil {
			return nil, err
		}
	}

	return json.Marshal(a)
}

// MarshalJSON always emits the array form, even for a single statement:
// AWS accepts a scalar Statement on input but this package emits only the
// array form on output for schema stability
// (consumers that needed scalar output for a single statement can use
// statementList[0] directly).
func (l statementList) MarshalJSON() ([]byte, error) {
	docs := make([]statementDoc, len(l))
	copy(docs, l)
	return json.Marshal([]statementDoc(docs))
}
