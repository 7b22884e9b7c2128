package aspen

import (
	"encoding/base64"
	"net"
	"strconv"
)

// PolicyBuilder assembles a Policy programmatically, as an alternative to
// ParsePolicy for callers constructing documents in code (spec.md §6's
// "Builder" collaborator).
type PolicyBuilder struct {
	version    PolicyVersion
	id         string
	statements []Statement
	err        error
}

// NewPolicyBuilder starts a PolicyBuilder, defaulting Version to
// Version2008 until WithVersion overrides it.
func NewPolicyBuilder() *PolicyBuilder {
	return &PolicyBuilder{version: DefaultVersion}
}

// WithID sets the policy's Id field.
func (b *PolicyBuilder) WithID(id string) *PolicyBuilder {
	b.id = id
	return b
}

// WithVersion sets the policy-language dialect.
func (b *PolicyBuilder) WithVersion(v PolicyVersion) *PolicyBuilder {
	if !v.valid() {
		b.err = &BuilderError{Field: "Version", Reason: "unsupported policy version: " + string(v)}
		return b
	}
	b.version = v
	return b
}

// AddStatement appends a Statement built via a *StatementBuilder, carrying
// forward the first error either builder encountered.
func (b *PolicyBuilder) AddStatement(sb *StatementBuilder) *PolicyBuilder {
	stmt, err := sb.Build()
	if err != nil && b.err == nil {
		b.err = err
	}
	if err == nil {
		b.statements = append(b.statements, stmt)
	}
	return b
}

// Build validates and returns the assembled Policy, or the first
// *BuilderError/*InvalidValueError/*PolicyFormatError encountered.
func (b *PolicyBuilder) Build() (Policy, error) {
	if b.err != nil {
		return Policy{}, b.err
	}
	if len(b.statements) == 0 {
		return Policy{}, &BuilderError{Field: "Statement", Reason: "at least one statement is required"}
	}
	return NewPolicy(b.version, b.id, b.statements...), nil
}

// StatementBuilder assembles a single Statement.
type StatementBuilder struct {
	sid          string
	effect       Effect
	effectSet    bool
	action       *ActionSet
	resource     *ResourceSet
	principal    *PrincipalClause
	condition    ConditionBlock
	err          error
}

// NewStatementBuilder starts a StatementBuilder.
func NewStatementBuilder() *StatementBuilder {
	return &StatementBuilder{condition: NewConditionBlock()}
}

// WithSid sets the statement's Sid.
func (b *StatementBuilder) WithSid(sid string) *StatementBuilder {
	b.sid = sid
	return b
}

// Allow sets Effect to Allow.
func (b *StatementBuilder) Allow() *StatementBuilder { return b.withEffect(Allow) }

// Deny sets Effect to Deny.
func (b *StatementBuilder) Deny() *StatementBuilder { return b.withEffect(Deny) }

func (b *StatementBuilder) withEffect(e Effect) *StatementBuilder {
	b.effect = e
	b.effectSet = true
	return b
}

// WithActions sets a positive Action set. Mutually exclusive with
// WithNotActions; the later call wins.
func (b *StatementBuilder) WithActions(patterns ...string) *StatementBuilder {
	set := NewActionSet(patterns...)
	b.action = &set
	return b
}

// WithNotActions sets a NotAction set.
func (b *StatementBuilder) WithNotActions(patterns ...string) *StatementBuilder {
	set := NewNotActionSet(patterns...)
	b.action = &set
	return b
}

// WithResources sets a positive Resource set.
func (b *StatementBuilder) WithResources(patterns ...string) *StatementBuilder {
	set := NewResourceSet(patterns...)
	b.resource = &set
	return b
}

// WithNotResources sets a NotResource set.
func (b *StatementBuilder) WithNotResources(patterns ...string) *StatementBuilder {
	set := NewNotResourceSet(patterns...)
	b.resource = &set
	return b
}

// WithPrincipal sets a positive Principal clause.
func (b *StatementBuilder) WithPrincipal(set PrincipalSet) *StatementBuilder {
	b.principal = &PrincipalClause{Set: set}
	return b
}

// WithNotPrincipal sets a NotPrincipal clause.
func (b *StatementBuilder) WithNotPrincipal(set PrincipalSet) *StatementBuilder {
	b.principal = &PrincipalClause{Set: set, Negated: true}
	return b
}

// WithCondition adds an operator+key+operands entry, validating that every
// operand parses into the operator's value space. A parse failure records
// an *InvalidValueError that Build returns.
func (b *StatementBuilder) WithCondition(operatorName, key string, operands ...string) *StatementBuilder {
	op, err := ParseOperatorName(operatorName)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return b
	}
	for _, operand := range operands {
		if reason, bad := invalidOperand(op, operand); bad {
			if b.err == nil {
				b.err = &InvalidValueError{Operator: operatorName, Key: key, Value: operand, Reason: reason}
			}
			return b
		}
	}
	b.condition.Add(operatorName, key, operands...)
	return b
}

// invalidOperand reports whether operand fails to parse into op's value
// space, and why.
func invalidOperand(op Operator, operand string) (reason string, bad bool) {
	switch op.ValueSpace {
	case ValueSpaceNumeric:
		if _, err := strconv.ParseFloat(operand, 64); err != nil {
			return "not a valid decimal number", true
		}
	case ValueSpaceDate:
		if _, ok := parseDateOperand(operand); !ok {
			return "not a valid RFC 3339 timestamp or epoch-seconds number", true
		}
	case ValueSpaceBoolean:
		if _, err := strconv.ParseBool(operand); err != nil {
			return "not a valid boolean", true
		}
	case ValueSpaceBinary:
		if _, err := base64.StdEncoding.DecodeString(operand); err != nil {
			return "not valid base64", true
		}
	case ValueSpaceIP:
		if _, _, err := net.ParseCIDR(operand); err != nil {
			if net.ParseIP(operand) == nil {
				return "not a valid IP address or CIDR block", true
			}
		}
	case ValueSpaceNull:
		if _, err := strconv.ParseBool(operand); err != nil {
			return "Null operand must be \"true\" or \"false\"", true
		}
	}
	return "", false
}

// Build validates and returns the assembled Statement.
func (b *StatementBuilder) Build() (Statement, error) {
	if b.err != nil {
		return Statement{}, b.err
	}
	if !b.effectSet {
		return Statement{}, &BuilderError{Field: "Effect", Reason: "Allow() or Deny() is required"}
	}
	if b.action == nil {
		return Statement{}, &BuilderError{Field: "Action", Reason: "WithActions or WithNotActions is required"}
	}
	if len(b.action.Patterns) == 0 {
		return Statement{}, &BuilderError{Field: "Action", Reason: "must be non-empty"}
	}
	if b.resource == nil {
		return Statement{}, &BuilderError{Field: "Resource", Reason: "WithResources or WithNotResources is required"}
	}
	if len(b.resource.Patterns) == 0 {
		return Statement{}, &BuilderError{Field: "Resource", Reason: "must be non-empty"}
	}

	return Statement{
		Sid:       b.sid,
		Effect:    b.effect,
		Action:    *b.action,
		Resource:  *b.resource,
		Principal: b.principal,
		Condition: b.condition,
	}, nil
}
