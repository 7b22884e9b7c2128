package aspen

// PolicyVersion selects the policy-language dialect a document is written
// against. The only observable difference is that Version2012 enables
// policy-variable substitution inside string-valued condition operands and
// resource/principal patterns (see VariableResolver).
type PolicyVersion string

const (
	Version2008 PolicyVersion = "2008-10-17"
	Version2012 PolicyVersion = "2012-10-17"

	// DefaultVersion is assumed when a document omits Version entirely.
	DefaultVersion = Version2008
)

func (v PolicyVersion) valid() bool {
	return v == Version2008 || v == Version2012
}

// SupportsVariables reports whether this dialect resolves ${...} policy
// variables before pattern matching.
func (v PolicyVersion) SupportsVariables() bool {
	return v == Version2012
}

// Effect is the outcome a matching Statement contributes to evaluation.
type Effect string

const (
	Allow Effect = "Allow"
	Deny  Effect = "Deny"
)

func (e Effect) valid() bool {
	return e == Allow || e == Deny
}

// Decision is the final outcome of evaluating a Policy against a Request.
type Decision string

const (
	DecisionAllow      Decision = "Allow"
	DecisionDeny       Decision = "Deny"
	DecisionDefaultDeny Decision = "DefaultDeny"
)
