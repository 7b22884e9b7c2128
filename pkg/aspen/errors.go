// Package aspen implements the Aspen policy language: parsing, validation,
// representation, and evaluation of AWS IAM-style access-control policies.
package aspen

import "fmt"

// PolicyFormatError is returned when a policy document fails to parse or
// violates a structural invariant (e.g. both Action and NotAction present,
// an unknown condition operator name, or an empty collection where a
// non-empty one is required).
type PolicyFormatError struct {
	// Path identifies where in the document the error occurred, e.g.
	// "Statement[2].Condition.StringEquals".
	Path string
	// Reason is a short human-readable explanation.
	Reason string
}

func (e *PolicyFormatError) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func newFormatError(path, reason string, args ...any) *PolicyFormatError {
	if len(args) > 0 {
		reason = fmt.Sprintf(reason, args...)
	}
	return &PolicyFormatError{Path: path, Reason: reason}
}

// InvalidValueError is returned when an operand fails to parse into its
// operator's value space at programmatic-construction time (e.g. a
// NumericEquals operand that is not a valid decimal).
type InvalidValueError struct {
	Operator string
	Key      string
	Value    string
	Reason   string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %q for %s %s: %s", e.Value, e.Operator, e.Key, e.Reason)
}

// BuilderError is returned when a required field is missing during
// programmatic construction via a Builder.
type BuilderError struct {
	Field  string
	Reason string
}

func (e *BuilderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}
