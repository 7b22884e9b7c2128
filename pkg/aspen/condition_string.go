package aspen

import "strings"

// compareString implements the String value-space comparisons: exact
// (case-sensitive or not) equality, and StringLike wildcard matching
// (case-sensitive, via the AWS pattern matcher, spec.md §4.3).
func compareString(op Operator, value, operand string) (matched bool, ok bool) {
	switch op.Comparison {
	case CompareEquals:
		return value == operand, true
	case CompareEqualsIgnoreCase:
		return strings.EqualFold(value, operand), true
	case CompareLike:
		return MatchPattern(operand, value, true), true
	default:
		return false, false
	}
}
