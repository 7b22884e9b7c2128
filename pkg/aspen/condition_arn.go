package aspen

// compareARN implements ArnEquals/ArnLike (and their negated forms), using
// the same segment-aware ARN pattern matcher as resource matching (spec.md
// §4.3: "Use ARN-aware pattern matching").
func compareARN(op Operator, value, operand string) (matched bool, ok bool) {
	return MatchARNPattern(operand, value), true
}
