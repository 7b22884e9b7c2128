package aspen

import "strconv"

// evalNull implements the Null operator: "true" matches iff the context key
// is absent, "false" matches iff it is present (spec.md §4.3). Null is the
// one base operator that inspects presence itself rather than comparing
// values, so the missing-key short-circuit in evaluateConditionEntry
// dispatches here directly instead of going through compareValue.
// Multiple operands OR together, same as every other base operator.
func evalNull(operands []string, missing bool) bool {
	for _, operand := range operands {
		want, err := strconv.ParseBool(operand)
		if err != nil {
			continue
		}
		if want == missing {
			return true
		}
	}
	return false
}
