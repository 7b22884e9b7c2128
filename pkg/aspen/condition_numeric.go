package aspen

import "strconv"

// compareNumeric implements the Numeric value space: operands and values
// are parsed as decimal (spec.md §4.3); a parse failure on either side
// degrades the comparison to false without aborting evaluation (spec.md
// §4.3/§7).
func compareNumeric(op Operator, value, operand string) (matched bool, ok bool) {
	v, err1 := strconv.ParseFloat(value, 64)
	o, err2 := strconv.ParseFloat(operand, 64)
	if err1 != nil || err2 != nil {
		return false, false
	}

	switch op.Comparison {
	case CompareEquals:
		return v == o, true
	case CompareLessThan:
		return v < o, true
	case CompareLessThanEquals:
		return v <= o, true
	case CompareGreaterThan:
		return v > o, true
	case CompareGreaterThanEquals:
		return v >= o, true
	default:
		return false, false
	}
}
