package aspen

import (
	"strconv"
	"time"
)

// parseDateOperand parses an RFC 3339 / ISO 8601 timestamp, or, if that
// fails, a numeric operand as epoch seconds (spec.md §4.3).
func parseDateOperand(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Unix(0, int64(secs*float64(time.Second))).UTC(), true
	}
	return time.Time{}, false
}

// compareDate implements the Date value space.
func compareDate(op Operator, value, operand string) (matched bool, ok bool) {
	v, okV := parseDateOperand(value)
	o, okO := parseDateOperand(operand)
	if !okV || !okO {
		return false, false
	}

	switch op.Comparison {
	case CompareEquals:
		return v.Equal(o), true
	case CompareLessThan:
		return v.Before(o), true
	case CompareLessThanEquals:
		return v.Before(o) || v.Equal(o), true
	case CompareGreaterThan:
		return v.After(o), true
	case CompareGreaterThanEquals:
		return v.After(o) || v.Equal(o), true
	default:
		return false, false
	}
}
