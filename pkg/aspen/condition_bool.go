package aspen

import "strconv"

// compareBool implements the Bool operator: the operand is "true"/"false"
// text, and the request value is coerced the same way (spec.md §4.3).
func compareBool(op Operator, value, operand string) (matched bool, ok bool) {
	v, err1 := strconv.ParseBool(value)
	o, err2 := strconv.ParseBool(operand)
	if err1 != nil || err2 != nil {
		return false, false
	}
	return v == o, true
}
