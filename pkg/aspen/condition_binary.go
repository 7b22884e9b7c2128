package aspen

import (
	"bytes"
	"encoding/base64"
)

// compareBinary implements BinaryEquals: both sides are base64-decoded and
// compared byte-wise (spec.md §4.3).
func compareBinary(op Operator, value, operand string) (matched bool, ok bool) {
	v, err1 := base64.StdEncoding.DecodeString(value)
	o, err2 := base64.StdEncoding.DecodeString(operand)
	if err1 != nil || err2 != nil {
		return false, false
	}
	return bytes.Equal(v, o), true
}
