package aspen

import (
	"strconv"
	"time"
)

// ValueKind tags the type space a ContextValue carries.
type ValueKind string

const (
	KindString    ValueKind = "String"
	KindNumber    ValueKind = "Number"
	KindBoolean   ValueKind = "Boolean"
	KindDate      ValueKind = "Date"
	KindIPAddress ValueKind = "IpAddress"
	KindBinary    ValueKind = "Binary"
	KindARN       ValueKind = "ARN"
)

// ContextValue is a single typed value carried under a request context key.
// A context key may hold multiple ContextValues (multi-valued condition
// key); see Request.WithContext.
type ContextValue struct {
	Kind ValueKind
	raw  string
}

// StringValue builds a String-typed context value.
func StringValue(s string) ContextValue { return ContextValue{Kind: KindString, raw: s} }

// NumberValue builds a Number-typed context value from its decimal text.
func NumberValue(s string) ContextValue { return ContextValue{Kind: KindNumber, raw: s} }

// BooleanValue builds a Boolean-typed context value.
func BooleanValue(b bool) ContextValue {
	return ContextValue{Kind: KindBoolean, raw: strconv.FormatBool(b)}
}

// DateValue builds a Date-typed context value from an RFC 3339 timestamp.
func DateValue(t time.Time) ContextValue {
	return ContextValue{Kind: KindDate, raw: t.UTC().Format(time.RFC3339Nano)}
}

// DateValueString builds a Date-typed context value from literal text (an
// RFC 3339 string or an epoch-seconds integer, per the Date operator's
// operand grammar).
func DateValueString(s string) ContextValue { return ContextValue{Kind: KindDate, raw: s} }

// IPValue builds an IpAddress-typed context value from its textual form.
func IPValue(s string) ContextValue { return ContextValue{Kind: KindIPAddress, raw: s} }

// BinaryValue builds a Binary-typed context value from its base64 text.
func BinaryValue(s string) ContextValue { return ContextValue{Kind: KindBinary, raw: s} }

// ARNValue builds an ARN-typed context value.
func ARNValue(s string) ContextValue { return ContextValue{Kind: KindARN, raw: s} }

// stringForm returns the value's textual representation, as used for
// policy-variable substitution and for operators that compare values as
// plain strings regardless of declared Kind.
func (v ContextValue) stringForm() string { return v.raw }
