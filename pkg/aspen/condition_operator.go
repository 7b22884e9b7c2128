package aspen

import "strings"

// ValueSpace identifies which comparison family a condition operator
// belongs to (spec.md §4.3's "Bases (by value space)").
type ValueSpace int

const (
	ValueSpaceString ValueSpace = iota
	ValueSpaceNumeric
	ValueSpaceDate
	ValueSpaceBoolean
	ValueSpaceBinary
	ValueSpaceIP
	ValueSpaceARN
	ValueSpaceNull
)

// Comparison identifies the specific predicate within a ValueSpace.
type Comparison int

const (
	CompareEquals Comparison = iota
	CompareEqualsIgnoreCase
	CompareLike
	CompareLessThan
	CompareLessThanEquals
	CompareGreaterThan
	CompareGreaterThanEquals
	CompareIPIn
	CompareBoolEquals
	CompareBinaryEquals
	CompareNullCheck
)

// Qualifier is the optional ForAllValues:/ForAnyValue: prefix that changes
// multi-valued-key semantics (spec.md §4.3, §9 open question — implemented
// here per "SHOULD implement").
type Qualifier int

const (
	QualifierNone Qualifier = iota
	QualifierForAllValues
	QualifierForAnyValue
)

// Operator is the parsed form of a condition operator name:
// [<Qualifier>:]<Base>[IfExists] — modeled as a tagged tuple
// (ValueSpace, Comparison, Negated, IfExists, Qualifier) per design notes
// §9, rather than one Go type per operator name.
type Operator struct {
	Name       string // the original operator name, e.g. "ForAnyValue:StringEqualsIfExists"
	ValueSpace ValueSpace
	Comparison Comparison
	Negated    bool
	IfExists   bool
	Qualifier  Qualifier
}

type baseOperatorInfo struct {
	space   ValueSpace
	compare Comparison
	negated bool
}

// baseOperators is the closed set of ~27 base operator names (spec.md §3:
// "Condition operator names are drawn from the closed set"). Combined with
// the optional IfExists suffix (all but Null) this yields the ~50-variant
// surface spec.md §2 budgets for, with ForAllValues:/ForAnyValue: composing
// orthogonally on top.
var baseOperators = map[string]baseOperatorInfo{
	"StringEquals":             {ValueSpaceString, CompareEquals, false},
	"StringNotEquals":          {ValueSpaceString, CompareEquals, true},
	"StringEqualsIgnoreCase":   {ValueSpaceString, CompareEqualsIgnoreCase, false},
	"StringNotEqualsIgnoreCase": {ValueSpaceString, CompareEqualsIgnoreCase, true},
	"StringLike":                {ValueSpaceString, CompareLike, false},
	"StringNotLike":             {ValueSpaceString, CompareLike, true},

	"NumericEquals":            {ValueSpaceNumeric, CompareEquals, false},
	"NumericNotEquals":         {ValueSpaceNumeric, CompareEquals, true},
	"NumericLessThan":          {ValueSpaceNumeric, CompareLessThan, false},
	"NumericLessThanEquals":    {ValueSpaceNumeric, CompareLessThanEquals, false},
	"NumericGreaterThan":       {ValueSpaceNumeric, CompareGreaterThan, false},
	"NumericGreaterThanEquals": {ValueSpaceNumeric, CompareGreaterThanEquals, false},

	"DateEquals":            {ValueSpaceDate, CompareEquals, false},
	"DateNotEquals":         {ValueSpaceDate, CompareEquals, true},
	"DateLessThan":          {ValueSpaceDate, CompareLessThan, false},
	"DateLessThanEquals":    {ValueSpaceDate, CompareLessThanEquals, false},
	"DateGreaterThan":       {ValueSpaceDate, CompareGreaterThan, false},
	"DateGreaterThanEquals": {ValueSpaceDate, CompareGreaterThanEquals, false},

	"Bool": {ValueSpaceBoolean, CompareBoolEquals, false},

	"BinaryEquals": {ValueSpaceBinary, CompareBinaryEquals, false},

	"IpAddress":    {ValueSpaceIP, CompareIPIn, false},
	"NotIpAddress": {ValueSpaceIP, CompareIPIn, true},

	// ArnEquals is defined to behave identically to ArnLike (spec.md §4.3).
	"ArnEquals":    {ValueSpaceARN, CompareLike, false},
	"ArnLike":      {ValueSpaceARN, CompareLike, false},
	"ArnNotEquals": {ValueSpaceARN, CompareLike, true},
	"ArnNotLike":   {ValueSpaceARN, CompareLike, true},

	"Null": {ValueSpaceNull, CompareNullCheck, false},
}

// ParseOperatorName parses a condition operator name into its tagged
// Operator form, or returns a *PolicyFormatError if name isn't in the
// closed set.
func ParseOperatorName(name string) (Operator, error) {
	qualifier := QualifierNone
	rest := name
	switch {
	case strings.HasPrefix(name, "ForAllValues:"):
		qualifier = QualifierForAllValues
		rest = strings.TrimPrefix(name, "ForAllValues:")
	case strings.HasPrefix(name, "ForAnyValue:"):
		qualifier = QualifierForAnyValue
		rest = strings.TrimPrefix(name, "ForAnyValue:")
	}

	if info, ok := baseOperators[rest]; ok {
		return Operator{
			Name:       name,
			ValueSpace: info.space,
			Comparison: info.compare,
			Negated:    info.negated,
			IfExists:   false,
			Qualifier:  qualifier,
		}, nil
	}

	if strings.HasSuffix(rest, "IfExists") {
		base := strings.TrimSuffix(rest, "IfExists")
		if info, ok := baseOperators[base]; ok && base != "Null" {
			return Operator{
				Name:       name,
				ValueSpace: info.space,
				Comparison: info.compare,
				Negated:    info.negated,
				IfExists:   true,
				Qualifier:  qualifier,
			}, nil
		}
	}

	return Operator{}, newFormatError("Condition", "unknown condition operator: %s", name)
}
