package aspen

// ConditionBlock is a mapping from operator name to a mapping from context
// key to a non-empty sequence of operand values, exactly as the JSON
// surface presents it (spec.md §3). Operator names are validated against
// the closed set at parse/construction time, not here.
type ConditionBlock map[string]map[string][]string

// NewConditionBlock returns an empty, ready-to-use ConditionBlock.
func NewConditionBlock() ConditionBlock {
	return make(ConditionBlock)
}

// Add inserts operand values under operator+key, set-union merging with any
// values already present under that same operator+key pair — this is the
// resolution spec.md §9's open question on duplicate-key merging settles
// on: AWS merges, and the merge is a set-union of operand sequences.
func (c ConditionBlock) Add(operator, key string, values ...string) ConditionBlock {
	byKey, ok := c[operator]
	if !ok {
		byKey = make(map[string][]string)
		c[operator] = byKey
	}
	existing := byKey[key]
	seen := make(map[string]struct{}, len(existing))
	for _, v := range existing {
		seen[v] = struct{}{}
	}
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		existing = append(existing, v)
		seen[v] = struct{}{}
	}
	byKey[key] = existing
	return c
}

// evaluate reports whether every operator+key pair in the block is
// satisfied against req (logical AND across operators and across keys
// within an operator, spec.md §4.2).
func (c ConditionBlock) evaluate(req *Request, version PolicyVersion, resolver VariableResolver) bool {
	for operatorName, byKey := range c {
		op, err := ParseOperatorName(operatorName)
		if err != nil {
			// Unknown operators are rejected at parse time (§3); if one
			// reaches evaluation some programmatic path skipped
			// validation. Fail closed rather than silently matching.
			return false
		}
		for key, operands := range byKey {
			resolvedOperands := operands
			if version.SupportsVariables() {
				resolvedOperands = make([]string, len(operands))
				for i, o := range operands {
					resolvedOperands[i] = ExpandVariables(o, req, resolver)
				}
			}
			if !evaluateConditionEntry(op, key, resolvedOperands, req) {
				return false
			}
		}
	}
	return true
}

// evaluateConditionEntry implements spec.md §4.3's semantic rules for a
// single operator+key+operands triple.
func evaluateConditionEntry(op Operator, key string, operands []string, req *Request) bool {
	values := req.contextLookup(key)
	missing := len(values) == 0

	if op.ValueSpace == ValueSpaceNull {
		return evalNull(operands, missing)
	}

	if op.Qualifier == QualifierForAllValues {
		// "If the request key is empty/absent, true" — independent of
		// IfExists, which only modulates the no-qualifier/ForAnyValue path.
		if missing {
			return true
		}
		for _, v := range values {
			satisfied := false
			for _, o := range operands {
				if compareValue(op, v, o) {
					satisfied = true
					break
				}
			}
			if !satisfied {
				return false
			}
		}
		return true
	}

	// QualifierNone behaves like ForAnyValue for a multi-valued key: "OR
	// across operands" from spec.md §4.2, and AWS's own documented default
	// when no qualifier is given.
	if missing {
		return op.IfExists
	}
	for _, v := range values {
		for _, o := range operands {
			if compareValue(op, v, o) {
				return true
			}
		}
	}
	return false
}

// compareValue dispatches to the value-space-specific comparator and
// applies NotX negation and evaluation-failure handling uniformly:
// a parse failure degrades the comparison to false regardless of polarity
// (spec.md §4.3/§7 — a malformed context value must never flip a NotX
// operator to true).
func compareValue(op Operator, value ContextValue, operand string) bool {
	var matched, ok bool
	switch op.ValueSpace {
	case ValueSpaceString:
		matched, ok = compareString(op, value.stringForm(), operand)
	case ValueSpaceNumeric:
		matched, ok = compareNumeric(op, value.stringForm(), operand)
	case ValueSpaceDate:
		matched, ok = compareDate(op, value.stringForm(), operand)
	case ValueSpaceBoolean:
		matched, ok = compareBool(op, value.stringForm(), operand)
	case ValueSpaceBinary:
		matched, ok = compareBinary(op, value.stringForm(), operand)
	case ValueSpaceIP:
		matched, ok = compareIP(op, value.stringForm(), operand)
	case ValueSpaceARN:
		matched, ok = compareARN(op, value.stringForm(), operand)
	default:
		return false
	}
	if !ok {
		return false
	}
	if op.Negated {
		return !matched
	}
	return matched
}
