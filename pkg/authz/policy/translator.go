package policy

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/openshift-online/aspen/pkg/aspen"
)

// Translator converts aspen policies to Cedar text for the AVP shadow
// backend.
type Translator struct{}

// NewTranslator creates a new policy translator
func NewTranslator() *Translator {
	return &Translator{}
}

// TranslateWithPrincipal translates every statement in p to a Cedar policy,
// attaching principalType/principalID to any statement that doesn't carry
// its own Principal/NotPrincipal block.
func (t *Translator) TranslateWithPrincipal(p *aspen.Policy, principalType, principalID string) ([]string, error) {
	var cedarPolicies []string

	for i, stmt := range p.Statements {
		cedarPolicy, err := t.translateStatement(stmt, principalType, principalID)
		if err != nil {
			sid := stmt.Sid
			if sid == "" {
				sid = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("failed to translate statement %s: %w", sid, err)
		}
		cedarPolicies = append(cedarPolicies, cedarPolicy)
	}

	return cedarPolicies, nil
}

// translateStatement translates a single aspen statement to Cedar
func (t *Translator) translateStatement(stmt aspen.Statement, principalType, principalID string) (string, error) {
	var sb strings.Builder

	cedarEffect := "permit"
	if stmt.Effect == aspen.Deny {
		cedarEffect = "forbid"
	}
	sb.WriteString(cedarEffect)
	sb.WriteString(" (\n")

	principalScope, principalWhen := t.buildPrincipalClause(stmt.Principal, principalType, principalID)
	sb.WriteString("  ")
	sb.WriteString(principalScope)
	sb.WriteString(",\n")

	actionScope, actionWhen, err := t.buildActionClause(stmt.Action)
	if err != nil {
		return "", err
	}
	sb.WriteString("  ")
	sb.WriteString(actionScope)
	sb.WriteString(",\n")

	resourceScope, resourceWhen := t.buildResourceClauses(stmt.Resource)
	sb.WriteString("  ")
	sb.WriteString(resourceScope)
	sb.WriteString("\n)")

	var whenClauses []string
	for _, c := range []string{principalWhen, actionWhen, resourceWhen} {
		if c != "" {
			whenClauses = append(whenClauses, c)
		}
	}

	if len(stmt.Condition) > 0 {
		whenClause, err := t.buildWhenClause(stmt.Condition)
		if err != nil {
			return "", err
		}
		if whenClause != "" {
			whenClauses = append(whenClauses, whenClause)
		}
	}

	if len(whenClauses) > 0 {
		sb.WriteString("\nwhen {\n  ")
		sb.WriteString(strings.Join(whenClauses, " && "))
		sb.WriteString("\n}")
	}

	sb.WriteString(";")
	return sb.String(), nil
}

// principalEntityType maps an aspen PrincipalKind onto the Cedar entity
// type used to reference it.
func principalEntityType(kind aspen.PrincipalKind) string {
	switch kind {
	case aspen.PrincipalService:
		return "ROSA::Service"
	case aspen.PrincipalFederated:
		return "ROSA::Federated"
	case aspen.PrincipalCanonicalUser:
		return "ROSA::CanonicalUser"
	default:
		return "ROSA::Principal"
	}
}

// buildPrincipalClause builds the Cedar principal scope/when pair. A
// statement-level Principal/NotPrincipal block takes precedence over the
// attachment's principalType/principalID, mirroring how aspen itself treats
// an explicit block as overriding identity-policy mode (spec.md §3).
func (t *Translator) buildPrincipalClause(pc *aspen.PrincipalClause, principalType, principalID string) (string, string) {
	if pc == nil {
		switch principalType {
		case "user":
			return fmt.Sprintf(`principal == ROSA::Principal::"%s"`, principalID), ""
		case "group":
			return fmt.Sprintf(`principal in ROSA::Group::"%s"`, principalID), ""
		default:
			return "principal", ""
		}
	}

	var refs []string
	anyWildcard := false
	for kind, ids := range pc.Set {
		entityType := principalEntityType(kind)
		for _, id := range ids {
			if id == "*" {
				anyWildcard = true
				continue
			}
			refs = append(refs, fmt.Sprintf(`%s::"%s"`, entityType, id))
		}
	}
	sort.Strings(refs)

	if anyWildcard {
		if pc.Negated {
			return "principal", "false"
		}
		return "principal", ""
	}

	if len(refs) == 1 && !pc.Negated {
		return fmt.Sprintf("principal == %s", refs[0]), ""
	}

	membership := fmt.Sprintf("principal in [%s]", strings.Join(refs, ", "))
	if pc.Negated {
		return "principal", "!(" + membership + ")"
	}
	return membership, ""
}

// buildActionClause creates the Cedar action scope clause, or (for a
// negated ActionSet) an "action" scope plus a when-clause exclusion, since
// Cedar's scope position can't express negation directly.
func (t *Translator) buildActionClause(a aspen.ActionSet) (string, string, error) {
	if len(a.Patterns) == 0 {
		return "", "", fmt.Errorf("no actions specified")
	}

	if !a.Negated && len(a.Patterns) == 1 && a.Patterns[0] == "*" {
		return "action", "", nil
	}

	expandedActions := make(map[string]struct{})
	for _, action := range a.Patterns {
		for _, expanded := range t.expandAction(action) {
			expandedActions[expanded] = struct{}{}
		}
	}

	actionList := make([]string, 0, len(expandedActions))
	for action := range expandedActions {
		actionList = append(actionList, fmt.Sprintf(`ROSA::Action::"%s"`, action))
	}
	sort.Strings(actionList)

	var membership string
	if len(actionList) == 1 {
		membership = fmt.Sprintf("action == %s", actionList[0])
	} else {
		membership = fmt.Sprintf("action in [%s]", strings.Join(actionList, ", "))
	}

	if a.Negated {
		return "action", "!(" + membership + ")", nil
	}
	if len(actionList) == 1 {
		return membership, "", nil
	}
	return "action", membership, nil
}

// expandAction expands action patterns like rosa:Describe* to actual actions
func (t *Translator) expandAction(action string) []string {
	action = strings.TrimPrefix(action, "rosa:")

	if action == "*" {
		return allActions
	}

	if strings.HasSuffix(action, "*") {
		prefix := strings.TrimSuffix(action, "*")
		var matching []string
		for _, a := range allActions {
			if strings.HasPrefix(a, prefix) {
				matching = append(matching, a)
			}
		}
		if len(matching) > 0 {
			return matching
		}
	}

	return []string{action}
}

// buildResourceMembership builds the "is resource one of these ARN patterns"
// boolean expression, segment-wildcard patterns translated to Cedar `like`.
func buildResourceMembership(patterns []string) string {
	var clauses []string
	for _, p := range patterns {
		if strings.Contains(p, "*") {
			clauses = append(clauses, fmt.Sprintf(`resource.arn like "%s"`, p))
		} else {
			clauses = append(clauses, fmt.Sprintf(`resource.arn == "%s"`, p))
		}
	}
	if len(clauses) == 1 {
		return clauses[0]
	}
	return "(" + strings.Join(clauses, " || ") + ")"
}

func containsWildcard(patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(p, "*") {
			return true
		}
	}
	return false
}

// buildResourceClauses creates the Cedar resource scope clause and, when a
// wildcard pattern or a NotResource block forces it, a when-clause
// condition. Returns (scopeClause, conditionClause).
func (t *Translator) buildResourceClauses(r aspen.ResourceSet) (string, string) {
	isAny := len(r.Patterns) == 0 || (len(r.Patterns) == 1 && r.Patterns[0] == "*")
	if isAny {
		if r.Negated {
			return "resource", "false"
		}
		return "resource", ""
	}

	if r.Negated {
		return "resource", "!(" + buildResourceMembership(r.Patterns) + ")"
	}

	if containsWildcard(r.Patterns) {
		return "resource", buildResourceMembership(r.Patterns)
	}

	if len(r.Patterns) == 1 {
		return fmt.Sprintf(`resource == ROSA::Resource::"%s"`, r.Patterns[0]), ""
	}
	var resourceList []string
	for _, p := range r.Patterns {
		resourceList = append(resourceList, fmt.Sprintf(`ROSA::Resource::"%s"`, p))
	}
	return fmt.Sprintf("resource in [%s]", strings.Join(resourceList, ", ")), ""
}

// buildWhenClause translates an aspen ConditionBlock into a single Cedar
// boolean expression, ANDing every operator+key pair (spec.md §4.2).
func (t *Translator) buildWhenClause(cond aspen.ConditionBlock) (string, error) {
	operatorNames := make([]string, 0, len(cond))
	for name := range cond {
		operatorNames = append(operatorNames, name)
	}
	sort.Strings(operatorNames)

	var clauses []string
	for _, name := range operatorNames {
		op, err := aspen.ParseOperatorName(name)
		if err != nil {
			return "", err
		}
		byKey := cond[name]
		keys := make([]string, 0, len(byKey))
		for key := range byKey {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			clause, err := t.translateConditionEntry(op, key, byKey[key])
			if err != nil {
				return "", err
			}
			clauses = append(clauses, clause)
		}
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return strings.Join(clauses, " && "), nil
}

// translateConditionEntry dispatches a single operator+key+operands triple
// to its value-space translator, then layers Qualifier and IfExists on top.
func (t *Translator) translateConditionEntry(op aspen.Operator, key string, operands []string) (string, error) {
	cedarKey := t.translateConditionKey(key)

	if op.ValueSpace == aspen.ValueSpaceNull {
		return t.translateNull(cedarKey, operands)
	}

	// ForAllValues:/ForAnyValue: compose cleanly onto Cedar's set functions
	// only for the Equals/Like families a multi-valued context key actually
	// arrives as (rosa:RequestTag/*, rosa:TagKeys); other value spaces fall
	// back to the same per-operand disjunction the unqualified form uses.
	if op.Qualifier != aspen.QualifierNone && (op.ValueSpace == aspen.ValueSpaceString || op.ValueSpace == aspen.ValueSpaceARN) {
		clause, err := t.translateQualified(op, cedarKey, operands)
		if err != nil {
			return "", err
		}
		if op.IfExists {
			return fmt.Sprintf("(!has %s || (%s))", cedarKey, clause), nil
		}
		return clause, nil
	}

	base, err := t.translateBase(op, cedarKey, operands)
	if err != nil {
		return "", err
	}
	if op.IfExists {
		return fmt.Sprintf("(!has %s || (%s))", cedarKey, base), nil
	}
	return base, nil
}

// translateBase translates the base comparison (ignoring Qualifier, which
// callers already special-cased) for every ValueSpace.
func (t *Translator) translateBase(op aspen.Operator, cedarKey string, operands []string) (string, error) {
	switch op.ValueSpace {
	case aspen.ValueSpaceString:
		if op.Comparison == aspen.CompareLike {
			return t.likeClause(cedarKey, operands, op.Negated), nil
		}
		return t.equalsClause(cedarKey, operands, op.Negated), nil
	case aspen.ValueSpaceARN:
		return t.likeClause(cedarKey, operands, op.Negated), nil
	case aspen.ValueSpaceNumeric:
		return t.numericClause(cedarKey, operands, op.Comparison, op.Negated)
	case aspen.ValueSpaceDate:
		return t.dateClause(cedarKey, operands, op.Comparison, op.Negated)
	case aspen.ValueSpaceBoolean:
		return t.boolClause(cedarKey, operands, op.Negated), nil
	case aspen.ValueSpaceBinary:
		return t.equalsClause(cedarKey, operands, op.Negated), nil
	case aspen.ValueSpaceIP:
		return t.ipClause(cedarKey, operands, op.Negated), nil
	default:
		return "", fmt.Errorf("unsupported condition value space for key %s", cedarKey)
	}
}

// translateQualified handles ForAllValues:/ForAnyValue: against Cedar's
// native containsAll/containsAny set functions.
func (t *Translator) translateQualified(op aspen.Operator, cedarKey string, operands []string) (string, error) {
	quoted := make([]string, len(operands))
	for i, v := range operands {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	set := strings.Join(quoted, ", ")

	like := op.ValueSpace == aspen.ValueSpaceARN || op.Comparison == aspen.CompareLike

	// A negated base (StringNotEquals) flips which Cedar set function
	// expresses it: "all values not in the set" is !containsAny, while
	// "some value not in the set" is !containsAll.
	forAll := op.Qualifier == aspen.QualifierForAllValues
	if op.Negated {
		forAll = !forAll
	}
	fn := "containsAny"
	if forAll {
		fn = "containsAll"
	}

	if like {
		// Cedar has no set-like function; approximate with a per-pattern OR
		// (ForAnyValue) or AND (ForAllValues) of `like` clauses.
		var clauses []string
		for _, v := range operands {
			clauses = append(clauses, fmt.Sprintf(`%s like "%s"`, cedarKey, strings.ReplaceAll(v, "?", "*")))
		}
		joiner := " || "
		if op.Qualifier == aspen.QualifierForAllValues {
			joiner = " && "
		}
		expr := "(" + strings.Join(clauses, joiner) + ")"
		if op.Negated {
			return "!" + expr, nil
		}
		return expr, nil
	}

	expr := fmt.Sprintf("%s.%s([%s])", cedarKey, fn, set)
	if op.Negated {
		return "!" + expr, nil
	}
	return expr, nil
}

func (t *Translator) equalsClause(cedarKey string, operands []string, negate bool) string {
	if len(operands) == 1 {
		if negate {
			return fmt.Sprintf("%s != %q", cedarKey, operands[0])
		}
		return fmt.Sprintf("%s == %q", cedarKey, operands[0])
	}
	var clauses []string
	for _, v := range operands {
		if negate {
			clauses = append(clauses, fmt.Sprintf("%s != %q", cedarKey, v))
		} else {
			clauses = append(clauses, fmt.Sprintf("%s == %q", cedarKey, v))
		}
	}
	if negate {
		return strings.Join(clauses, " && ")
	}
	return "(" + strings.Join(clauses, " || ") + ")"
}

func (t *Translator) likeClause(cedarKey string, operands []string, negate bool) string {
	var clauses []string
	for _, v := range operands {
		clauses = append(clauses, t.buildLikeClause(cedarKey, v, negate))
	}
	if len(clauses) == 1 {
		return clauses[0]
	}
	if negate {
		return strings.Join(clauses, " && ")
	}
	return "(" + strings.Join(clauses, " || ") + ")"
}

// buildLikeClause creates a Cedar like clause
func (t *Translator) buildLikeClause(key, pattern string, negate bool) string {
	cedarPattern := strings.ReplaceAll(pattern, "?", "*")
	if negate {
		return fmt.Sprintf(`!(%s like "%s")`, key, cedarPattern)
	}
	return fmt.Sprintf(`%s like "%s"`, key, cedarPattern)
}

func (t *Translator) boolClause(cedarKey string, operands []string, negate bool) string {
	val := "false"
	if len(operands) > 0 && operands[0] == "true" {
		val = "true"
	}
	op := "=="
	if negate {
		op = "!="
	}
	return fmt.Sprintf("%s %s %s", cedarKey, op, val)
}

func (t *Translator) numericClause(cedarKey string, operands []string, cmp aspen.Comparison, negate bool) (string, error) {
	op, err := numericOperator(cmp, negate)
	if err != nil {
		return "", err
	}
	var clauses []string
	for _, v := range operands {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return "", fmt.Errorf("invalid numeric value: %v", v)
		}
		clauses = append(clauses, fmt.Sprintf("%s %s %s", cedarKey, op, strconv.FormatFloat(n, 'f', -1, 64)))
	}
	if len(clauses) == 1 {
		return clauses[0], nil
	}
	joiner := " || "
	if negate {
		joiner = " && "
	}
	return "(" + strings.Join(clauses, joiner) + ")", nil
}

func numericOperator(cmp aspen.Comparison, negate bool) (string, error) {
	switch cmp {
	case aspen.CompareEquals:
		if negate {
			return "!=", nil
		}
		return "==", nil
	case aspen.CompareLessThan:
		return "<", nil
	case aspen.CompareLessThanEquals:
		return "<=", nil
	case aspen.CompareGreaterThan:
		return ">", nil
	case aspen.CompareGreaterThanEquals:
		return ">=", nil
	default:
		return "", fmt.Errorf("unsupported numeric comparison")
	}
}

func (t *Translator) dateClause(cedarKey string, operands []string, cmp aspen.Comparison, negate bool) (string, error) {
	op, err := numericOperator(cmp, negate)
	if err != nil {
		return "", err
	}
	var clauses []string
	for _, v := range operands {
		clauses = append(clauses, fmt.Sprintf(`datetime(%s) %s datetime("%s")`, cedarKey, op, v))
	}
	if len(clauses) == 1 {
		return clauses[0], nil
	}
	joiner := " || "
	if negate {
		joiner = " && "
	}
	return "(" + strings.Join(clauses, joiner) + ")", nil
}

func (t *Translator) ipClause(cedarKey string, operands []string, negate bool) string {
	var clauses []string
	for _, v := range operands {
		clauses = append(clauses, fmt.Sprintf(`ip(%s).isInRange(ip("%s"))`, cedarKey, v))
	}
	var combined string
	if len(clauses) == 1 {
		combined = clauses[0]
	} else if negate {
		combined = strings.Join(clauses, " && ")
	} else {
		combined = "(" + strings.Join(clauses, " || ") + ")"
	}
	if negate {
		return "!" + combined
	}
	return combined
}

// translateNull handles the Null operator: its single operand is "true"
// (key must be absent) or "false" (key must be present).
func (t *Translator) translateNull(cedarKey string, operands []string) (string, error) {
	if len(operands) == 0 {
		return "", fmt.Errorf("Null condition requires a value")
	}
	isNull, err := strconv.ParseBool(operands[0])
	if err != nil {
		return "", fmt.Errorf("Null condition value must be boolean: %w", err)
	}
	if isNull {
		return fmt.Sprintf("!has %s", cedarKey), nil
	}
	return fmt.Sprintf("has %s", cedarKey), nil
}

// translateConditionKey converts an aspen/IAM condition key to a Cedar
// attribute path.
func (t *Translator) translateConditionKey(key string) string {
	if strings.HasPrefix(key, "rosa:ResourceTag/") {
		tagKey := strings.TrimPrefix(key, "rosa:ResourceTag/")
		return fmt.Sprintf(`resource.tags["%s"]`, tagKey)
	}

	if strings.HasPrefix(key, "rosa:RequestTag/") {
		tagKey := strings.TrimPrefix(key, "rosa:RequestTag/")
		return fmt.Sprintf(`context.requestTags["%s"]`, tagKey)
	}

	if key == "rosa:TagKeys" {
		return "context.tagKeys"
	}

	if key == "aws:PrincipalArn" || key == "rosa:principalArn" {
		return "context.principalArn"
	}

	if key == "aws:PrincipalAccount" {
		return "context.principalAccount"
	}

	return fmt.Sprintf("context.%s", sanitizeKey(key))
}

var sanitizeKeyPattern = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// sanitizeKey converts a condition key to a valid Cedar identifier
func sanitizeKey(key string) string {
	return sanitizeKeyPattern.ReplaceAllString(key, "_")
}

// allActions is the list of all ROSA actions
var allActions = []string{
	"CreateCluster",
	"DeleteCluster",
	"DescribeCluster",
	"ListClusters",
	"UpdateCluster",
	"UpdateClusterConfig",
	"UpdateClusterVersion",
	"CreateNodePool",
	"DeleteNodePool",
	"DescribeNodePool",
	"ListNodePools",
	"UpdateNodePool",
	"ScaleNodePool",
	"CreateAccessEntry",
	"DeleteAccessEntry",
	"DescribeAccessEntry",
	"ListAccessEntries",
	"UpdateAccessEntry",
	"TagResource",
	"UntagResource",
	"ListTagsForResource",
	"ListAccessPolicies",
}
