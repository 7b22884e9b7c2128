package policy

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/openshift-online/aspen/pkg/aspen"
)

// ValidationError represents a policy validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult contains the results of policy validation
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// Validator narrows aspen's generic policy grammar to the ROSA-scoped
// subset a policy attachment is allowed to use: rosa:* actions, ROSA ARNs
// for resources, and a fixed condition-operator/key allowlist. aspen.Policy
// parsing already enforces the generic structural invariants (exactly one
// of Action/NotAction, closed operator-name set, non-empty collections); a
// Validator pass only adds admission rules specific to this domain.
type Validator struct {
	actionPattern   *regexp.Regexp
	resourcePattern *regexp.Regexp
}

// NewValidator creates a new policy validator
func NewValidator() *Validator {
	return &Validator{
		// Action pattern: rosa:ActionName or rosa:Action* or *
		actionPattern: regexp.MustCompile(`^(\*|rosa:[A-Za-z\*]+)$`),
		// Resource pattern: * or ARN (allows wildcards in region, account, and resource path)
		resourcePattern: regexp.MustCompile(`^(\*|arn:aws:rosa:([a-z0-9\-]+|\*):[0-9*]*:[a-z\-]+/.+)$`),
	}
}

// allowedConditionOperators is the subset of aspen's closed operator set
// that a ROSA-attached policy may reference. It's a restriction, not an
// extension: every name here is already a name aspen's own parser accepts.
var allowedConditionOperators = map[string]bool{
	"StringEquals":                      true,
	"StringNotEquals":                   true,
	"StringLike":                        true,
	"StringNotLike":                     true,
	"ArnEquals":                         true,
	"ArnLike":                           true,
	"ArnNotEquals":                      true,
	"ArnNotLike":                        true,
	"Bool":                              true,
	"ForAllValues:StringEquals":         true,
	"ForAnyValue:StringEquals":          true,
}

// Validate checks p against the ROSA admission rules: rosa:*/ARN-scoped
// actions and resources, Sid uniqueness across statements, and a condition
// operator/key allowlist narrower than aspen's full matrix.
func (v *Validator) Validate(p *aspen.Policy) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if p == nil {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   "policy",
			Message: "policy is nil",
		})
		return result
	}

	if len(p.Statements) == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   "statements",
			Message: "at least one statement is required",
		})
	}

	sids := make(map[string]struct{})
	for i, stmt := range p.Statements {
		stmtErrors := v.validateStatement(stmt, i, sids)
		if len(stmtErrors) > 0 {
			result.Valid = false
			result.Errors = append(result.Errors, stmtErrors...)
		}
	}

	return result
}

// validateStatement validates a single statement
func (v *Validator) validateStatement(stmt aspen.Statement, index int, sids map[string]struct{}) []ValidationError {
	var errors []ValidationError
	prefix := fmt.Sprintf("statements[%d]", index)

	if stmt.Sid != "" {
		if _, exists := sids[stmt.Sid]; exists {
			errors = append(errors, ValidationError{
				Field:   prefix + ".sid",
				Message: fmt.Sprintf("duplicate sid: %s", stmt.Sid),
			})
		}
		sids[stmt.Sid] = struct{}{}
	}

	if len(stmt.Action.Patterns) == 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".actions",
			Message: "at least one action is required",
		})
	}
	for j, action := range stmt.Action.Patterns {
		if !v.isValidAction(action) {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("%s.actions[%d]", prefix, j),
				Message: fmt.Sprintf("invalid action format: %s", action),
			})
		}
	}

	if len(stmt.Resource.Patterns) == 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".resources",
			Message: "at least one resource is required",
		})
	}
	for j, resource := range stmt.Resource.Patterns {
		if !v.isValidResource(resource) {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("%s.resources[%d]", prefix, j),
				Message: fmt.Sprintf("invalid resource format: %s", resource),
			})
		}
	}

	if len(stmt.Condition) > 0 {
		errors = append(errors, v.validateConditions(stmt.Condition, prefix)...)
	}

	return errors
}

// isValidAction checks if an action string is valid
func (v *Validator) isValidAction(action string) bool {
	if action == "*" {
		return true
	}
	return v.actionPattern.MatchString(action)
}

// isValidResource checks if a resource string is valid
func (v *Validator) isValidResource(resource string) bool {
	if resource == "*" {
		return true
	}
	return v.resourcePattern.MatchString(resource)
}

// validateConditions validates the conditions block against the ROSA
// operator/key allowlist (a subset of what aspen itself parses).
func (v *Validator) validateConditions(cond aspen.ConditionBlock, prefix string) []ValidationError {
	var errors []ValidationError

	for operator, byKey := range cond {
		if !allowedConditionOperators[operator] {
			errors = append(errors, ValidationError{
				Field:   prefix + ".conditions",
				Message: fmt.Sprintf("unsupported condition operator: %s", operator),
			})
			continue
		}

		for key := range byKey {
			if !v.isValidConditionKey(key) {
				errors = append(errors, ValidationError{
					Field:   prefix + ".conditions." + operator,
					Message: fmt.Sprintf("unsupported condition key: %s", key),
				})
			}
		}
	}

	return errors
}

// isValidConditionKey checks if a condition key is supported
func (v *Validator) isValidConditionKey(key string) bool {
	return IsConditionKeySupported(key)
}

// ValidateAndTranslate validates a policy against the ROSA admission rules
// and, if valid, returns its Cedar translation for the AVP shadow backend.
func ValidateAndTranslate(p *aspen.Policy, principalType, principalID string) ([]string, error) {
	validator := NewValidator()
	result := validator.Validate(p)

	if !result.Valid {
		var errMsgs []string
		for _, err := range result.Errors {
			errMsgs = append(errMsgs, err.Error())
		}
		return nil, fmt.Errorf("policy validation failed: %s", strings.Join(errMsgs, "; "))
	}

	translator := NewTranslator()
	return translator.TranslateWithPrincipal(p, principalType, principalID)
}
