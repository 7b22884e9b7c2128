// Package policy bridges aspen.Policy documents to the Cedar policy
// language the AVP shadow backend consumes, and layers ROSA's
// namespace-scoped admission rules on top of aspen's generic grammar.
package policy

import "github.com/openshift-online/aspen/pkg/aspen"

// SupportedConditionKeys defines the only condition keys a ROSA-attached
// policy may reference (IsConditionKeySupported accepts a key equal to an
// entry or extending one as a prefix); Validator rejects any other key,
// aws:* keys included.
var SupportedConditionKeys = map[string]bool{
	"rosa:ResourceTag/":    true, // rosa:ResourceTag/${TagKey}
	"rosa:RequestTag/":     true, // rosa:RequestTag/${TagKey}
	"rosa:TagKeys":         true,
	"aws:PrincipalArn":     true,
	"aws:PrincipalAccount": true,
	"rosa:principalArn":    true, // For access entry conditions
}

// IsConditionKeySupported checks if a condition key is supported
func IsConditionKeySupported(key string) bool {
	// Check exact matches first
	if SupportedConditionKeys[key] {
		return true
	}

	// Check prefix matches for tag conditions
	for prefix := range SupportedConditionKeys {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			return true
		}
	}

	return false
}

// PolicyWithPrincipal binds an aspen.Policy to the principal or group it's
// attached to, the unit the Translator turns into Cedar text.
type PolicyWithPrincipal struct {
	Policy        *aspen.Policy
	PrincipalType string // "user" or "group"
	PrincipalID   string // ARN for user, groupId for group
}

// TranslatedPolicy represents a Cedar policy ready for AVP
type TranslatedPolicy struct {
	CedarPolicy string
	Effect      aspen.Effect
}
