package policy

import (
	"testing"

	"github.com/openshift-online/aspen/pkg/aspen"
)

func TestValidator_Validate_ValidPolicy(t *testing.T) {
	validator := NewValidator()

	p := singleStatementPolicy(aspen.Statement{
		Sid:      "AllowListClusters",
		Effect:   aspen.Allow,
		Action:   aspen.NewActionSet("rosa:ListClusters"),
		Resource: aspen.NewResourceSet("*"),
	})

	result := validator.Validate(p)

	if !result.Valid {
		t.Errorf("expected valid policy, got errors: %v", result.Errors)
	}
}

func TestValidator_Validate_NilPolicy(t *testing.T) {
	validator := NewValidator()

	result := validator.Validate(nil)

	if result.Valid {
		t.Error("expected invalid result for nil policy")
	}
	if len(result.Errors) != 1 {
		t.Errorf("expected 1 error, got %d", len(result.Errors))
	}
}

func TestValidator_Validate_EmptyStatements(t *testing.T) {
	validator := NewValidator()

	p := aspen.NewPolicy(aspen.Version2012, "")

	result := validator.Validate(&p)

	if result.Valid {
		t.Error("expected invalid result for empty statements")
	}

	found := false
	for _, err := range result.Errors {
		if err.Field == "statements" {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected error about statements")
	}
}

func TestValidator_Validate_MissingActions(t *testing.T) {
	validator := NewValidator()

	p := singleStatementPolicy(aspen.Statement{
		Effect:   aspen.Allow,
		Action:   aspen.ActionSet{},
		Resource: aspen.NewResourceSet("*"),
	})

	result := validator.Validate(p)

	if result.Valid {
		t.Error("expected invalid result for missing actions")
	}

	found := false
	for _, err := range result.Errors {
		if err.Field == "statements[0].actions" {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected error about actions")
	}
}

func TestValidator_Validate_InvalidAction(t *testing.T) {
	validator := NewValidator()

	p := singleStatementPolicy(aspen.Statement{
		Effect:   aspen.Allow,
		Action:   aspen.NewActionSet("invalid-action"),
		Resource: aspen.NewResourceSet("*"),
	})

	result := validator.Validate(p)

	if result.Valid {
		t.Error("expected invalid result for invalid action format")
	}
}

func TestValidator_Validate_MissingResources(t *testing.T) {
	validator := NewValidator()

	p := singleStatementPolicy(aspen.Statement{
		Effect:   aspen.Allow,
		Action:   aspen.NewActionSet("rosa:ListClusters"),
		Resource: aspen.ResourceSet{},
	})

	result := validator.Validate(p)

	if result.Valid {
		t.Error("expected invalid result for missing resources")
	}

	found := false
	for _, err := range result.Errors {
		if err.Field == "statements[0].resources" {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected error about resources")
	}
}

func TestValidator_Validate_DuplicateSids(t *testing.T) {
	validator := NewValidator()

	p := aspen.NewPolicy(aspen.Version2012, "",
		aspen.Statement{
			Sid:      "SameSid",
			Effect:   aspen.Allow,
			Action:   aspen.NewActionSet("rosa:ListClusters"),
			Resource: aspen.NewResourceSet("*"),
		},
		aspen.Statement{
			Sid:      "SameSid",
			Effect:   aspen.Allow,
			Action:   aspen.NewActionSet("rosa:DescribeCluster"),
			Resource: aspen.NewResourceSet("*"),
		},
	)

	result := validator.Validate(&p)

	if result.Valid {
		t.Error("expected invalid result for duplicate sids")
	}
}

func TestValidator_Validate_ValidConditions(t *testing.T) {
	validator := NewValidator()

	p := singleStatementPolicy(aspen.Statement{
		Effect:    aspen.Allow,
		Action:    aspen.NewActionSet("rosa:CreateCluster"),
		Resource:  aspen.NewResourceSet("*"),
		Condition: aspen.NewConditionBlock().Add("StringEquals", "rosa:ResourceTag/Environment", "development"),
	})

	result := validator.Validate(p)

	if !result.Valid {
		t.Errorf("expected valid policy with conditions, got errors: %v", result.Errors)
	}
}

func TestValidator_Validate_UnsupportedConditionOperator(t *testing.T) {
	validator := NewValidator()

	p := singleStatementPolicy(aspen.Statement{
		Effect:    aspen.Allow,
		Action:    aspen.NewActionSet("rosa:CreateCluster"),
		Resource:  aspen.NewResourceSet("*"),
		Condition: aspen.NewConditionBlock().Add("NumericEquals", "rosa:ResourceTag/Environment", "1"),
	})

	result := validator.Validate(p)

	if result.Valid {
		t.Error("expected invalid result for a condition operator outside the ROSA allowlist")
	}
}

func TestValidator_Validate_UnsupportedConditionKey(t *testing.T) {
	validator := NewValidator()

	p := singleStatementPolicy(aspen.Statement{
		Effect:    aspen.Allow,
		Action:    aspen.NewActionSet("rosa:CreateCluster"),
		Resource:  aspen.NewResourceSet("*"),
		Condition: aspen.NewConditionBlock().Add("StringEquals", "aws:unsupportedKey", "value"),
	})

	result := validator.Validate(p)

	if result.Valid {
		t.Error("expected invalid result for unsupported condition key")
	}
}

func TestValidator_Validate_AllSupportedConditionKeys(t *testing.T) {
	validator := NewValidator()

	testCases := []struct {
		key   string
		valid bool
	}{
		{"rosa:ResourceTag/Environment", true},
		{"rosa:RequestTag/Owner", true},
		{"rosa:TagKeys", true},
		{"aws:PrincipalArn", true},
		{"aws:PrincipalAccount", true},
		{"rosa:principalArn", true},
		{"aws:unsupported", false},
		{"custom:key", false},
	}

	for _, tc := range testCases {
		p := singleStatementPolicy(aspen.Statement{
			Effect:    aspen.Allow,
			Action:    aspen.NewActionSet("rosa:CreateCluster"),
			Resource:  aspen.NewResourceSet("*"),
			Condition: aspen.NewConditionBlock().Add("StringEquals", tc.key, "value"),
		})

		result := validator.Validate(p)

		if result.Valid != tc.valid {
			t.Errorf("key %s: expected valid=%v, got valid=%v", tc.key, tc.valid, result.Valid)
		}
	}
}

func TestValidateAndTranslate_Success(t *testing.T) {
	p := singleStatementPolicy(aspen.Statement{
		Sid:      "AllowListClusters",
		Effect:   aspen.Allow,
		Action:   aspen.NewActionSet("rosa:ListClusters"),
		Resource: aspen.NewResourceSet("*"),
	})

	cedarPolicies, err := ValidateAndTranslate(p, "user", "arn:aws:iam::111122223333:user/alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cedarPolicies) != 1 {
		t.Errorf("expected 1 policy, got %d", len(cedarPolicies))
	}
}

func TestValidateAndTranslate_ValidationFailure(t *testing.T) {
	p := aspen.NewPolicy(aspen.Version2012, "")

	_, err := ValidateAndTranslate(&p, "user", "arn:aws:iam::111122223333:user/alice")
	if err == nil {
		t.Error("expected error for invalid policy")
	}
}
