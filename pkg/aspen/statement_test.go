package aspen

import "testing"

func TestStatement_Matches_ActionResourceGates(t *testing.T) {
	stmt := Statement{
		Effect:   Allow,
		Action:   NewActionSet("rosa:ListClusters", "rosa:DescribeCluster"),
		Resource: NewResourceSet("arn:aws:rosa:*:111111111111:cluster/*"),
	}

	tests := []struct {
		name     string
		action   string
		resource string
		want     bool
	}{
		{"matching action and resource", "rosa:ListClusters", "arn:aws:rosa:us-east-1:111111111111:cluster/abc", true},
		{"action not in set", "rosa:DeleteCluster", "arn:aws:rosa:us-east-1:111111111111:cluster/abc", false},
		{"resource account mismatch", "rosa:ListClusters", "arn:aws:rosa:us-east-1:222222222222:cluster/abc", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewRequest(nil, tt.action, tt.resource)
			if got := stmt.Matches(req, Version2008); got != tt.want {
				t.Errorf("Matches(%s, %s) = %v, want %v", tt.action, tt.resource, got, tt.want)
			}
		})
	}
}

func TestStatement_Matches_NotActionInverts(t *testing.T) {
	stmt := Statement{
		Effect:   Allow,
		Action:   NewNotActionSet("rosa:DeleteCluster"),
		Resource: NewResourceSet("*"),
	}

	req := NewRequest(nil, "rosa:ListClusters", "arn:aws:rosa:us-east-1:111111111111:cluster/abc")
	if !stmt.Matches(req, Version2008) {
		t.Error("expected NotAction to match an action outside the excluded set")
	}

	req2 := NewRequest(nil, "rosa:DeleteCluster", "arn:aws:rosa:us-east-1:111111111111:cluster/abc")
	if stmt.Matches(req2, Version2008) {
		t.Error("expected NotAction to reject the excluded action")
	}
}

func TestStatement_Matches_PrincipalGate(t *testing.T) {
	stmt := Statement{
		Effect:    Allow,
		Action:    NewActionSet("*"),
		Resource:  NewResourceSet("*"),
		Principal: &PrincipalClause{Set: PrincipalSet{PrincipalAWS: {"arn:aws:iam::111111111111:root"}}},
	}

	matching := NewRequest(DefaultPrincipalIdentity{ARN: "arn:aws:iam::111111111111:user/alice"}, "a", "r")
	if !stmt.Matches(matching, Version2008) {
		t.Error("expected :root principal pattern to match any principal in that account")
	}

	other := NewRequest(DefaultPrincipalIdentity{ARN: "arn:aws:iam::222222222222:user/alice"}, "a", "r")
	if stmt.Matches(other, Version2008) {
		t.Error("expected principal from a different account to be rejected")
	}
}

func TestStatement_Matches_NotPrincipalInverts(t *testing.T) {
	stmt := Statement{
		Effect:    Deny,
		Action:    NewActionSet("*"),
		Resource:  NewResourceSet("*"),
		Principal: &PrincipalClause{Set: PrincipalSet{PrincipalAWS: {"arn:aws:iam::111111111111:root"}}, Negated: true},
	}

	outsider := NewRequest(DefaultPrincipalIdentity{ARN: "arn:aws:iam::222222222222:user/alice"}, "a", "r")
	if !stmt.Matches(outsider, Version2008) {
		t.Error("expected NotPrincipal to match a principal outside the named account")
	}

	insider := NewRequest(DefaultPrincipalIdentity{ARN: "arn:aws:iam::111111111111:user/alice"}, "a", "r")
	if stmt.Matches(insider, Version2008) {
		t.Error("expected NotPrincipal to reject the named account's principal")
	}
}

func TestStatement_Matches_VariableExpansionVersionGated(t *testing.T) {
	stmt := Statement{
		Effect:   Allow,
		Action:   NewActionSet("*"),
		Resource: NewResourceSet("arn:aws:s3:::bucket/${aws:username}/*"),
	}

	req := NewRequest(nil, "a", "arn:aws:s3:::bucket/alice/file.txt")
	req.WithContext("aws:username", StringValue("alice"))

	if !stmt.Matches(req, Version2012) {
		t.Error("expected Version2012 to expand ${aws:username} before matching")
	}
	if stmt.Matches(req, Version2008) {
		t.Error("expected Version2008 to leave ${aws:username} unexpanded, so the literal pattern doesn't match")
	}
}

func TestStatement_Matches_ConditionGate(t *testing.T) {
	stmt := Statement{
		Effect:    Allow,
		Action:    NewActionSet("*"),
		Resource:  NewResourceSet("*"),
		Condition: NewConditionBlock().Add("Bool", "aws:MultiFactorAuthPresent", "true"),
	}

	req := NewRequest(nil, "a", "r")
	req.WithContext("aws:MultiFactorAuthPresent", BooleanValue(true))
	if !stmt.Matches(req, Version2008) {
		t.Error("expected statement to match when condition holds")
	}

	req.WithContext("aws:MultiFactorAuthPresent", BooleanValue(false))
	if stmt.Matches(req, Version2008) {
		t.Error("expected statement to reject when condition fails")
	}
}
