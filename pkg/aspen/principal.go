package aspen

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws/arn"
)

// PrincipalKind is one of the four identity kinds a Principal block can
// name.
type PrincipalKind string

const (
	PrincipalAWS           PrincipalKind = "AWS"
	PrincipalCanonicalUser PrincipalKind = "CanonicalUser"
	PrincipalFederated     PrincipalKind = "Federated"
	PrincipalService       PrincipalKind = "Service"
)

func (k PrincipalKind) valid() bool {
	switch k {
	case PrincipalAWS, PrincipalCanonicalUser, PrincipalFederated, PrincipalService:
		return true
	}
	return false
}

// PrincipalSet is a mapping from PrincipalKind to a non-empty sequence of
// principal identifiers. The special JSON form Principal: "*" is modeled as
// a PrincipalSet with a single AWS entry of "*" (equivalent per AWS
// doctrine, spec.md §3).
type PrincipalSet map[PrincipalKind][]string

// AnyPrincipal is the canonical PrincipalSet for the literal "*" form.
func AnyPrincipal() PrincipalSet {
	return PrincipalSet{PrincipalAWS: {"*"}}
}

// isWildcardAny reports whether this set is semantically "any principal of
// any kind" — either the canonical {AWS: ["*"]} form or a bare "*" entry
// under any recognized kind, since AWS treats the account-root wildcard the
// same regardless of which bucket it was declared under.
func (p PrincipalSet) isWildcardAny() bool {
	for _, ids := range p {
		for _, id := range ids {
			if id == "*" {
				return true
			}
		}
	}
	return false
}

// Matches reports whether identity satisfies this PrincipalSet: at least
// one identifier, under the kind identity itself reports, must match.
func (p PrincipalSet) Matches(identity PrincipalIdentity) bool {
	if identity == nil {
		return false
	}
	if p.isWildcardAny() {
		return true
	}
	kind, id := identity.Kind(), identity.Identifier()
	for _, pattern := range p[kind] {
		if matchesPrincipalPattern(pattern, id) {
			return true
		}
	}
	return false
}

// matchesPrincipalPattern applies AWS's principal-matching quirks on top of
// plain ARN-aware glob matching: a trailing ":root" is normalized to match
// any principal in that account (AWS treats "account root" as "the whole
// account" for matching purposes, mirroring how *-suffixed ARNs behave).
func matchesPrincipalPattern(pattern, subject string) bool {
	if pattern == "*" {
		return true
	}
	if strings.HasSuffix(pattern, ":root") {
		pattern = strings.TrimSuffix(pattern, ":root") + "*"
	}
	return MatchARNPattern(pattern, subject)
}

// PrincipalIdentity is the external contract spec.md §6 names for "a type
// comparable against PrincipalKind + identifier pattern". Aspen treats ARN
// parsing and principal-identity classification as provided utilities; this
// package ships DefaultPrincipalIdentity as the concrete implementation a
// caller can use out of the box, or a caller may supply its own.
// DefaultPrincipalIdentity does not parse its ARN; ParseARN is the function
// built on the aws-sdk-go-v2/aws/arn parser.
type PrincipalIdentity interface {
	Kind() PrincipalKind
	Identifier() string
}

// DefaultPrincipalIdentity classifies an IAM/STS principal ARN into its
// PrincipalKind (always PrincipalAWS: account root/user/role/assumed-role
// session are all "AWS" kind principals per AWS's own Principal element
// grammar) and exposes the ARN as the comparable identifier.
type DefaultPrincipalIdentity struct {
	ARN string
}

func (d DefaultPrincipalIdentity) Kind() PrincipalKind { return PrincipalAWS }
func (d DefaultPrincipalIdentity) Identifier() string  { return d.ARN }

// ServicePrincipalIdentity represents an AWS-service principal (e.g.
// "lambda.amazonaws.com"), matched under the Service kind.
type ServicePrincipalIdentity struct {
	ServiceName string
}

func (s ServicePrincipalIdentity) Kind() PrincipalKind { return PrincipalService }
func (s ServicePrincipalIdentity) Identifier() string  { return s.ServiceName }

// FederatedPrincipalIdentity represents a SAML/OIDC federated principal.
type FederatedPrincipalIdentity struct {
	ProviderARN string
}

func (f FederatedPrincipalIdentity) Kind() PrincipalKind { return PrincipalFederated }
func (f FederatedPrincipalIdentity) Identifier() string  { return f.ProviderARN }

// CanonicalUserPrincipalIdentity represents an S3 canonical user ID.
type CanonicalUserPrincipalIdentity struct {
	CanonicalID string
}

func (c CanonicalUserPrincipalIdentity) Kind() PrincipalKind { return PrincipalCanonicalUser }
func (c CanonicalUserPrincipalIdentity) Identifier() string  { return c.CanonicalID }

// ParseARN is a thin wrapper over the external ARN utility (spec.md §6):
// aws-sdk-go-v2/aws/arn.Parse. Exposed here so callers building
// PrincipalIdentity/Request values don't need a second import for the
// common case of validating an ARN-shaped string.
func ParseARN(s string) (arn.ARN, error) {
	return arn.Parse(s)
}
