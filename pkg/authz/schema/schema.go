// Package schema holds the Cedar entity/action schema for the AVP shadow
// policy store, matching the entity type names the translator package
// emits (ROSA::Principal, ROSA::Group, ROSA::Service, ROSA::Federated,
// ROSA::CanonicalUser, ROSA::Resource, ROSA::Action).
package schema

// CedarSchemaJSON is the Cedar JSON schema registered against every
// per-account policy store via PutSchema. It's intentionally permissive
// (string-shaped attributes, no required context fields) since the set of
// condition keys a ROSA policy may reference is governed by the policy
// package's allowlist, not by the Cedar schema itself.
const CedarSchemaJSON = `{
  "ROSA": {
    "entityTypes": {
      "Principal": {
        "shape": {
          "type": "Record",
          "attributes": {}
        },
        "memberOfTypes": ["Group"]
      },
      "Service": {
        "shape": { "type": "Record", "attributes": {} }
      },
      "Federated": {
        "shape": { "type": "Record", "attributes": {} }
      },
      "CanonicalUser": {
        "shape": { "type": "Record", "attributes": {} }
      },
      "Group": {
        "shape": { "type": "Record", "attributes": {} }
      },
      "Resource": {
        "shape": {
          "type": "Record",
          "attributes": {
            "tags": {
              "type": "Record",
              "attributes": {},
              "additionalAttributes": true,
              "required": false
            }
          }
        }
      }
    },
    "actions": {
      "Action": {
        "appliesTo": {
          "principalTypes": ["Principal", "Service", "Federated", "CanonicalUser", "Group"],
          "resourceTypes": ["Resource"],
          "context": {
            "type": "Record",
            "attributes": {},
            "additionalAttributes": true
          }
        }
      }
    }
  }
}`
