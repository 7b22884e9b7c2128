package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/openshift-online/aspen/pkg/aspen"
)

// APIClient is a thin HTTP client for the aspensvc REST surface, used by
// the Ginkgo specs to drive end-to-end authorization scenarios against a
// running service instance.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient builds a client against baseURL (e.g. http://localhost:8000).
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// CheckAuthorizationRequest is the body of a POST /v1/accounts/{id}/authorize call.
type CheckAuthorizationRequest struct {
	Principal    string         `json:"principal"`
	Action       string         `json:"action"`
	Resource     string         `json:"resource"`
	Context      map[string]any `json:"context,omitempty"`
	ResourceTags map[string]any `json:"resourceTags,omitempty"`
}

type checkAuthorizationResponse struct {
	Decision string `json:"decision"`
}

func (c *APIClient) do(method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("request to %s returned status %d: %s", path, resp.StatusCode, string(respBody))
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

// CheckReady polls the readiness endpoint.
func (c *APIClient) CheckReady() error {
	return c.do(http.MethodGet, "/ready", nil, nil)
}

// CreateAccount provisions (or, for the privileged caller, enables) an account.
func (c *APIClient) CreateAccount(callerAccountID, accountID string, privileged bool) (string, error) {
	var out struct {
		AccountID string `json:"accountId"`
	}
	err := c.do(http.MethodPost, fmt.Sprintf("/v1/accounts/%s/enable", callerAccountID), map[string]any{
		"accountId":  accountID,
		"privileged": privileged,
	}, &out)
	return out.AccountID, err
}

// CreatePolicy creates a policy template and returns its policy ID. doc
// marshals through aspen.Policy's own MarshalJSON, so the wire payload is
// exactly what aspenctl or any other real caller would send.
func (c *APIClient) CreatePolicy(accountID, name, description string, doc aspen.Policy) (string, error) {
	var out struct {
		PolicyID string `json:"policyId"`
	}
	err := c.do(http.MethodPost, fmt.Sprintf("/v1/accounts/%s/policies", accountID), map[string]any{
		"name":        name,
		"description": description,
		"policy":      doc,
	}, &out)
	return out.PolicyID, err
}

// DeletePolicy removes a policy template.
func (c *APIClient) DeletePolicy(accountID, policyID string) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/v1/accounts/%s/policies/%s", accountID, policyID), nil, nil)
}

// CreateGroup creates a group and returns its group ID.
func (c *APIClient) CreateGroup(accountID, name, description string) (string, error) {
	var out struct {
		GroupID string `json:"groupId"`
	}
	err := c.do(http.MethodPost, fmt.Sprintf("/v1/accounts/%s/groups", accountID), map[string]any{
		"name":        name,
		"description": description,
	}, &out)
	return out.GroupID, err
}

// DeleteGroup removes a group.
func (c *APIClient) DeleteGroup(accountID, groupID string) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/v1/accounts/%s/groups/%s", accountID, groupID), nil, nil)
}

// AddGroupMembers adds members to a group.
func (c *APIClient) AddGroupMembers(accountID, groupID string, members []string) error {
	for _, m := range members {
		if err := c.do(http.MethodPost, fmt.Sprintf("/v1/accounts/%s/groups/%s/members", accountID, groupID), map[string]any{
			"memberArn": m,
		}, nil); err != nil {
			return err
		}
	}
	return nil
}

// CreateAttachment attaches policyID to a user or group target and returns the attachment ID.
func (c *APIClient) CreateAttachment(accountID, policyID, targetType, targetID string) (string, error) {
	var out struct {
		AttachmentID string `json:"attachmentId"`
	}
	err := c.do(http.MethodPost, fmt.Sprintf("/v1/accounts/%s/attachments", accountID), map[string]any{
		"policyId":   policyID,
		"targetType": targetType,
		"targetId":   targetID,
	}, &out)
	return out.AttachmentID, err
}

// DeleteAttachment removes a policy attachment.
func (c *APIClient) DeleteAttachment(accountID, attachmentID string) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/v1/accounts/%s/attachments/%s", accountID, attachmentID), nil, nil)
}

// CheckAuthorization calls the authorization decision endpoint and returns
// "ALLOW" or "DENY".
func (c *APIClient) CheckAuthorization(accountID string, req CheckAuthorizationRequest) (string, error) {
	var out checkAuthorizationResponse
	if err := c.do(http.MethodPost, fmt.Sprintf("/v1/accounts/%s/authorize", accountID), req, &out); err != nil {
		return "", err
	}
	return out.Decision, nil
}
