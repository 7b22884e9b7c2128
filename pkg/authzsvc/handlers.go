package authzsvc

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/openshift-online/aspen/pkg/aspen"
	"github.com/openshift-online/aspen/pkg/authz"
	"github.com/openshift-online/aspen/pkg/authz/store"
	"github.com/openshift-online/aspen/pkg/middleware"
)

// Handlers implements the REST surface the aspensvc router mounts, built
// directly against authz.Authorizer rather than any one storage backend.
type Handlers struct {
	authorizer authz.Authorizer
	metrics    *Metrics
	logger     *slog.Logger
}

// NewHandlers builds the request handlers for the authorization API.
func NewHandlers(authorizer authz.Authorizer, metrics *Metrics, logger *slog.Logger) *Handlers {
	return &Handlers{authorizer: authorizer, metrics: metrics, logger: logger}
}

type errorBody struct {
	Kind   string `json:"kind"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, status int, code, reason string) {
	writeJSON(w, status, errorBody{Kind: "Error", Code: code, Reason: reason})
}

// requireAdmin reports whether the caller identified by the Identity
// middleware is a registered admin of accountID, writing a 401/403 response
// and returning false if not. Every handler that mutates account-scoped
// state (policies, groups, attachments) must gate on this before touching
// the store, since the router puts no privilege check in front of them.
func (h *Handlers) requireAdmin(w http.ResponseWriter, r *http.Request, accountID string) bool {
	callerARN := middleware.GetCallerARN(r.Context())
	if callerARN == "" {
		writeError(w, http.StatusUnauthorized, "missing-caller-identity", "caller identity header is required")
		return false
	}
	isAdmin, err := h.authorizer.IsAdmin(r.Context(), accountID, callerARN)
	if err != nil {
		h.logger.Error("admin check failed", "error", err, "account_id", accountID, "caller_arn", callerARN)
		writeError(w, http.StatusInternalServerError, "admin-check-failed", err.Error())
		return false
	}
	if !isAdmin {
		writeError(w, http.StatusForbidden, "not-admin", "caller is not an admin of this account")
		return false
	}
	return true
}

func decodeJSON(r *http.Request, out any) error {
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// EnableAccount handles POST /v1/accounts/{callerAccountID}/enable.
func (h *Handlers) EnableAccount(w http.ResponseWriter, r *http.Request) {
	callerAccountID := mux.Vars(r)["accountId"]

	var req struct {
		AccountID  string `json:"accountId"`
		Privileged bool   `json:"privileged"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid-request", err.Error())
		return
	}
	if req.AccountID == "" {
		writeError(w, http.StatusBadRequest, "missing-account-id", "accountId is required")
		return
	}

	// The target account doesn't exist yet, so admin-of-target-account
	// can't gate this; only an already-privileged account may enable
	// another one.
	isPriv, err := h.authorizer.IsPrivileged(r.Context(), callerAccountID)
	if err != nil {
		h.logger.Error("privilege check failed", "error", err, "account_id", callerAccountID)
		writeError(w, http.StatusInternalServerError, "privilege-check-failed", err.Error())
		return
	}
	if !isPriv {
		writeError(w, http.StatusForbidden, "not-privileged", "caller account is not privileged")
		return
	}

	account, err := h.authorizer.EnableAccount(r.Context(), req.AccountID, callerAccountID, req.Privileged)
	if err != nil {
		h.logger.Error("failed to enable account", "error", err, "account_id", req.AccountID)
		writeError(w, http.StatusInternalServerError, "enable-account-failed", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"accountId": account.AccountID})
}

// CreatePolicy handles POST /v1/accounts/{accountId}/policies.
func (h *Handlers) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["accountId"]
	if !h.requireAdmin(w, r, accountID) {
		return
	}

	var req struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Policy      json.RawMessage `json:"policy"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid-request", err.Error())
		return
	}

	doc, err := aspen.ParsePolicy(req.Policy)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid-policy", err.Error())
		return
	}

	record, err := h.authorizer.CreatePolicy(r.Context(), accountID, req.Name, req.Description, &doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "create-policy-failed", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"policyId": record.PolicyID})
}

// DeletePolicy handles DELETE /v1/accounts/{accountId}/policies/{policyId}.
func (h *Handlers) DeletePolicy(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if !h.requireAdmin(w, r, vars["accountId"]) {
		return
	}
	if err := h.authorizer.DeletePolicy(r.Context(), vars["accountId"], vars["policyId"]); err != nil {
		writeError(w, http.StatusBadRequest, "delete-policy-failed", err.Error())
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// CreateGroup handles POST /v1/accounts/{accountId}/groups.
func (h *Handlers) CreateGroup(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["accountId"]
	if !h.requireAdmin(w, r, accountID) {
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid-request", err.Error())
		return
	}

	group, err := h.authorizer.CreateGroup(r.Context(), accountID, req.Name, req.Description)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "create-group-failed", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"groupId": group.GroupID})
}

// DeleteGroup handles DELETE /v1/accounts/{accountId}/groups/{groupId}.
func (h *Handlers) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if !h.requireAdmin(w, r, vars["accountId"]) {
		return
	}
	if err := h.authorizer.DeleteGroup(r.Context(), vars["accountId"], vars["groupId"]); err != nil {
		writeError(w, http.StatusInternalServerError, "delete-group-failed", err.Error())
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// AddGroupMember handles POST /v1/accounts/{accountId}/groups/{groupId}/members.
func (h *Handlers) AddGroupMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if !h.requireAdmin(w, r, vars["accountId"]) {
		return
	}

	var req struct {
		MemberARN string `json:"memberArn"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid-request", err.Error())
		return
	}
	if req.MemberARN == "" {
		writeError(w, http.StatusBadRequest, "missing-member-arn", "memberArn is required")
		return
	}

	if err := h.authorizer.AddGroupMember(r.Context(), vars["accountId"], vars["groupId"], req.MemberARN); err != nil {
		writeError(w, http.StatusInternalServerError, "add-group-member-failed", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, nil)
}

// CreateAttachment handles POST /v1/accounts/{accountId}/attachments.
func (h *Handlers) CreateAttachment(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["accountId"]
	if !h.requireAdmin(w, r, accountID) {
		return
	}

	var req struct {
		PolicyID   string `json:"policyId"`
		TargetType string `json:"targetType"`
		TargetID   string `json:"targetId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid-request", err.Error())
		return
	}

	attachment, err := h.authorizer.AttachPolicy(r.Context(), accountID, req.PolicyID, store.TargetType(req.TargetType), req.TargetID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "create-attachment-failed", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"attachmentId": attachment.AttachmentID})
}

// DeleteAttachment handles DELETE /v1/accounts/{accountId}/attachments/{attachmentId}.
func (h *Handlers) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if !h.requireAdmin(w, r, vars["accountId"]) {
		return
	}
	if err := h.authorizer.DetachPolicy(r.Context(), vars["accountId"], vars["attachmentId"]); err != nil {
		writeError(w, http.StatusBadRequest, "delete-attachment-failed", err.Error())
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Authorize handles POST /v1/accounts/{accountId}/authorize, the decision
// endpoint every other object in the API exists to feed.
func (h *Handlers) Authorize(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["accountId"]

	var req struct {
		Principal    string         `json:"principal"`
		Action       string         `json:"action"`
		Resource     string         `json:"resource"`
		Context      map[string]any `json:"context,omitempty"`
		ResourceTags map[string]any `json:"resourceTags,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid-request", err.Error())
		return
	}

	resourceTags := make(map[string]string, len(req.ResourceTags))
	for k, v := range req.ResourceTags {
		if s, ok := v.(string); ok {
			resourceTags[k] = s
		}
	}

	authzReq := &authz.AuthzRequest{
		AccountID:    accountID,
		CallerARN:    req.Principal,
		Action:       req.Action,
		Resource:     req.Resource,
		ResourceTags: resourceTags,
		Context:      req.Context,
	}

	start := time.Now()
	allowed, err := h.authorizer.Authorize(r.Context(), authzReq)
	if h.metrics != nil {
		h.metrics.ObserveAuthzDecision(allowed, time.Since(start))
	}
	if err != nil {
		h.logger.Error("authorization check failed", "error", err, "account_id", accountID, "principal", req.Principal)
		writeError(w, http.StatusInternalServerError, "authorize-failed", err.Error())
		return
	}

	decision := "DENY"
	if allowed {
		decision = "ALLOW"
	}
	writeJSON(w, http.StatusOK, map[string]string{"decision": decision})
}
