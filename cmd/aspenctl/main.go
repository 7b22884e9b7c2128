// Command aspenctl is a thin CLI client for the aspensvc HTTP API: account
// enablement, policy/group/attachment management, and ad-hoc authorization
// checks against a running service.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/spf13/cobra"
)

var (
	serverURL string
	client    = &http.Client{Timeout: 15 * time.Second}
)

func main() {
	root := &cobra.Command{
		Use:     "aspenctl",
		Short:   "Command-line client for the Aspen authorization service",
		Version: "0.1.0",
	}
	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8000", "aspensvc base URL")

	root.AddCommand(
		newWhoamiCmd(),
		newEnableAccountCmd(),
		newCreatePolicyCmd(),
		newDeletePolicyCmd(),
		newCreateGroupCmd(),
		newDeleteGroupCmd(),
		newAddGroupMemberCmd(),
		newCreateAttachmentCmd(),
		newDeleteAttachmentCmd(),
		newAuthorizeCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s returned %d: %s", method, path, resp.StatusCode, string(respBody))
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

// newWhoamiCmd reports the AWS identity aspenctl is running as, so an
// operator can confirm which account's credentials will back the calls
// they're about to make.
func newWhoamiCmd() *cobra.Command {
	var region string
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Print the AWS caller identity aspenctl is running as",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
			if err != nil {
				return fmt.Errorf("failed to load AWS config: %w", err)
			}

			identity, err := sts.NewFromConfig(awsCfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
			if err != nil {
				return fmt.Errorf("failed to get caller identity: %w", err)
			}

			fmt.Printf("Account: %s\nUserId:  %s\nArn:     %s\n", deref(identity.Account), deref(identity.UserId), deref(identity.Arn))
			return nil
		},
	}
	cmd.Flags().StringVar(&region, "region", "us-east-1", "AWS region")
	return cmd
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func newEnableAccountCmd() *cobra.Command {
	var callerAccount, accountID string
	var privileged bool
	cmd := &cobra.Command{
		Use:   "enable-account",
		Short: "Enable an account for Aspen authorization",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				AccountID string `json:"accountId"`
			}
			err := doRequest(cmd.Context(), http.MethodPost, fmt.Sprintf("/v1/accounts/%s/enable", callerAccount), map[string]any{
				"accountId":  accountID,
				"privileged": privileged,
			}, &out)
			if err != nil {
				return err
			}
			fmt.Println(out.AccountID)
			return nil
		},
	}
	cmd.Flags().StringVar(&callerAccount, "caller-account", "", "privileged caller's account ID")
	cmd.Flags().StringVar(&accountID, "account", "", "account ID to enable")
	cmd.Flags().BoolVar(&privileged, "privileged", false, "grant the new account privileged (Cedar-bypass) access")
	cmd.MarkFlagRequired("caller-account")
	cmd.MarkFlagRequired("account")
	return cmd
}

func newCreatePolicyCmd() *cobra.Command {
	var accountID, name, description, file string
	cmd := &cobra.Command{
		Use:   "create-policy",
		Short: "Create a policy template from an Aspen policy document",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read policy file: %w", err)
			}

			var out struct {
				PolicyID string `json:"policyId"`
			}
			err = doRequest(cmd.Context(), http.MethodPost, fmt.Sprintf("/v1/accounts/%s/policies", accountID), map[string]any{
				"name":        name,
				"description": description,
				"policy":      json.RawMessage(raw),
			}, &out)
			if err != nil {
				return err
			}
			fmt.Println(out.PolicyID)
			return nil
		},
	}
	cmd.Flags().StringVar(&accountID, "account", "", "account ID")
	cmd.Flags().StringVar(&name, "name", "", "policy name")
	cmd.Flags().StringVar(&description, "description", "", "policy description")
	cmd.Flags().StringVar(&file, "file", "", "path to an Aspen policy document (JSON)")
	cmd.MarkFlagRequired("account")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newDeletePolicyCmd() *cobra.Command {
	var accountID, policyID string
	cmd := &cobra.Command{
		Use:   "delete-policy",
		Short: "Delete a policy template",
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRequest(cmd.Context(), http.MethodDelete, fmt.Sprintf("/v1/accounts/%s/policies/%s", accountID, policyID), nil, nil)
		},
	}
	cmd.Flags().StringVar(&accountID, "account", "", "account ID")
	cmd.Flags().StringVar(&policyID, "policy-id", "", "policy ID")
	cmd.MarkFlagRequired("account")
	cmd.MarkFlagRequired("policy-id")
	return cmd
}

func newCreateGroupCmd() *cobra.Command {
	var accountID, name, description string
	cmd := &cobra.Command{
		Use:   "create-group",
		Short: "Create a group",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				GroupID string `json:"groupId"`
			}
			err := doRequest(cmd.Context(), http.MethodPost, fmt.Sprintf("/v1/accounts/%s/groups", accountID), map[string]any{
				"name":        name,
				"description": description,
			}, &out)
			if err != nil {
				return err
			}
			fmt.Println(out.GroupID)
			return nil
		},
	}
	cmd.Flags().StringVar(&accountID, "account", "", "account ID")
	cmd.Flags().StringVar(&name, "name", "", "group name")
	cmd.Flags().StringVar(&description, "description", "", "group description")
	cmd.MarkFlagRequired("account")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newDeleteGroupCmd() *cobra.Command {
	var accountID, groupID string
	cmd := &cobra.Command{
		Use:   "delete-group",
		Short: "Delete a group",
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRequest(cmd.Context(), http.MethodDelete, fmt.Sprintf("/v1/accounts/%s/groups/%s", accountID, groupID), nil, nil)
		},
	}
	cmd.Flags().StringVar(&accountID, "account", "", "account ID")
	cmd.Flags().StringVar(&groupID, "group-id", "", "group ID")
	cmd.MarkFlagRequired("account")
	cmd.MarkFlagRequired("group-id")
	return cmd
}

func newAddGroupMemberCmd() *cobra.Command {
	var accountID, groupID, memberARN string
	cmd := &cobra.Command{
		Use:   "add-group-member",
		Short: "Add a principal to a group",
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRequest(cmd.Context(), http.MethodPost, fmt.Sprintf("/v1/accounts/%s/groups/%s/members", accountID, groupID), map[string]any{
				"memberArn": memberARN,
			}, nil)
		},
	}
	cmd.Flags().StringVar(&accountID, "account", "", "account ID")
	cmd.Flags().StringVar(&groupID, "group-id", "", "group ID")
	cmd.Flags().StringVar(&memberARN, "member-arn", "", "principal ARN to add")
	cmd.MarkFlagRequired("account")
	cmd.MarkFlagRequired("group-id")
	cmd.MarkFlagRequired("member-arn")
	return cmd
}

func newCreateAttachmentCmd() *cobra.Command {
	var accountID, policyID, targetType, targetID string
	cmd := &cobra.Command{
		Use:   "create-attachment",
		Short: "Attach a policy to a user or group",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				AttachmentID string `json:"attachmentId"`
			}
			err := doRequest(cmd.Context(), http.MethodPost, fmt.Sprintf("/v1/accounts/%s/attachments", accountID), map[string]any{
				"policyId":   policyID,
				"targetType": targetType,
				"targetId":   targetID,
			}, &out)
			if err != nil {
				return err
			}
			fmt.Println(out.AttachmentID)
			return nil
		},
	}
	cmd.Flags().StringVar(&accountID, "account", "", "account ID")
	cmd.Flags().StringVar(&policyID, "policy-id", "", "policy ID")
	cmd.Flags().StringVar(&targetType, "target-type", "", "user or group")
	cmd.Flags().StringVar(&targetID, "target-id", "", "target ARN or group ID")
	cmd.MarkFlagRequired("account")
	cmd.MarkFlagRequired("policy-id")
	cmd.MarkFlagRequired("target-type")
	cmd.MarkFlagRequired("target-id")
	return cmd
}

func newDeleteAttachmentCmd() *cobra.Command {
	var accountID, attachmentID string
	cmd := &cobra.Command{
		Use:   "delete-attachment",
		Short: "Remove a policy attachment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRequest(cmd.Context(), http.MethodDelete, fmt.Sprintf("/v1/accounts/%s/attachments/%s", accountID, attachmentID), nil, nil)
		},
	}
	cmd.Flags().StringVar(&accountID, "account", "", "account ID")
	cmd.Flags().StringVar(&attachmentID, "attachment-id", "", "attachment ID")
	cmd.MarkFlagRequired("account")
	cmd.MarkFlagRequired("attachment-id")
	return cmd
}

func newAuthorizeCmd() *cobra.Command {
	var accountID, principal, action, resource string
	var contextPairs, tagPairs []string
	cmd := &cobra.Command{
		Use:   "authorize",
		Short: "Run an authorization check",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Decision string `json:"decision"`
			}
			err := doRequest(cmd.Context(), http.MethodPost, fmt.Sprintf("/v1/accounts/%s/authorize", accountID), map[string]any{
				"principal":    principal,
				"action":       action,
				"resource":     resource,
				"context":      toMap(contextPairs),
				"resourceTags": toMap(tagPairs),
			}, &out)
			if err != nil {
				return err
			}
			fmt.Println(out.Decision)
			return nil
		},
	}
	cmd.Flags().StringVar(&accountID, "account", "", "account ID")
	cmd.Flags().StringVar(&principal, "principal", "", "caller principal ARN")
	cmd.Flags().StringVar(&action, "action", "", "requested action")
	cmd.Flags().StringVar(&resource, "resource", "", "requested resource ARN")
	cmd.Flags().StringSliceVar(&contextPairs, "context", nil, "context key=value pairs, repeatable")
	cmd.Flags().StringSliceVar(&tagPairs, "resource-tag", nil, "resource tag key=value pairs, repeatable")
	cmd.MarkFlagRequired("account")
	cmd.MarkFlagRequired("principal")
	cmd.MarkFlagRequired("action")
	cmd.MarkFlagRequired("resource")
	return cmd
}

func toMap(pairs []string) map[string]string {
	if len(pairs) == 0 {
		return nil
	}
	m := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		m[k] = v
	}
	return m
}
