package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/openshift-online/aspen/pkg/authz/client"
)

// Member represents a principal's membership in a group
type Member struct {
	AccountIDGroupID string `dynamodbav:"accountId#groupId" json:"-"`
	MemberARN        string `dynamodbav:"memberArn" json:"memberArn"`
	AccountID        string `dynamodbav:"accountId" json:"accountId"`
	GroupID          string `dynamodbav:"groupId" json:"groupId"`
	CreatedAt        string `dynamodbav:"createdAt" json:"createdAt"`
	// GSI attribute for the member -> groups lookup (member-index)
	AccountIDMemberARN string `dynamodbav:"accountId#memberArn" json:"-"`
}

// MemberStore provides CRUD operations for group memberships
type MemberStore struct {
	tableName    string
	dynamoClient client.DynamoDBClient
	logger       *slog.Logger
}

// NewMemberStore creates a new member store
func NewMemberStore(tableName string, dynamoClient client.DynamoDBClient, logger *slog.Logger) *MemberStore {
	return &MemberStore{
		tableName:    tableName,
		dynamoClient: dynamoClient,
		logger:       logger,
	}
}

// Add adds a principal to a group
func (s *MemberStore) Add(ctx context.Context, accountID, groupID, memberARN string) error {
	m := &Member{
		AccountIDGroupID:   fmt.Sprintf("%s#%s", accountID, groupID),
		MemberARN:          memberARN,
		AccountID:          accountID,
		GroupID:            groupID,
		CreatedAt:          time.Now().UTC().Format(time.RFC3339),
		AccountIDMemberARN: fmt.Sprintf("%s#%s", accountID, memberARN),
	}

	item, err := attributevalue.MarshalMap(m)
	if err != nil {
		return fmt.Errorf("failed to marshal member: %w", err)
	}

	_, err = s.dynamoClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to add group member: %w", err)
	}

	s.logger.Info("group member added", "account_id", accountID, "group_id", groupID, "member_arn", memberARN)
	return nil
}

// Remove removes a principal from a group
func (s *MemberStore) Remove(ctx context.Context, accountID, groupID, memberARN string) error {
	_, err := s.dynamoClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"accountId#groupId": &types.AttributeValueMemberS{Value: fmt.Sprintf("%s#%s", accountID, groupID)},
			"memberArn":         &types.AttributeValueMemberS{Value: memberARN},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to remove group member: %w", err)
	}

	s.logger.Info("group member removed", "account_id", accountID, "group_id", groupID, "member_arn", memberARN)
	return nil
}

// RemoveAllGroupMembers removes every member of a group (used when deleting the group)
func (s *MemberStore) RemoveAllGroupMembers(ctx context.Context, accountID, groupID string) error {
	members, err := s.ListGroupMembers(ctx, accountID, groupID)
	if err != nil {
		return err
	}

	for _, memberARN := range members {
		if err := s.Remove(ctx, accountID, groupID, memberARN); err != nil {
			return err
		}
	}

	return nil
}

// ListGroupMembers returns every principal ARN in a group
func (s *MemberStore) ListGroupMembers(ctx context.Context, accountID, groupID string) ([]string, error) {
	result, err := s.dynamoClient.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("#pk = :pk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": "accountId#groupId",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("%s#%s", accountID, groupID)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}

	members := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		var m Member
		if err := attributevalue.UnmarshalMap(item, &m); err != nil {
			return nil, fmt.Errorf("failed to unmarshal member: %w", err)
		}
		members = append(members, m.MemberARN)
	}

	return members, nil
}

// GetUserGroups returns every group ID a principal belongs to, via the
// member-index GSI keyed on accountId#memberArn.
func (s *MemberStore) GetUserGroups(ctx context.Context, accountID, memberARN string) ([]string, error) {
	result, err := s.dynamoClient.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String("member-index"),
		KeyConditionExpression: aws.String("#pk = :pk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": "accountId#memberArn",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("%s#%s", accountID, memberARN)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list user groups: %w", err)
	}

	groups := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		var m Member
		if err := attributevalue.UnmarshalMap(item, &m); err != nil {
			return nil, fmt.Errorf("failed to unmarshal member: %w", err)
		}
		groups = append(groups, m.GroupID)
	}

	return groups, nil
}
