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

// Admin represents a principal granted admin (Cedar-bypass) access on an account
type Admin struct {
	AccountID    string `dynamodbav:"accountId" json:"accountId"`
	PrincipalARN string `dynamodbav:"principalArn" json:"principalArn"`
	CreatedBy    string `dynamodbav:"createdBy" json:"createdBy"`
	CreatedAt    string `dynamodbav:"createdAt" json:"createdAt"`
}

// AdminStore provides CRUD operations for account admins
type AdminStore struct {
	tableName    string
	dynamoClient client.DynamoDBClient
	logger       *slog.Logger
}

// NewAdminStore creates a new admin store
func NewAdminStore(tableName string, dynamoClient client.DynamoDBClient, logger *slog.Logger) *AdminStore {
	return &AdminStore{
		tableName:    tableName,
		dynamoClient: dynamoClient,
		logger:       logger,
	}
}

// Add grants admin access to a principal
func (s *AdminStore) Add(ctx context.Context, admin *Admin) error {
	if admin.CreatedAt == "" {
		admin.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	item, err := attributevalue.MarshalMap(admin)
	if err != nil {
		return fmt.Errorf("failed to marshal admin: %w", err)
	}

	_, err = s.dynamoClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to add admin: %w", err)
	}

	s.logger.Info("admin added", "account_id", admin.AccountID, "principal_arn", admin.PrincipalARN)
	return nil
}

// Remove revokes admin access from a principal
func (s *AdminStore) Remove(ctx context.Context, accountID, principalARN string) error {
	_, err := s.dynamoClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"accountId":    &types.AttributeValueMemberS{Value: accountID},
			"principalArn": &types.AttributeValueMemberS{Value: principalARN},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to remove admin: %w", err)
	}

	s.logger.Info("admin removed", "account_id", accountID, "principal_arn", principalARN)
	return nil
}

// IsAdmin reports whether principalARN has admin access on accountID
func (s *AdminStore) IsAdmin(ctx context.Context, accountID, principalARN string) (bool, error) {
	result, err := s.dynamoClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"accountId":    &types.AttributeValueMemberS{Value: accountID},
			"principalArn": &types.AttributeValueMemberS{Value: principalARN},
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to check admin: %w", err)
	}

	return result.Item != nil, nil
}

// ListARNs returns every admin principal ARN for an account
func (s *AdminStore) ListARNs(ctx context.Context, accountID string) ([]string, error) {
	result, err := s.dynamoClient.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("accountId = :aid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":aid": &types.AttributeValueMemberS{Value: accountID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}

	arns := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		var a Admin
		if err := attributevalue.UnmarshalMap(item, &a); err != nil {
			return nil, fmt.Errorf("failed to unmarshal admin: %w", err)
		}
		arns = append(arns, a.PrincipalARN)
	}

	return arns, nil
}
