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

// Account represents an account enabled for Aspen authorization
type Account struct {
	AccountID     string `dynamodbav:"accountId" json:"accountId"`
	Privileged    bool   `dynamodbav:"privileged" json:"privileged"`
	PolicyStoreID string `dynamodbav:"policyStoreId,omitempty" json:"policyStoreId,omitempty"`
	CreatedBy     string `dynamodbav:"createdBy" json:"createdBy"`
	CreatedAt     string `dynamodbav:"createdAt" json:"createdAt"`
}

// AccountStore provides CRUD operations for accounts
type AccountStore struct {
	tableName    string
	dynamoClient client.DynamoDBClient
	logger       *slog.Logger
}

// NewAccountStore creates a new account store
func NewAccountStore(tableName string, dynamoClient client.DynamoDBClient, logger *slog.Logger) *AccountStore {
	return &AccountStore{
		tableName:    tableName,
		dynamoClient: dynamoClient,
		logger:       logger,
	}
}

// Create stores a new account. CreatedAt is stamped here if not already set.
func (s *AccountStore) Create(ctx context.Context, account *Account) error {
	if account.CreatedAt == "" {
		account.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	item, err := attributevalue.MarshalMap(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	_, err = s.dynamoClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info("account created", "account_id", account.AccountID, "privileged", account.Privileged)
	return nil
}

// Get retrieves an account by ID, returning (nil, nil) if it doesn't exist
func (s *AccountStore) Get(ctx context.Context, accountID string) (*Account, error) {
	result, err := s.dynamoClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"accountId": &types.AttributeValueMemberS{Value: accountID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if result.Item == nil {
		return nil, nil
	}

	var a Account
	if err := attributevalue.UnmarshalMap(result.Item, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}

	return &a, nil
}

// Exists reports whether an account is provisioned
func (s *AccountStore) Exists(ctx context.Context, accountID string) (bool, error) {
	account, err := s.Get(ctx, accountID)
	if err != nil {
		return false, err
	}
	return account != nil, nil
}

// Delete removes an account
func (s *AccountStore) Delete(ctx context.Context, accountID string) error {
	_, err := s.dynamoClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"accountId": &types.AttributeValueMemberS{Value: accountID},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	s.logger.Info("account deleted", "account_id", accountID)
	return nil
}

// List returns every known account (used by privileged account-management tooling)
func (s *AccountStore) List(ctx context.Context) ([]*Account, error) {
	result, err := s.dynamoClient.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	accounts := make([]*Account, 0, len(result.Items))
	for _, item := range result.Items {
		var a Account
		if err := attributevalue.UnmarshalMap(item, &a); err != nil {
			return nil, fmt.Errorf("failed to unmarshal account: %w", err)
		}
		accounts = append(accounts, &a)
	}

	return accounts, nil
}
