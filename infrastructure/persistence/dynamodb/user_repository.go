// Package dynamodb implements the user store on a single DynamoDB table
// keyed by the user id. Writes are guarded with conditional expressions;
// there is no multi-item transaction anywhere in this layer.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"users-backend/application/ports"
	"users-backend/domain/users"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// DynamoDBAPI is the subset of the DynamoDB client the repository uses.
// Tests substitute a fake.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// UserRepository implements ports.UserRepository against DynamoDB
type UserRepository struct {
	client    DynamoDBAPI
	tableName string
	logger    *zap.Logger
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(client DynamoDBAPI, tableName string, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// userItem is the DynamoDB item layout for a user record. Optional
// attributes are stored as NULL when absent, matching the table's
// historical shape; audit attributes are written only when present.
type userItem struct {
	ID        string  `dynamodbav:"id"`
	Name      string  `dynamodbav:"name"`
	Email     string  `dynamodbav:"email"`
	Age       *int    `dynamodbav:"age"`
	Phone     *string `dynamodbav:"phone"`
	Address   *string `dynamodbav:"address"`
	CreatedAt string  `dynamodbav:"createdAt"`
	UpdatedAt string  `dynamodbav:"updatedAt"`
	CreatedBy string  `dynamodbav:"createdBy,omitempty"`
	UpdatedBy string  `dynamodbav:"updatedBy,omitempty"`
	Version   int     `dynamodbav:"version,omitempty"`
}

func itemFromRecord(rec *users.Record) userItem {
	return userItem{
		ID:        rec.ID,
		Name:      rec.Name,
		Email:     rec.Email,
		Age:       rec.Age,
		Phone:     rec.Phone,
		Address:   rec.Address,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
		CreatedBy: rec.CreatedBy,
		UpdatedBy: rec.UpdatedBy,
		Version:   rec.Version,
	}
}

func (i *userItem) record() *users.Record {
	return &users.Record{
		ID:        i.ID,
		Name:      i.Name,
		Email:     i.Email,
		Age:       i.Age,
		Phone:     i.Phone,
		Address:   i.Address,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
		CreatedBy: i.CreatedBy,
		UpdatedBy: i.UpdatedBy,
		Version:   i.Version,
	}
}

// GetByID looks up a record by primary key. Absence is (nil, nil), not an error.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*users.Record, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		r.logger.Error("Failed to get user from DynamoDB",
			zap.Error(err),
			zap.String("id", id),
		)
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}

	if out.Item == nil {
		return nil, nil
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user %s: %w", id, err)
	}

	return item.record(), nil
}

// List performs an unordered scan of the whole table, optionally capped.
func (r *UserRepository) List(ctx context.Context, limit int32) (*users.RecordPage, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}

	out, err := r.client.Scan(ctx, input)
	if err != nil {
		r.logger.Error("Failed to scan users table", zap.Error(err))
		return nil, fmt.Errorf("failed to scan users: %w", err)
	}

	items := make([]users.Record, 0, len(out.Items))
	for _, raw := range out.Items {
		var item userItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal scanned user: %w", err)
		}
		items = append(items, *item.record())
	}

	return &users.RecordPage{
		Items:   items,
		Count:   len(items),
		HasMore: out.LastEvaluatedKey != nil,
	}, nil
}

// FindByEmail scans for an exact lower-cased email match. Linear in table
// size; acceptable only at this system's scale.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*users.Record, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	expr, err := expression.NewBuilder().
		WithFilter(expression.Name("email").Equal(expression.Value(email))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build email filter: %w", err)
	}

	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		r.logger.Error("Failed to scan users by email", zap.Error(err))
		return nil, fmt.Errorf("failed to scan users by email: %w", err)
	}

	if len(out.Items) == 0 {
		return nil, nil
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user by email: %w", err)
	}

	return item.record(), nil
}

// Create writes the record guarded on the id not already existing.
func (r *UserRepository) Create(ctx context.Context, rec *users.Record) error {
	av, err := attributevalue.MarshalMap(itemFromRecord(rec))
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			return fmt.Errorf("user %s: %w", rec.ID, ports.ErrConditionalCheckFailed)
		}
		r.logger.Error("Failed to put user to DynamoDB",
			zap.Error(err),
			zap.String("id", rec.ID),
		)
		return fmt.Errorf("failed to put user %s: %w", rec.ID, err)
	}

	return nil
}

// Update applies the supplied field changes, guarded only on the id
// existing. The version attribute travels inside changes; it is never used
// as a write condition, so concurrent updates can overwrite each other.
func (r *UserRepository) Update(ctx context.Context, id string, changes map[string]interface{}) (*users.Record, error) {
	upd := buildUpdateExpression(changes, []string{"id", "createdAt"}, time.Now().UTC().Format(time.RFC3339))

	expr, err := expression.NewBuilder().
		WithUpdate(upd).
		WithCondition(expression.AttributeExists(expression.Name("id"))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build update expression: %w", err)
	}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			return nil, fmt.Errorf("user %s: %w", id, ports.ErrConditionalCheckFailed)
		}
		r.logger.Error("Failed to update user in DynamoDB",
			zap.Error(err),
			zap.String("id", id),
		)
		return nil, fmt.Errorf("failed to update user %s: %w", id, err)
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated user %s: %w", id, err)
	}

	return item.record(), nil
}

// Delete removes the record guarded on the id existing and returns the old item.
func (r *UserRepository) Delete(ctx context.Context, id string) (*users.Record, error) {
	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression: aws.String("attribute_exists(id)"),
		ReturnValues:        types.ReturnValueAllOld,
	})
	if err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			return nil, fmt.Errorf("user %s: %w", id, ports.ErrConditionalCheckFailed)
		}
		r.logger.Error("Failed to delete user from DynamoDB",
			zap.Error(err),
			zap.String("id", id),
		)
		return nil, fmt.Errorf("failed to delete user %s: %w", id, err)
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal deleted user %s: %w", id, err)
	}

	return item.record(), nil
}

// Ping performs a one-item scan to verify the table is reachable.
func (r *UserRepository) Ping(ctx context.Context) error {
	_, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
		Limit:     aws.Int32(1),
	})
	if err != nil {
		return fmt.Errorf("failed to ping table %s: %w", r.tableName, err)
	}
	return nil
}

// TableName returns the backing table name
func (r *UserRepository) TableName() string {
	return r.tableName
}
