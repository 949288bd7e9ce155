package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/BradenHooton/shopflow/internal/config"
	"github.com/BradenHooton/shopflow/internal/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// dynamoAPI is the subset of the DynamoDB client used by DynamoVerificationRepository
type dynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// dynamoVerificationItem is the stored item shape. ttl lets DynamoDB expire items on its own.
type dynamoVerificationItem struct {
	Email      string     `dynamodbav:"email"`
	Code       string     `dynamodbav:"code"`
	ExpiresAt  time.Time  `dynamodbav:"expires_at"`
	ConsumedAt *time.Time `dynamodbav:"consumed_at,omitempty"`
	TTL        int64      `dynamodbav:"ttl"`
}

// DynamoVerificationRepository stores one-time login codes in a DynamoDB table keyed by email
type DynamoVerificationRepository struct {
	client    dynamoAPI
	tableName string
}

// NewDynamoClient creates a DynamoDB client. When AWS_ENDPOINT_URL is set (LocalStack)
// all traffic goes to that endpoint.
func NewDynamoClient(ctx context.Context, cfg *config.AWSConfig) (*dynamodb.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var clientOpts []func(*dynamodb.Options)
	if cfg.EndpointURL != "" {
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
		})
	}

	return dynamodb.NewFromConfig(awsCfg, clientOpts...), nil
}

func NewDynamoVerificationRepository(client dynamoAPI, tableName string) *DynamoVerificationRepository {
	return &DynamoVerificationRepository{client: client, tableName: tableName}
}

// EnsureVerificationTable creates the verification table with TTL enabled if it does not exist
func EnsureVerificationTable(ctx context.Context, client *dynamodb.Client, tableName string, logger *slog.Logger) error {
	_, err := client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:   aws.String(tableName),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("email"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("email"), KeyType: types.KeyTypeHash},
		},
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if errors.As(err, &inUse) {
			return nil
		}
		return fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	logger.Info("created dynamodb table", slog.String("table", tableName))

	if err := dynamodb.NewTableExistsWaiter(client).Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(tableName),
	}, 30*time.Second); err != nil {
		return fmt.Errorf("waiting for table %s: %w", tableName, err)
	}

	_, err = client.UpdateTimeToLive(ctx, &dynamodb.UpdateTimeToLiveInput{
		TableName: aws.String(tableName),
		TimeToLiveSpecification: &types.TimeToLiveSpecification{
			Enabled:       aws.Bool(true),
			AttributeName: aws.String("ttl"),
		},
	})
	if err != nil {
		logger.Warn("could not enable TTL", slog.String("table", tableName), slog.String("error", err.Error()))
	}

	return nil
}

func emailKey(email string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"email": &types.AttributeValueMemberS{Value: email},
	}
}

// Upsert stores the record, replacing any outstanding code for the same email
func (r *DynamoVerificationRepository) Upsert(ctx context.Context, record *models.VerificationRecord) error {
	item, err := attributevalue.MarshalMap(dynamoVerificationItem{
		Email:     record.Email,
		Code:      record.Code,
		ExpiresAt: record.ExpiresAt.UTC(),
		TTL:       record.ExpiresAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal verification: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert verification code: %w", err)
	}
	return nil
}

// Find returns the record for email, or models.ErrNotFound
func (r *DynamoVerificationRepository) Find(ctx context.Context, email string) (*models.VerificationRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            emailKey(email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get verification code: %w", err)
	}
	if out.Item == nil {
		return nil, models.ErrNotFound
	}

	var item dynamoVerificationItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal verification: %w", err)
	}

	return &models.VerificationRecord{
		Email:      item.Email,
		Code:       item.Code,
		ExpiresAt:  item.ExpiresAt,
		ConsumedAt: item.ConsumedAt,
	}, nil
}

// Consume spends code for email. A failed condition means the code does not
// match, was already spent, or no record exists.
func (r *DynamoVerificationRepository) Consume(ctx context.Context, email, code string) (bool, error) {
	now, err := attributevalue.Marshal(time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("marshal consumed_at: %w", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 emailKey(email),
		UpdateExpression:    aws.String("SET consumed_at = :now"),
		ConditionExpression: aws.String("attribute_exists(email) AND attribute_not_exists(consumed_at) AND code = :code"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now":  now,
			":code": &types.AttributeValueMemberS{Value: code},
		},
	})
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return false, nil
		}
		return false, fmt.Errorf("failed to consume verification code: %w", err)
	}
	return true, nil
}

// Delete removes the record for email. Deleting a missing record is not an error.
func (r *DynamoVerificationRepository) Delete(ctx context.Context, email string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       emailKey(email),
	})
	if err != nil {
		return fmt.Errorf("failed to delete verification code: %w", err)
	}
	return nil
}
