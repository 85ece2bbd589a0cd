package kv

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type dynamoAPI interface {
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// dynamoItem is the table layout. expiresAt doubles as the table's TTL
// attribute; DynamoDB deletes lazily so reads re-check it.
type dynamoItem struct {
	Key       string `dynamodbav:"pk"`
	Value     []byte `dynamodbav:"value"`
	ExpiresAt int64  `dynamodbav:"expiresAt,omitempty"`
}

// DynamoStore persists entries in a DynamoDB table keyed by "pk".
type DynamoStore struct {
	client dynamoAPI
	table  string
	now    func() time.Time
}

// NewDynamoStore creates a store over the given table.
func NewDynamoStore(client dynamoAPI, table string) *DynamoStore {
	if client == nil {
		panic("kv: dynamodb client cannot be nil")
	}
	if table == "" {
		panic("kv: dynamodb table cannot be empty")
	}
	return &DynamoStore{client: client, table: table, now: time.Now}
}

func (s *DynamoStore) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            map[string]types.AttributeValue{"pk": &types.AttributeValueMemberS{Value: key}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("kv: dynamodb get: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	var item dynamoItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("kv: dynamodb decode: %w", err)
	}
	if item.ExpiresAt > 0 && item.ExpiresAt <= s.now().Unix() {
		return nil, ErrNotFound
	}
	return item.Value, nil
}

func (s *DynamoStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	input, err := s.putInput(key, value, ttl)
	if err != nil {
		return err
	}
	if _, err := s.client.PutItem(ctx, input); err != nil {
		return fmt.Errorf("kv: dynamodb put: %w", err)
	}
	return nil
}

func (s *DynamoStore) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	input, err := s.putInput(key, value, ttl)
	if err != nil {
		return false, err
	}
	input.ConditionExpression = aws.String("attribute_not_exists(pk) OR (attribute_exists(expiresAt) AND expiresAt <= :now)")
	input.ExpressionAttributeValues = map[string]types.AttributeValue{
		":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(s.now().Unix(), 10)},
	}
	if _, err := s.client.PutItem(ctx, input); err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, fmt.Errorf("kv: dynamodb conditional put: %w", err)
	}
	return true, nil
}

func (s *DynamoStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       map[string]types.AttributeValue{"pk": &types.AttributeValueMemberS{Value: key}},
	})
	if err != nil {
		return fmt.Errorf("kv: dynamodb delete: %w", err)
	}
	return nil
}

func (s *DynamoStore) putInput(key string, value []byte, ttl time.Duration) (*dynamodb.PutItemInput, error) {
	item := dynamoItem{Key: key, Value: value}
	if exp := expiry(s.now(), ttl); !exp.IsZero() {
		item.ExpiresAt = exp.Unix()
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("kv: dynamodb encode: %w", err)
	}
	return &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	}, nil
}

var _ Store = (*DynamoStore)(nil)
