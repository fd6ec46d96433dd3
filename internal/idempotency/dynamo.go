package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/imrishuroy/bonzicart-checkout/internal/aws"
)

// claimCondition lets a key be reclaimed once its TTL has passed, even if
// DynamoDB has not swept the item yet.
const claimCondition = "attribute_not_exists(idempotency_key) OR expires_at < :now"

// DynamoStore keeps place-order keys in a DynamoDB table whose TTL
// attribute is expires_at.
type DynamoStore struct {
	client  aws.DynamoDBAPI
	table   string
	ttl     time.Duration
	nowFunc func() time.Time
}

// NewDynamoStore returns a store on table. A key blocks duplicates for ttl.
func NewDynamoStore(client aws.DynamoDBAPI, table string, ttl time.Duration) *DynamoStore {
	return &DynamoStore{client: client, table: table, ttl: ttl, nowFunc: time.Now}
}

func keyAttr(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"idempotency_key": &types.AttributeValueMemberS{Value: key},
	}
}

// CreateIfNotExists claims key for sessionID with an IN_PROGRESS record.
func (s *DynamoStore) CreateIfNotExists(ctx context.Context, key, sessionID string) (bool, error) {
	now := s.nowFunc()
	item, err := attributevalue.MarshalMap(Record{
		IdempotencyKey: key,
		Status:         StatusInProgress,
		SessionID:      sessionID,
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      now.Add(s.ttl).Unix(),
	})
	if err != nil {
		return false, fmt.Errorf("marshal record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           sdkaws.String(s.table),
		Item:                item,
		ConditionExpression: sdkaws.String(claimCondition),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Unix(), 10)},
		},
	})
	switch {
	case err == nil:
		return true, nil
	case isConditionalFailure(err):
		return false, nil
	default:
		return false, fmt.Errorf("claim key %s: %w", key, err)
	}
}

// Reclaim flips a FAILED key back to IN_PROGRESS and restarts its TTL. The
// status condition makes exactly one of several concurrent retries win.
func (s *DynamoStore) Reclaim(ctx context.Context, key string) (bool, error) {
	now := s.nowFunc()
	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:                sdkaws.String(s.table),
		Key:                      keyAttr(key),
		UpdateExpression:         sdkaws.String("SET #s = :st, updated_at = :ua, expires_at = :exp REMOVE note"),
		ConditionExpression:      sdkaws.String("#s = :failed"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":st":     &types.AttributeValueMemberS{Value: StatusInProgress},
			":failed": &types.AttributeValueMemberS{Value: StatusFailed},
			":ua":     &types.AttributeValueMemberS{Value: now.UTC().Format(time.RFC3339Nano)},
			":exp":    &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Add(s.ttl).Unix(), 10)},
		},
	})
	switch {
	case err == nil:
		return true, nil
	case isConditionalFailure(err):
		return false, nil
	default:
		return false, fmt.Errorf("reclaim key %s: %w", key, err)
	}
}

// Get returns (nil, nil) for unknown or lapsed keys.
func (s *DynamoStore) Get(ctx context.Context, key string) (*Record, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName:      sdkaws.String(s.table),
		Key:            keyAttr(key),
		ConsistentRead: sdkaws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get key %s: %w", key, err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var rec Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("decode key %s: %w", key, err)
	}
	if rec.ExpiresAt > 0 && rec.ExpiresAt < s.nowFunc().Unix() {
		return nil, nil
	}
	return &rec, nil
}

// MarkDone stores the order and the response replayed to repeat requests.
func (s *DynamoStore) MarkDone(ctx context.Context, key, orderID, responseBody string, responseStatus int) error {
	return s.setStatus(ctx, key, "order_id = :oid, response_body = :rb, response_status = :rs",
		map[string]types.AttributeValue{
			":st":  &types.AttributeValueMemberS{Value: StatusDone},
			":oid": &types.AttributeValueMemberS{Value: orderID},
			":rb":  &types.AttributeValueMemberS{Value: responseBody},
			":rs":  &types.AttributeValueMemberN{Value: strconv.Itoa(responseStatus)},
		})
}

// MarkFailed releases key for a retry and keeps note for diagnosis.
func (s *DynamoStore) MarkFailed(ctx context.Context, key, note string) error {
	return s.setStatus(ctx, key, "note = :n", map[string]types.AttributeValue{
		":st": &types.AttributeValueMemberS{Value: StatusFailed},
		":n":  &types.AttributeValueMemberS{Value: note},
	})
}

// setStatus writes :st into status along with the extra assignments.
func (s *DynamoStore) setStatus(ctx context.Context, key, assignments string, values map[string]types.AttributeValue) error {
	values[":ua"] = &types.AttributeValueMemberS{Value: s.nowFunc().UTC().Format(time.RFC3339Nano)}
	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:                 sdkaws.String(s.table),
		Key:                       keyAttr(key),
		UpdateExpression:          sdkaws.String("SET #s = :st, updated_at = :ua, " + assignments),
		ExpressionAttributeNames:  map[string]string{"#s": "status"},
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return fmt.Errorf("set %s on key %s: %w", values[":st"].(*types.AttributeValueMemberS).Value, key, err)
	}
	return nil
}

func isConditionalFailure(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException"
}
