package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/imrishuroy/bonzicart-checkout/internal/aws"
	"github.com/imrishuroy/bonzicart-checkout/internal/checkout"
)

// item is the DynamoDB representation of a session. The session itself is
// stored as JSON so money values keep their exact decimal form.
type item struct {
	SessionID string    `dynamodbav:"session_id"` // PK
	Version   int64     `dynamodbav:"version"`
	State     string    `dynamodbav:"state"`
	ExpiresAt int64     `dynamodbav:"expires_at,omitempty"` // TTL epoch seconds
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

// DynamoStore encapsulates operations on the sessions table.
type DynamoStore struct {
	client    aws.DynamoDBAPI
	tableName string
	ttl       time.Duration
	nowFunc   func() time.Time
}

// NewDynamoStore creates a sessions store backed by tableName. The table
// should have TTL enabled on expires_at.
func NewDynamoStore(client aws.DynamoDBAPI, tableName string, ttl time.Duration) *DynamoStore {
	return &DynamoStore{
		client:    client,
		tableName: tableName,
		ttl:       ttl,
		nowFunc:   time.Now,
	}
}

// Create stores a new session, failing if the id is taken.
func (s *DynamoStore) Create(ctx context.Context, sess *checkout.Session) error {
	av, err := s.marshal(sess, s.nowFunc())
	if err != nil {
		return err
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                av,
		ConditionExpression: awsString("attribute_not_exists(session_id)"),
	})
	if err != nil {
		if isConditionalFailure(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

// Get fetches a session. Items past their TTL are reported missing even
// if DynamoDB has not swept them yet.
func (s *DynamoStore) Get(ctx context.Context, id string) (*checkout.Session, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName:      &s.tableName,
		Key:            s.key(id),
		ConsistentRead: &consistentRead,
	})
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	var it item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshal session item: %w", err)
	}
	if it.ExpiresAt > 0 && s.nowFunc().Unix() >= it.ExpiresAt {
		return nil, ErrNotFound
	}
	var sess checkout.Session
	if err := json.Unmarshal([]byte(it.State), &sess); err != nil {
		return nil, fmt.Errorf("decode session state: %w", err)
	}
	sess.Version = it.Version
	return &sess, nil
}

// Save writes sess if the stored version still equals sess.Version.
// Returns ErrVersionConflict if the condition failed.
func (s *DynamoStore) Save(ctx context.Context, sess *checkout.Session) error {
	expected := sess.Version
	now := s.nowFunc()

	next := sess.Clone()
	next.Version = expected + 1
	next.UpdatedAt = now
	av, err := s.marshal(next, now)
	if err != nil {
		return err
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                av,
		ConditionExpression: awsString("version = :expected"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: strconv.FormatInt(expected, 10)},
		},
	})
	if err != nil {
		if isConditionalFailure(err) {
			return ErrVersionConflict
		}
		return fmt.Errorf("save session: %w", err)
	}
	sess.Version = next.Version
	sess.UpdatedAt = now
	return nil
}

func (s *DynamoStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName: &s.tableName,
		Key:       s.key(id),
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *DynamoStore) marshal(sess *checkout.Session, now time.Time) (map[string]types.AttributeValue, error) {
	state, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("encode session state: %w", err)
	}
	it := item{
		SessionID: sess.ID,
		Version:   sess.Version,
		State:     string(state),
		UpdatedAt: now,
	}
	if s.ttl > 0 {
		it.ExpiresAt = now.Add(s.ttl).Unix()
	}
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return nil, fmt.Errorf("marshal session item: %w", err)
	}
	return av, nil
}

func (s *DynamoStore) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"session_id": &types.AttributeValueMemberS{Value: id},
	}
}

var consistentRead = true

func isConditionalFailure(err error) bool {
	var ae smithy.APIError
	return errors.As(err, &ae) && ae.ErrorCode() == "ConditionalCheckFailedException"
}

func awsString(s string) *string { return &s }
