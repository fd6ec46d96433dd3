package idempotency

import (
	"context"
	"time"
)

// Status values for idempotency entries
const (
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
	StatusFailed     = "FAILED"
)

// Record is one idempotency entry: a client key tied to the checkout session
// it was used on and, once settled, the response to replay.
type Record struct {
	IdempotencyKey string    `dynamodbav:"idempotency_key"` // PK
	Status         string    `dynamodbav:"status"`
	SessionID      string    `dynamodbav:"session_id,omitempty"`
	OrderID        string    `dynamodbav:"order_id,omitempty"`
	ResponseBody   string    `dynamodbav:"response_body,omitempty"`   // small JSON responses only
	ResponseStatus int       `dynamodbav:"response_status,omitempty"` // e.g., 201
	CreatedAt      time.Time `dynamodbav:"created_at"`
	UpdatedAt      time.Time `dynamodbav:"updated_at"`
	ExpiresAt      int64     `dynamodbav:"expires_at"` // TTL epoch seconds
	Note           string    `dynamodbav:"note,omitempty"`
}

// Store is implemented by DynamoStore and MemoryStore.
type Store interface {
	// CreateIfNotExists returns created=false when the key is already taken.
	CreateIfNotExists(ctx context.Context, key, sessionID string) (bool, error)
	// Get returns (nil, nil) for unknown keys.
	Get(ctx context.Context, key string) (*Record, error)
	MarkDone(ctx context.Context, key, orderID, responseBody string, responseStatus int) error
	MarkFailed(ctx context.Context, key, note string) error
	// Reclaim moves a FAILED key back to IN_PROGRESS for a retry. It returns
	// false when the key is no longer FAILED because another retry won.
	Reclaim(ctx context.Context, key string) (bool, error)
}
