package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/imrishuroy/bonzicart-checkout/internal/aws"
	"github.com/imrishuroy/bonzicart-checkout/internal/config"
	"github.com/imrishuroy/bonzicart-checkout/internal/idempotency"
	"github.com/imrishuroy/bonzicart-checkout/internal/logging"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := logging.Initialize(cfg.LogLevel, cfg.RunLocal); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logging.Sync()

	var store idempotency.Store = idempotency.NewMemoryStore(cfg.IdempotencyTTL)
	if cfg.IdempotencyTable != "" {
		clients, err := aws.NewAWSClients(context.Background())
		if err != nil {
			logging.Fatal("failed to init aws clients", zap.Error(err))
		}
		store = idempotency.NewDynamoStore(clients.DynamoDB, cfg.IdempotencyTable, cfg.IdempotencyTTL)
	}
	p := NewProcessor(store, LogMailer{})

	// If RUN_LOCAL=true, simulate a single SQS event for local testing.
	if cfg.RunLocal {
		testBody := os.Getenv("LOCAL_SQS_BODY")
		if testBody == "" {
			testBody = `{"order_id":"local-order-1","session_id":"local-session-1","email":"jane@example.com","total":"210.04","payment_method":"card","placed_at":"2026-01-01T00:00:00Z"}`
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{
				{MessageId: "local-1", Body: testBody},
			},
		}
		resp, err := p.Handle(context.Background(), event)
		if err != nil || len(resp.BatchItemFailures) > 0 {
			logging.Fatal("local handler error", zap.Error(err), zap.Int("failures", len(resp.BatchItemFailures)))
		}
		return
	}

	lambda.Start(p.Handle)
}
