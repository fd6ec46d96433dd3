package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/imrishuroy/bonzicart-checkout/internal/aws"
	"github.com/imrishuroy/bonzicart-checkout/internal/checkout"
	"github.com/imrishuroy/bonzicart-checkout/internal/config"
	"github.com/imrishuroy/bonzicart-checkout/internal/confirmations"
	"github.com/imrishuroy/bonzicart-checkout/internal/handlers"
	"github.com/imrishuroy/bonzicart-checkout/internal/idempotency"
	"github.com/imrishuroy/bonzicart-checkout/internal/logging"
	"github.com/imrishuroy/bonzicart-checkout/internal/service"
	"github.com/imrishuroy/bonzicart-checkout/internal/sessions"
	"go.uber.org/zap"
)

// buildService wires the checkout service from config. AWS clients are only
// created when a table, queue or metrics namespace asks for them.
func buildService(ctx context.Context, cfg config.Config) (*service.Checkout, error) {
	rates, err := cfg.Rates()
	if err != nil {
		return nil, err
	}
	cart, err := cfg.CheckoutCart()
	if err != nil {
		return nil, err
	}

	var clients *aws.AWSClients
	needAWS := cfg.SessionStore == config.StoreDynamoDB || cfg.IdempotencyTable != "" ||
		cfg.ConfirmationsQueueURL != "" || cfg.MetricsNamespace != ""
	if needAWS {
		clients, err = aws.NewAWSClients(ctx)
		if err != nil {
			return nil, err
		}
	}

	svcCfg := service.Config{
		Cart:      cart,
		Rates:     rates,
		Submitter: checkout.NewSubmitter(cfg.SubmitDelay),
	}

	if cfg.SessionStore == config.StoreDynamoDB {
		svcCfg.Sessions = sessions.NewDynamoStore(clients.DynamoDB, cfg.SessionsTable, cfg.SessionTTL)
	} else {
		svcCfg.Sessions = sessions.NewMemoryStore(cfg.SessionTTL)
	}

	if cfg.IdempotencyTable != "" {
		svcCfg.Idempotency = idempotency.NewDynamoStore(clients.DynamoDB, cfg.IdempotencyTable, cfg.IdempotencyTTL)
	} else {
		svcCfg.Idempotency = idempotency.NewMemoryStore(cfg.IdempotencyTTL)
	}

	if cfg.ConfirmationsQueueURL != "" {
		svcCfg.Notifier = confirmations.NewQueueNotifier(aws.NewPublisher(clients.SQS, cfg.ConfirmationsQueueURL))
	}

	if cfg.MetricsNamespace != "" {
		svcCfg.Metrics = aws.NewMetricsRecorder(clients.CloudWatch, cfg.MetricsNamespace)
	}

	return service.New(svcCfg)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := logging.Initialize(cfg.LogLevel, cfg.RunLocal); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logging.Sync()

	svc, err := buildService(context.Background(), cfg)
	if err != nil {
		logging.Fatal("failed to build checkout service", zap.Error(err))
	}

	r := handlers.NewRouter(handlers.HandlerConfig{Checkout: svc})

	// if RUN_LOCAL is true, run local HTTP server for development.
	if cfg.RunLocal {
		addr := ":" + cfg.Port
		logging.Info("running local server", zap.String("addr", addr), zap.String("session_store", cfg.SessionStore))
		if err := r.Run(addr); err != nil {
			logging.Fatal("failed to run local server", zap.Error(err))
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
