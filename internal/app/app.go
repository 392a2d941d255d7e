package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"
	"github.com/yashraj9595/zyntherraa/order/internal/dal/interfaces/ioutboxrepo"
	"github.com/yashraj9595/zyntherraa/order/internal/dal/memory"
	"github.com/yashraj9595/zyntherraa/order/internal/dal/postgres"
	"github.com/yashraj9595/zyntherraa/order/internal/dal/rabbitmq"
	"github.com/yashraj9595/zyntherraa/order/internal/dal/redis"
	idempotencyrepo "github.com/yashraj9595/zyntherraa/order/internal/dal/repositories/idempotency/redis"
	outboxrepo "github.com/yashraj9595/zyntherraa/order/internal/dal/repositories/outbox/postgres"
	"github.com/yashraj9595/zyntherraa/order/internal/otel"
	"github.com/yashraj9595/zyntherraa/order/internal/service/services/ordersvc"
	grpctransport "github.com/yashraj9595/zyntherraa/order/internal/transport/grpc"
	httptransport "github.com/yashraj9595/zyntherraa/order/internal/transport/http"
	outboxworker "github.com/yashraj9595/zyntherraa/order/internal/worker/outbox"
	"github.com/yashraj9595/zyntherraa/order/pkg/http/middleware/auth"
)

const defaultIdempotencyTTL = 24 * time.Hour

// App represents the order service application.
type App struct {
	orderSvc       *ordersvc.OrderService
	transport      *httptransport.HTTPTransport
	grpcTransport  *grpctransport.GRPCTransport
	outboxWorker   *outboxworker.Worker
	rabbitMqClient *rabbitmq.Client
	postgresClient *postgres.Client
	redisClient    *redis.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel("order-svc")

	a := &App{otelController: otelController}
	opts := []ordersvc.Option{
		ordersvc.WithTrackingAttempts(viper.GetInt("orders.tracking.max_attempts")),
		ordersvc.WithEventQueue(
			viper.GetString("rabbitmq.queue"),
			viper.GetInt("rabbitmq.outbox.max_retries"),
		),
	}

	var outboxRepository ioutboxrepo.IOutboxRepository
	switch driver := viper.GetString("storage.driver"); driver {
	case "memory":
		store := memory.NewStore()
		opts = append(opts, ordersvc.WithMemoryStore(store))
		outboxRepository = memory.NewOutboxRepository(store)
		slog.Warn("Using in-memory storage, orders are lost on restart")
	case "", "postgres":
		a.postgresClient = postgres.MustNewClient("ORDER")
		opts = append(opts, ordersvc.WithPostgresClient(a.postgresClient))
		outboxRepository = outboxrepo.NewOutboxRepository(a.postgresClient.Pool())
	default:
		panic("unknown storage driver: " + driver)
	}

	ttl := time.Duration(viper.GetInt("redis.idempotency_ttl_seconds")) * time.Second
	if ttl == 0 {
		ttl = defaultIdempotencyTTL
	}
	if a.redisClient = redis.MustNewClient(); a.redisClient != nil {
		opts = append(opts, ordersvc.WithIdempotencyStore(idempotencyrepo.NewIdempotencyStore(a.redisClient, ttl)))
	} else {
		opts = append(opts, ordersvc.WithIdempotencyStore(memory.NewIdempotencyStore(ttl)))
	}

	if viper.GetBool("rabbitmq.enabled") {
		a.rabbitMqClient = rabbitmq.MustNewClient()
		if _, err := a.rabbitMqClient.QueueDeclareFromConfig(); err != nil {
			panic(err)
		}
		a.outboxWorker = outboxworker.NewWorker(outboxRepository, a.rabbitMqClient)
	} else {
		slog.Warn("RabbitMQ disabled, order events stay in the outbox")
	}

	a.orderSvc = ordersvc.MustNewOrderService(opts...)

	a.transport = httptransport.NewHTTPTransport(a.orderSvc, mustNewAuthenticator())
	a.transport.RegisterRoutes()

	var probe func(ctx context.Context) error
	if a.postgresClient != nil {
		probe = a.postgresClient.Pool().Ping
	}
	a.grpcTransport = grpctransport.NewGRPCTransport(probe)

	return a
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	// Create a channel to receive OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	go func() {
		if err := a.grpcTransport.Run(); err != nil {
			slog.Error("gRPC server error", "error", err)
		}
	}()

	if a.outboxWorker != nil {
		go func() {
			slog.Info("Starting outbox worker")
			a.outboxWorker.Start(ctx)
		}()
	}

	<-stop
	slog.Info("Shutdown signal received")
	cancel()

	a.gracefulShutdown()
}

// gracefulShutdown stops the servers first, then the outbox worker, then the connections.
func (a *App) gracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.grpcTransport.Shutdown(ctx); err != nil {
		slog.Error("gRPC server shutdown error", "error", err)
	} else {
		slog.Info("gRPC server stopped gracefully")
	}

	if a.outboxWorker != nil {
		a.outboxWorker.Stop()
		slog.Info("Outbox worker stopped gracefully")
	}

	if a.rabbitMqClient != nil {
		if err := a.rabbitMqClient.Close(); err != nil {
			slog.Error("RabbitMQ connection close error", "error", err)
		} else {
			slog.Info("RabbitMQ connection closed gracefully")
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			slog.Error("Redis connection close error", "error", err)
		}
	}

	if a.postgresClient != nil {
		a.postgresClient.Close()
		slog.Info("Database connection closed gracefully")
	}

	if err := a.otelController.Shutdown(ctx); err != nil {
		slog.Error("Otel trace provider connection close error", "error", err)
	}

	slog.Info("Application shutdown complete")
}

// mustNewAuthenticator reads the bearer token settings from JWT_SECRET and JWT_ISSUER.
func mustNewAuthenticator() *auth.Authenticator {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		panic("JWT_SECRET is not set")
	}

	return auth.NewAuthenticator(secret, os.Getenv("JWT_ISSUER"))
}
