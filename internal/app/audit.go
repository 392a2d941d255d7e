package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yashraj9595/zyntherraa/order/internal/dal/postgres"
	"github.com/yashraj9595/zyntherraa/order/internal/dal/rabbitmq"
	auditrepo "github.com/yashraj9595/zyntherraa/order/internal/dal/repositories/audit/postgres"
	inboxrepo "github.com/yashraj9595/zyntherraa/order/internal/dal/repositories/inbox/postgres"
	"github.com/yashraj9595/zyntherraa/order/internal/otel"
	"github.com/yashraj9595/zyntherraa/order/internal/service/services/auditsvc"
	"github.com/yashraj9595/zyntherraa/order/internal/transport/consumer"
	httptransport "github.com/yashraj9595/zyntherraa/order/internal/transport/http"
	inboxworker "github.com/yashraj9595/zyntherraa/order/internal/worker/inbox"
)

// AuditApp represents the audit consumer application.
type AuditApp struct {
	auditSvc       *auditsvc.AuditService
	consumerTransp *consumer.Consumer
	httpTransport  *httptransport.AuditHTTPTransport
	inboxWorker    *inboxworker.Worker
	rabbitMqClient *rabbitmq.Client
	postgresClient *postgres.Client
	otelController *otel.OtelController
}

// MustNewAuditApp creates a new audit consumer application.
func MustNewAuditApp() *AuditApp {
	otelController := otel.MustInitOtel("audit-consumer")
	rabbitMqClient := rabbitmq.MustNewClient()
	postgresClient := postgres.MustNewClient("AUDIT")

	auditRepository := auditrepo.NewAuditRepository(postgresClient.Pool())
	inboxRepository := inboxrepo.NewInboxRepository(postgresClient.Pool())

	auditSvc := auditsvc.MustNewAuditService(
		auditsvc.WithAuditRepository(auditRepository),
	)

	consumerTransp := consumer.NewConsumer(rabbitMqClient, auditSvc, inboxRepository)
	inboxWorker := inboxworker.NewWorker(inboxRepository, auditSvc)

	httpTransport := httptransport.NewAuditHTTPTransport(auditSvc, mustNewAuthenticator())
	httpTransport.RegisterRoutes()

	return &AuditApp{
		auditSvc:       auditSvc,
		consumerTransp: consumerTransp,
		httpTransport:  httpTransport,
		inboxWorker:    inboxWorker,
		rabbitMqClient: rabbitMqClient,
		postgresClient: postgresClient,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *AuditApp) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		slog.Info("Starting consumer")
		if err := a.consumerTransp.Run(ctx); err != nil {
			slog.Error("Consumer error", "error", err)
		}
	}()

	go func() {
		slog.Info("Starting inbox worker")
		a.inboxWorker.Start(ctx)
	}()

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.httpTransport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")
	cancel()

	a.gracefulShutdown()
}

// gracefulShutdown performs graceful shutdown of all application components.
// It shuts down components sequentially: HTTP server, inbox worker, consumer, RabbitMQ, PostgreSQL, and OpenTelemetry.
func (a *AuditApp) gracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.httpTransport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	a.inboxWorker.Stop()
	slog.Info("Inbox worker stopped gracefully")

	if err := a.consumerTransp.Shutdown(); err != nil {
		slog.Error("Consumer shutdown error", "error", err)
	} else {
		slog.Info("Consumer stopped gracefully")
	}

	if err := a.rabbitMqClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()

	if err := a.otelController.Shutdown(ctx); err != nil {
		slog.Error("Otel trace provider connection close error", "error", err)
	} else {
		slog.Info("Otel trace provider connection closed gracefully")
	}

	select {
	case <-ctx.Done():
		slog.Warn("Shutdown timeout exceeded")
	default:
		slog.Info("Application shutdown complete")
	}
}
