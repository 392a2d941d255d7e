package grpctransport

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"
)

// ServiceName is the name reported by the health service.
const ServiceName = "zyntherraa.order.OrderService"

// probe reports whether a dependency of the service is usable.
type probe func(ctx context.Context) error

// GRPCTransport serves the standard gRPC health service.
type GRPCTransport struct {
	server     *grpc.Server
	listener   net.Listener
	health     *health.Server
	probe      probe
	probeEvery time.Duration
	stopProbe  chan struct{}
}

// NewGRPCTransport creates a new GRPCTransport. probe may be nil.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func NewGRPCTransport(p probe) *GRPCTransport {
	listener, err := net.Listen("tcp", ":"+viper.GetString("server.grpc.port"))
	if err != nil {
		panic(err)
	}

	probeEvery := time.Duration(viper.GetInt("server.grpc.health_probe_seconds")) * time.Second
	if probeEvery == 0 {
		probeEvery = 15 * time.Second
	}

	return &GRPCTransport{
		server:     newGRPCServer(),
		listener:   listener,
		health:     health.NewServer(),
		probe:      p,
		probeEvery: probeEvery,
		stopProbe:  make(chan struct{}),
	}
}

// Run starts the gRPC server.
func (g *GRPCTransport) Run() error {
	g.RegisterServices()
	g.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	if g.probe != nil {
		go g.watch()
	}
	slog.Info("Starting gRPC server", "address", g.listener.Addr().String())

	return g.server.Serve(g.listener)
}

// Shutdown gracefully shuts down the gRPC server.
func (g *GRPCTransport) Shutdown(ctx context.Context) error {
	close(g.stopProbe)
	g.health.Shutdown()

	done := make(chan struct{})
	go func() {
		g.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		g.server.Stop()

		return ctx.Err()
	}
}

// RegisterServices registers the gRPC services.
func (g *GRPCTransport) RegisterServices() {
	healthpb.RegisterHealthServer(g.server, g.health)
}

// watch flips the health status whenever the probe result changes.
func (g *GRPCTransport) watch() {
	ticker := time.NewTicker(g.probeEvery)
	defer ticker.Stop()

	serving := true
	for {
		select {
		case <-g.stopProbe:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), g.probeEvery/2)
			err := g.probe(ctx)
			cancel()

			if ok := err == nil; ok != serving {
				serving = ok
				st := healthpb.HealthCheckResponse_SERVING
				if !ok {
					st = healthpb.HealthCheckResponse_NOT_SERVING
					slog.Warn("Health probe failed", "error", err)
				}
				g.health.SetServingStatus(ServiceName, st)
			}
		}
	}
}

func loggingInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	slog.DebugContext(ctx, "gRPC call",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)

	return resp, err
}

// newGRPCServer creates a new gRPC server with default settings.
func newGRPCServer() *grpc.Server {
	keepaliveParams := keepalive.ServerParameters{
		MaxConnectionIdle: time.Duration(
			viper.GetInt("server.grpc.keepalive.max_connection_idle"),
		) * time.Minute,
		MaxConnectionAge: time.Duration(
			viper.GetInt("server.grpc.keepalive.max_connection_age"),
		) * time.Minute,
		MaxConnectionAgeGrace: time.Duration(
			viper.GetInt("server.grpc.keepalive.max_connection_age_grace"),
		) * time.Second,
		Time: time.Duration(
			viper.GetInt("server.grpc.keepalive.time"),
		) * time.Second,
		Timeout: time.Duration(
			viper.GetInt("server.grpc.keepalive.timeout"),
		) * time.Second,
	}

	keepalivePolicy := keepalive.EnforcementPolicy{
		MinTime: time.Duration(
			viper.GetInt("server.grpc.keepalive.min_time"),
		) * time.Second,
		PermitWithoutStream: viper.GetBool("server.grpc.keepalive.permit_without_stream"),
	}

	opts := []grpc.ServerOption{
		grpc.KeepaliveParams(keepaliveParams),
		grpc.KeepaliveEnforcementPolicy(keepalivePolicy),
		grpc.ChainUnaryInterceptor(loggingInterceptor),
	}

	return grpc.NewServer(opts...)
}
