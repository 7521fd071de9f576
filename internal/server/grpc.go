package server

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Readiness is implemented by each service's HTTP server.
type Readiness interface {
	Ready(ctx context.Context) (map[string]string, bool)
}

// GRPCServer exposes the standard grpc.health.v1 service and reflection for
// one switchboard service. Health status mirrors the service's readiness
// probe and is reported under both "" and "switchboard.<service>".
type GRPCServer struct {
	srv     *grpc.Server
	health  *health.Server
	name    string
	ready   Readiness
	logger  *slog.Logger
	serving bool
}

// NewGRPCServer creates a gRPC server with standard interceptors and
// registers health and reflection. Status starts NOT_SERVING until the first
// Refresh.
func NewGRPCServer(service string, ready Readiness, logger *slog.Logger) *GRPCServer {
	if logger == nil {
		logger = slog.Default()
	}
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor(logger),
			RequestIDInterceptor,
			LoggingInterceptor(logger),
		),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	g := &GRPCServer{
		srv:    srv,
		health: hs,
		name:   HealthServiceName(service),
		ready:  ready,
		logger: logger,
	}
	g.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return g
}

// HealthServiceName is the grpc.health.v1 service name for a switchboard
// service.
func HealthServiceName(service string) string {
	return "switchboard." + service
}

func (g *GRPCServer) setStatus(st healthpb.HealthCheckResponse_ServingStatus) {
	g.health.SetServingStatus("", st)
	g.health.SetServingStatus(g.name, st)
}

// Refresh runs the readiness probe once and publishes the result. It
// reports whether the service is ready.
func (g *GRPCServer) Refresh(ctx context.Context) bool {
	checks, ok := g.ready.Ready(ctx)
	if ok != g.serving {
		if ok {
			g.logger.Info("grpc health serving", "service", g.name)
		} else {
			g.logger.Warn("grpc health not serving", "service", g.name, "checks", checks)
		}
	}
	g.serving = ok
	if ok {
		g.setStatus(healthpb.HealthCheckResponse_SERVING)
	} else {
		g.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	}
	return ok
}

// Watch refreshes the health status every interval until ctx is done.
func (g *GRPCServer) Watch(ctx context.Context, interval time.Duration) {
	g.Refresh(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Refresh(ctx)
		}
	}
}

// Serve accepts connections on lis until Stop is called.
func (g *GRPCServer) Serve(lis net.Listener) error {
	g.logger.Info("gRPC server listening", "addr", lis.Addr().String())
	return g.srv.Serve(lis)
}

// Stop marks every service NOT_SERVING so watchers drain, then stops
// gracefully.
func (g *GRPCServer) Stop() {
	g.health.Shutdown()
	g.srv.GracefulStop()
	g.logger.Info("gRPC server stopped")
}
