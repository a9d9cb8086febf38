package utilities

import (
	"net"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServer exposes the standard gRPC health service so that service
// discovery agents can probe the process.
type HealthServer struct {
	grpcServer *grpc.Server
	health     *health.Server
	logger     *zerolog.Logger
}

// NewHealthServer creates a gRPC server with only the health service registered.
func NewHealthServer(logger *zerolog.Logger) *HealthServer {
	grpcServer := grpc.NewServer()
	healthServer := RegisterHealthServer(grpcServer)

	return &HealthServer{
		grpcServer: grpcServer,
		health:     healthServer,
		logger:     logger,
	}
}

// RegisterHealthServer registers the gRPC health check service.
func RegisterHealthServer(grpcServer *grpc.Server) *health.Server {
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	return healthServer
}

// Serve blocks serving health checks on lis until Stop is called.
func (s *HealthServer) Serve(lis net.Listener) error {
	s.logger.Info().Str("addr", lis.Addr().String()).Msg("gRPC health server listening")
	return s.grpcServer.Serve(lis)
}

// SetServing flips the overall serving status reported to probes.
func (s *HealthServer) SetServing(serving bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
}

// Stop reports NOT_SERVING and gracefully stops the server.
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
