package server

import (
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/fekuna/omnipos-warehouse/internal/pkg/logger"
)

// ServiceName is the name reported by the gRPC health service.
const ServiceName = "omnipos.warehouse"

// NewGRPCServer builds a server exposing the standard health service and reflection.
func NewGRPCServer(log logger.ZapLogger) (*grpc.Server, *grpchealth.Server) {
	srv := grpc.NewServer(grpc.UnaryInterceptor(unaryLogger(log)))

	hs := grpchealth.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	reflection.Register(srv)
	return srv, hs
}
