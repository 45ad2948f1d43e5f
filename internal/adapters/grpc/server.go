package grpc

import (
	"context"

	"github.com/viralforge/view-reward-engine/internal/application"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// healthProbeVideoID is never written; reading its counter answers whether
// the backing store responds.
const healthProbeVideoID = "health_probe"

// RewardInternalServer exposes the engine's health over the standard gRPC
// health protocol. Readiness is a live counter read, not a static answer.
type RewardInternalServer struct {
	grpc_health_v1.UnimplementedHealthServer
	service *application.Service
}

func NewRewardInternalServer(service *application.Service) *RewardInternalServer {
	return &RewardInternalServer{service: service}
}

func Register(server grpc.ServiceRegistrar, svc *RewardInternalServer) {
	grpc_health_v1.RegisterHealthServer(server, svc)
}

func (s *RewardInternalServer) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	_ = req
	return &grpc_health_v1.HealthCheckResponse{Status: s.servingStatus(ctx)}, nil
}

func (s *RewardInternalServer) Watch(req *grpc_health_v1.HealthCheckRequest, stream grpc_health_v1.Health_WatchServer) error {
	_ = req
	return stream.Send(&grpc_health_v1.HealthCheckResponse{Status: s.servingStatus(stream.Context())})
}

func (s *RewardInternalServer) servingStatus(ctx context.Context) grpc_health_v1.HealthCheckResponse_ServingStatus {
	if _, err := s.service.GetViewCount(ctx, healthProbeVideoID); err != nil {
		return grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	return grpc_health_v1.HealthCheckResponse_SERVING
}
