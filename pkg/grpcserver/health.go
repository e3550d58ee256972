package grpcserver

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"gorm.io/gorm"

	"github.com/openbrewed/barback/pkg/utils"
)

// HealthServer exposes the standard gRPC health protocol so probes and
// service meshes can watch the process without speaking HTTP. The
// reported status tracks database connectivity.
type HealthServer struct {
	server *grpc.Server
	health *health.Server
	db     *gorm.DB
}

func NewHealthServer(database *gorm.DB) *HealthServer {
	s := grpc.NewServer()
	h := health.NewServer()
	healthpb.RegisterHealthServer(s, h)
	reflection.Register(s)
	return &HealthServer{server: s, health: h, db: database}
}

// Start listens on addr and serves until ctx is cancelled. The serving
// status is refreshed on a fixed interval.
func (s *HealthServer) Start(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	go s.watch(ctx)
	go func() {
		<-ctx.Done()
		s.server.GracefulStop()
	}()

	utils.GetLogger().Info("[GRPC]: health listener on " + addr)
	return s.server.Serve(lis)
}

func (s *HealthServer) watch(ctx context.Context) {
	s.health.SetServingStatus("", s.currentStatus(ctx))

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.health.Shutdown()
			return
		case <-ticker.C:
			s.health.SetServingStatus("", s.currentStatus(ctx))
		}
	}
}

func (s *HealthServer) currentStatus(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	sqlDB, err := s.db.DB()
	if err != nil {
		return healthpb.HealthCheckResponse_NOT_SERVING
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return healthpb.HealthCheckResponse_NOT_SERVING
	}
	return healthpb.HealthCheckResponse_SERVING
}
