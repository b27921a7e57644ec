package health

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Service is the name reported for the game runner.
const Service = "ai_chess.Game"

type Readiness interface {
	Ready() bool
}

// HealthServer serves grpc.health.v1 and reports SERVING only while both
// players have a working provider binding.
type HealthServer struct {
	log       *zap.SugaredLogger
	readiness Readiness
	server    *grpc.Server
	health    *health.Server
}

func NewHealthServer(log *zap.SugaredLogger, readiness Readiness) *HealthServer {
	h := &HealthServer{
		log:       log,
		readiness: readiness,
		server:    grpc.NewServer(),
		health:    health.NewServer(),
	}
	healthpb.RegisterHealthServer(h.server, h.health)
	h.Refresh()
	return h
}

func (h *HealthServer) Refresh() {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if h.readiness.Ready() {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(Service, status)
}

// Watch refreshes the status every interval until ctx is done.
func (h *HealthServer) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Refresh()
		}
	}
}

func (h *HealthServer) Serve(lis net.Listener) error {
	h.log.Infof("gRPC health server is running on %s", lis.Addr().String())
	return h.server.Serve(lis)
}

func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.server.GracefulStop()
}
