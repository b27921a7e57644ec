package health

import (
	"context"
	"net"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

type readiness struct {
	ready atomic.Bool
}

func (r *readiness) Ready() bool {
	return r.ready.Load()
}

func TestHealthServer(t *testing.T) {
	req := require.New(t)
	ready := &readiness{}
	server := NewHealthServer(zap.NewNop().Sugar(), ready)

	lis := bufconn.Listen(1024 * 1024)
	go func() { _ = server.Serve(lis) }()
	defer server.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	req.NoError(err)
	defer conn.Close()

	client := healthpb.NewHealthClient(conn)
	ctx := context.Background()

	// Given a player without an API key
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: Service})
	req.NoError(err)
	req.Equal(healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())

	// When both players become configured
	ready.ready.Store(true)
	server.Refresh()

	// Then the service is serving
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{})
	req.NoError(err)
	req.Equal(healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
