package main

import (
	"context"
	"fmt"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/md-rashed-zaman/apptavailability/libs/config"
	"github.com/md-rashed-zaman/apptavailability/libs/grpcx"
)

// runHealthcheck probes the local gRPC health service, for container HEALTHCHECK directives
// where no HTTP client is installed.
func runHealthcheck() error {
	port, err := config.Port("GRPC_PORT", "9093")
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	conn, err := grpcx.Dial(ctx, "127.0.0.1:"+port, grpcx.DialOptions{Timeout: 2 * time.Second, WaitReady: true})
	if err != nil {
		return err
	}
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return err
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("availability service is %s", resp.GetStatus())
	}
	return nil
}
