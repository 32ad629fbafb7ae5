package grpc

import (
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// CompletionService is the health service name reported for the sweeper
// scheduler; the empty name covers the whole process
const CompletionService = "solarion.completion"

// HealthServer exposes the standard gRPC health service on a unix socket so
// `solarion health` and supervisors can probe a running `serve`
type HealthServer struct {
	socketPath string
	listener   net.Listener
	server     *grpc.Server
	health     *health.Server
}

// NewHealthServer listens on socketPath, replacing a stale socket file
func NewHealthServer(socketPath string) (*HealthServer, error) {
	if err := os.RemoveAll(socketPath); err != nil {
		return nil, fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create unix socket listener: %w", err)
	}

	// Owner only
	if err := os.Chmod(socketPath, 0600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}

	hs := health.NewServer()
	server := grpc.NewServer()
	healthpb.RegisterHealthServer(server, hs)

	s := &HealthServer{
		socketPath: socketPath,
		listener:   listener,
		server:     server,
		health:     hs,
	}
	s.SetServing(CompletionService, false)
	return s, nil
}

// SetServing flips the reported status of service
func (s *HealthServer) SetServing(service string, serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(service, status)
}

// Serve blocks until Stop is called
func (s *HealthServer) Serve() error {
	if err := s.server.Serve(s.listener); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("gRPC server error: %w", err)
	}
	return nil
}

// Stop marks every service NOT_SERVING, drains connections and removes the socket
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
	_ = os.Remove(s.socketPath)
}
