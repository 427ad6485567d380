// Package grpc runs the internal gRPC endpoint. It serves the standard
// grpc.health.v1.Health service so orchestrators can probe the process,
// with recovery, logging and metrics interceptors on every call.
//
//	srv, err := grpc.Start(config.GRPCPort(), dbCheck)
//	...
//	grpc.Stop(srv)
package grpc

import (
	"context"
	"fmt"
	"net"
	"runtime/debug"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/nutrieve/nutrieve/pkg/logger"
	"github.com/nutrieve/nutrieve/pkg/metrics"
)

// ServiceName is the health-check service name reported alongside "".
const ServiceName = "nutrieve.api"

// Probe reports whether a dependency is usable. A nil error means SERVING.
type Probe func(ctx context.Context) error

// Server is a running gRPC server.
type Server struct {
	srv    *grpc.Server
	health *health.Server
	lis    net.Listener
	stop   chan struct{}
}

// ─── Interceptors ─────────────────────────────────────────────────────────────

func recoveryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("grpc: panic recovered",
				"method", info.FullMethod,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			err = status.Errorf(codes.Internal, "internal server error")
		}
	}()
	return handler(ctx, req)
}

func observeInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	metrics.GRPCRequests.WithLabelValues(info.FullMethod, code.String()).Inc()
	logger.Debug("grpc: request",
		"method", info.FullMethod,
		"duration_ms", time.Since(start).Milliseconds(),
		"code", code.String(),
	)
	return resp, err
}

// ─── Lifecycle ────────────────────────────────────────────────────────────────

// New builds a server listening on lis without starting it.
func New(lis net.Listener) *Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(recoveryInterceptor, observeInterceptor),
		grpc.MaxRecvMsgSize(1<<20),
	)

	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	return &Server{srv: srv, health: hs, lis: lis, stop: make(chan struct{})}
}

// Start listens on port and serves in the background. When probe is set it
// is polled every 15s and flips the health status between SERVING and
// NOT_SERVING.
func Start(port string, probe Probe) (*Server, error) {
	addr := ":" + port
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("grpc: listen on %s: %w", addr, err)
	}

	s := New(lis)
	s.SetServing(true)
	if probe != nil {
		go s.watch(probe, 15*time.Second)
	}

	logger.Info("gRPC health server starting", "addr", addr)
	go func() {
		if err := s.srv.Serve(lis); err != nil {
			logger.Error("grpc: serve", "error", err)
		}
	}()
	return s, nil
}

// Serve blocks serving on the listener passed to New.
func (s *Server) Serve() error { return s.srv.Serve(s.lis) }

// SetServing updates both the overall and the named service status.
func (s *Server) SetServing(ok bool) {
	st := grpc_health_v1.HealthCheckResponse_SERVING
	if !ok {
		st = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

func (s *Server) watch(probe Probe, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := probe(ctx)
			cancel()
			if err != nil {
				logger.Warn("grpc: health probe failed", "error", err)
			}
			s.SetServing(err == nil)
		}
	}
}

// Stop marks the server NOT_SERVING and drains in-flight calls.
func Stop(s *Server) {
	if s == nil {
		return
	}
	close(s.stop)
	s.health.Shutdown()
	logger.Info("gRPC server shutting down")
	s.srv.GracefulStop()
}
