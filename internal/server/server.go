// Package server runs the HTTP listener, and the gRPC health server when
// GRPC_PORT is set, until the context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nutrieve/nutrieve/config"
	"github.com/nutrieve/nutrieve/pkg/grpc"
	"github.com/nutrieve/nutrieve/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// Options are the listener settings. Zero values come from config.
type Options struct {
	Addr     string
	GRPCPort string
	Probe    grpc.Probe
}

// Run serves handler until ctx is done, then drains in-flight requests.
func Run(ctx context.Context, handler http.Handler, opts Options) error {
	if opts.Addr == "" {
		opts.Addr = ":" + config.AppPort()
	}
	if opts.GRPCPort == "" {
		opts.GRPCPort = config.GRPCPort()
	}

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	var gs *grpc.Server
	if opts.GRPCPort != "" {
		var err error
		if gs, err = grpc.Start(opts.GRPCPort, opts.Probe); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "addr", opts.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		grpc.Stop(gs)
		if ok {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", shutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	grpc.Stop(gs)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
