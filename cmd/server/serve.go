package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"google.golang.org/grpc"

	"github.com/pesio-ai/be-product-catalog/internal/client"
	"github.com/pesio-ai/be-product-catalog/internal/handler"
	"github.com/pesio-ai/be-product-catalog/internal/platform/config"
	"github.com/pesio-ai/be-product-catalog/internal/platform/logger"
	"github.com/pesio-ai/be-product-catalog/internal/platform/middleware"
	"github.com/pesio-ai/be-product-catalog/internal/policy"
	"github.com/pesio-ai/be-product-catalog/internal/service"
)

func serve(parent context.Context, cfg *config.Config, log *logger.Logger) error {
	log.Info().
		Str("service", cfg.Service.Name).
		Str("version", cfg.Service.Version).
		Str("environment", cfg.Service.Environment).
		Str("storage", cfg.Storage.Driver).
		Msg("Starting Product Catalog Service")

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rules, err := policy.ParseConfig(
		cfg.Policy.ApprovalThreshold,
		cfg.Policy.MaxPrice,
		cfg.Policy.UpdateRatio,
		cfg.Policy.EagerApplyOnQueue,
	)
	if err != nil {
		return fmt.Errorf("invalid approval policy: %w", err)
	}

	store, closeStore, err := openStore(ctx, cfg, log, cfg.Storage.Driver != config.DriverPostgres)
	if err != nil {
		return err
	}
	defer closeStore()

	// NATS is optional; without it approval events are not published.
	opts := []service.Option{}
	if cfg.NATS.URL != "" {
		nc, err := client.Connect(cfg.NATS.URL, cfg.Service.Name, log.Logger)
		if err != nil {
			log.Warn().Err(err).Str("url", cfg.NATS.URL).Msg("NATS unavailable, approval events disabled")
		} else {
			defer drain(nc, log)
			publisher := client.NewNotificationPublisher(nc, cfg.NATS.SubjectPrefix, log.Logger)
			opts = append(opts, service.WithPublisher(publisher))
			log.Info().Str("url", cfg.NATS.URL).Msg("NATS connection established")
		}
	}

	catalogService := service.NewCatalogService(store, rules, log.Component("catalog"), opts...)
	approvalService := service.NewApprovalService(store, log.Component("approvals"), opts...)

	// HTTP
	mux := http.NewServeMux()
	handler.NewHTTPHandler(catalogService, approvalService, log).Register(mux)

	var h http.Handler = mux
	h = middleware.Timeout(cfg.Server.RequestTimeout)(h)
	h = middleware.CORS([]string{"*"})(h)
	h = middleware.Recovery(&log.Logger)(h)
	h = middleware.Logger(&log.Logger)(h)
	h = middleware.RequestID(h)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// gRPC
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(
		middleware.UnaryRequestID,
		middleware.UnaryLogger(&log.Logger),
		middleware.UnaryRecovery(&log.Logger),
	))
	handler.NewGRPCHandler(catalogService, approvalService, log.Logger).Register(grpcServer)

	grpcListener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to create gRPC listener: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()
	go func() {
		log.Info().Int("port", cfg.Server.GRPCPort).Msg("Starting gRPC server")
		if err := grpcServer.Serve(grpcListener); err != nil {
			errCh <- fmt.Errorf("gRPC server failed: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		log.Error().Err(runErr).Msg("Server failed")
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	grpcServer.GracefulStop()

	log.Info().Msg("Server stopped")
	return runErr
}

func drain(nc *nats.Conn, log *logger.Logger) {
	if err := nc.Drain(); err != nil {
		log.Warn().Err(err).Msg("NATS drain failed")
	}
}
