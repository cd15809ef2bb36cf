// Package server boots the service dependencies and runs the HTTP and gRPC
// listeners until the context ends.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/shashiranjanraj/rocketcart/app/services"
	"github.com/shashiranjanraj/rocketcart/config"
	"github.com/shashiranjanraj/rocketcart/internal/kernel"
	"github.com/shashiranjanraj/rocketcart/pkg/cache"
	"github.com/shashiranjanraj/rocketcart/pkg/database"
	"github.com/shashiranjanraj/rocketcart/pkg/event"
	grpcserver "github.com/shashiranjanraj/rocketcart/pkg/grpc"
	"github.com/shashiranjanraj/rocketcart/pkg/logger"
	"github.com/shashiranjanraj/rocketcart/pkg/storage"
	"github.com/shashiranjanraj/rocketcart/pkg/ws"
)

const shutdownTimeout = 10 * time.Second

// Boot loads configuration and connects the database, cache, log sink and
// storage. The returned func releases what Boot opened.
func Boot(ctx context.Context) (func(), error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if uri := config.LogMongoURI(); uri != "" {
		if err := logger.EnableMongo(uri, config.LogMongoDB()); err != nil {
			logger.Warn("logger: mongo sink disabled", "error", err)
		}
	}

	if err := database.Connect(); err != nil {
		logger.Close()
		return nil, err
	}

	if err := cache.Connect(ctx); err != nil {
		logger.Warn("cache: running without redis", "error", err)
	}
	storage.Connect(ctx)

	return func() {
		_ = cache.Close()
		if sqlDB, err := database.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
		logger.Close()
	}, nil
}

// Run serves until ctx is cancelled or a listener fails. The catalog must
// have been imported: without exactly one cart it refuses to start.
func Run(ctx context.Context) error {
	release, err := Boot(ctx)
	if err != nil {
		return err
	}
	defer release()

	db := database.DB
	events := event.Default()
	catalog := services.NewCatalogService(db, events)
	cart, err := services.NewCartService(ctx, db, events)
	if errors.Is(err, services.ErrInvariant) {
		return fmt.Errorf("%w (run `rocketcart import <file>` first)", err)
	}
	if err != nil {
		return err
	}

	hub := ws.NewHub()
	go hub.Run(ctx)
	kernel.BridgeEvents(events, hub)

	k, err := kernel.NewHTTPKernel(kernel.Deps{DB: db, Catalog: catalog, Cart: cart, Hub: hub})
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           k.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	lis, err := net.Listen("tcp", ":"+config.GRPCPort())
	if err != nil {
		return fmt.Errorf("grpc: listen: %w", err)
	}
	grpcSrv := grpcserver.New(func(ctx context.Context) error {
		return database.Ping(ctx, db)
	})

	errCh := make(chan error, 2)
	go func() {
		logger.Info("http: listening", "addr", httpSrv.Addr, "cart_id", cart.CartID())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http: %w", err)
		}
	}()
	go func() {
		logger.Info("grpc: listening", "addr", lis.Addr().String())
		if err := grpcSrv.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("server: shutting down")
	case err = <-errCh:
		logger.Error("server: listener failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if serr := httpSrv.Shutdown(shutdownCtx); serr != nil {
		logger.Warn("http: shutdown", "error", serr)
	}
	grpcserver.Stop(grpcSrv, shutdownTimeout)

	return err
}
