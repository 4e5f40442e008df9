package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/upb/chat-edge/app"
	"github.com/upb/chat-edge/config"
	"github.com/upb/chat-edge/internal/observability"
	"github.com/upb/chat-edge/routes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.New(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

// initLogger builds the process logger from the observability config
func initLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := observability.NewZapLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("environment", cfg.Environment)), nil
}

// run wires dependencies, binds both listeners and serves until ctx is done
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	deps, err := app.NewDependencies(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer func() { _ = deps.Close(context.Background()) }()

	publicLn, err := net.Listen("tcp", cfg.Server.Address())
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.Address(), err)
	}

	var opsLn net.Listener
	if cfg.Observability.MetricsEnabled {
		opsLn, err = net.Listen("tcp", cfg.MetricsAddress())
		if err != nil {
			_ = publicLn.Close()
			return fmt.Errorf("listen %s: %w", cfg.MetricsAddress(), err)
		}
	}

	return serve(ctx, deps, publicLn, opsLn)
}

// serve runs the public server and, when opsLn is non-nil, the ops server.
// Both are shut down gracefully once ctx is cancelled or either one fails.
func serve(ctx context.Context, deps *app.Dependencies, publicLn, opsLn net.Listener) error {
	cfg := deps.Config
	logger := deps.Logger

	servers := []*http.Server{{
		Handler:      routes.SetupRoutes(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}}
	listeners := []net.Listener{publicLn}

	if opsLn != nil {
		servers = append(servers, &http.Server{
			Handler:           routes.SetupOpsRoutes(deps),
			ReadHeaderTimeout: 5 * time.Second,
		})
		listeners = append(listeners, opsLn)
	}

	g, gctx := errgroup.WithContext(ctx)

	for i := range servers {
		srv, ln := servers[i], listeners[i]
		g.Go(func() error {
			logger.Info("listening", zap.String("addr", ln.Addr().String()))
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", ln.Addr(), err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
