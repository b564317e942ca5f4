package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/sections/internal/cli"
	"github.com/aretw0/sections/internal/config"
	httpAdapter "github.com/aretw0/sections/pkg/adapters/http"
	"github.com/aretw0/sections/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/sections/pkg/adapters/redis"
	"github.com/aretw0/sections/pkg/observability"
	"github.com/aretw0/sections/pkg/persistence/middleware"
	"github.com/aretw0/sections/pkg/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the sections engine as a JSON API over HTTP: /normalize, /templates,
/documents (memory or Redis store), /events (SSE) and /metrics (Prometheus).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		storeKind, _ := cmd.Flags().GetString("store")
		redisAddr, _ := cmd.Flags().GetString("redis")

		metrics := observability.NewMetrics()
		engine, cfg, logger, err := cli.CreateEngine(cmd.Context(), engineOptions(cmd), metrics.Hooks())
		if err != nil {
			return err
		}
		if cfg == nil {
			cfg = config.Default()
		}
		if !cmd.Flags().Changed("port") && cfg.Server.Port != 0 {
			port = cfg.Server.Port
		}
		if redisAddr != "" {
			if cfg.Server.Redis == nil {
				cfg.Server.Redis = &config.Redis{}
			}
			cfg.Server.Redis.Addr = redisAddr
			storeKind = "redis"
		} else if !cmd.Flags().Changed("store") && cfg.Server.Redis != nil {
			storeKind = "redis"
		}

		opts := []httpAdapter.Option{
			httpAdapter.WithMetrics(metrics),
			httpAdapter.WithLogger(logger),
		}
		if engine.Watchable() {
			opts = append(opts, httpAdapter.WithWatcher(engine))
		}

		store, locker, closeStore, err := buildStore(storeKind, cfg.Server, logger)
		if err != nil {
			return err
		}
		defer closeStore()
		if store != nil {
			opts = append(opts, httpAdapter.WithStore(store), httpAdapter.WithLocker(locker))
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serveHTTP(ctx, port, httpAdapter.NewHandler(engine, opts...), logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("store", "memory", "Document store: 'memory', 'redis' or 'none'")
	serveCmd.Flags().String("redis", "", "Redis address (implies --store redis)")
}

// buildStore creates the document store with its middleware chain.
func buildStore(kind string, cfg config.Server, logger *slog.Logger) (ports.DocumentStore, ports.DistributedLocker, func(), error) {
	var (
		base   ports.DocumentStore
		locker ports.DistributedLocker
		closer = func() {}
	)

	switch kind {
	case "none":
		return nil, nil, closer, nil
	case "memory":
		base, locker = memory.NewStore(), memory.NewLocker()
	case "redis":
		if cfg.Redis == nil || cfg.Redis.Addr == "" {
			return nil, nil, nil, errors.New("redis store needs an address")
		}
		var storeOpts []redisAdapter.Option
		if cfg.Redis.TTL > 0 {
			storeOpts = append(storeOpts, redisAdapter.WithTTL(cfg.Redis.TTL))
		}
		if cfg.Redis.Prefix != "" {
			storeOpts = append(storeOpts, redisAdapter.WithPrefix(cfg.Redis.Prefix))
		}
		store := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, storeOpts...)
		base, locker = store, redisAdapter.NewLocker(store.Client(), cfg.Redis.Prefix)
		closer = func() {
			if err := store.Close(); err != nil {
				logger.Warn("Redis close failed", "err", err)
			}
		}
	default:
		return nil, nil, nil, fmt.Errorf("unknown store: %s. Supported: memory, redis, none", kind)
	}

	mws := []middleware.Middleware{middleware.NewSanitizeMiddleware()}
	if len(cfg.PIIPatterns) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(cfg.PIIPatterns))
	}
	active, fallback, err := cfg.Keys()
	if err != nil {
		closer()
		return nil, nil, nil, err
	}
	if active != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		}))
	}
	logger.Info("Document store ready", "store", kind, "encrypted", active != nil)
	return middleware.Chain(base, mws...), locker, closer, nil
}

func serveHTTP(ctx context.Context, port int, handler http.Handler, logger *slog.Logger) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		logger.Info("Starting sections server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown did not complete: %w", err)
		}
		logger.Info("Sections server stopped gracefully")
		return nil
	})

	return eg.Wait()
}
