package main

import (
	"context"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"

	httpadapter "github.com/jlozanoz/normateca/internal/adapters/http"
	"github.com/jlozanoz/normateca/internal/bootstrap"
	"github.com/jlozanoz/normateca/internal/config"
	"github.com/jlozanoz/normateca/internal/observability/logging"
	"github.com/jlozanoz/normateca/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("api", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	serverMetrics := metrics.NewHTTPServerMetrics("api")
	router := httpadapter.NewRouter(
		app.RetrieveUC,
		app.AnswerUC,
		app.InventoryUC,
		app.AdmitUC,
		app.TaskUC,
		httpadapter.RouterConfig{
			Service:         "api",
			APIKey:          cfg.APIKey,
			DefaultTopK:     cfg.RetrievalTopK,
			RetrievalConfig: app.RetrievalConfig(),
			RateLimitRPS:    cfg.APIRateLimitRPS,
			RateLimitBurst:  cfg.APIRateLimitBurst,
			MaxInFlight:     cfg.APIMaxInFlight,
			MaxInFlightWait: time.Duration(cfg.APIMaxInFlightWaitMS) * time.Millisecond,
		},
		serverMetrics,
	)
	handler, err := router.Handler()
	if err != nil {
		log.Fatalf("build http handler: %v", err)
	}

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		log.Fatalf("api listen error: %v", err)
	}
	if cfg.APIMaxConnections > 0 {
		listener = netutil.LimitListener(listener, cfg.APIMaxConnections)
	}

	// Indexed notifications invalidate the cached inventory so the api
	// reflects freshly indexed sources without waiting out the TTL.
	go func() {
		err := app.Queue.SubscribeSourceIndexed(ctx, func(_ context.Context, source string) error {
			slog.Info("inventory_invalidated", "source", source)
			app.InventoryUC.Invalidate()
			return nil
		})
		if err != nil {
			slog.Error("indexed subscription error", "error", err)
		}
	}()

	go func() {
		slog.Info("api listening", "port", cfg.APIPort)
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api shutdown error", "error", err)
	}
}
