// HTTP API - размещение, начисления, заявки администратора
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/glkeru/skn/internal/api"
	"github.com/glkeru/skn/internal/app"
	observability "github.com/glkeru/skn/observability/otel"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	// log
	logger, err := app.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// config
	port := os.Getenv("SKN_PORT")
	if port == "" {
		panic("env SKN_PORT is not set")
	}

	ctx := context.Background()

	// tracing
	shutdown, err := observability.InitTracer(ctx, "skn", logger)
	if err != nil {
		logger.Warn("tracing is disabled", zap.Error(err))
	}
	defer shutdown()

	// stores + services
	a, err := app.New(ctx, logger)
	if err != nil {
		logger.Fatal("init", zap.Error(err))
	}
	defer a.Close()

	// api handlers
	r := api.NewHandler(a.Placement, a.Ledger, a.Engine, a.Admin, logger)
	srv := &http.Server{
		Handler:      otelhttp.NewHandler(r, "skn"),
		Addr:         ":" + port,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server", zap.Error(err))
		}
	}()

	// shutdown
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	<-interrupt
	timeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = srv.Shutdown(timeout)
	if err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
