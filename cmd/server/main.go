package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	app "github.com/lobogoatfromroblox/StealaLoboGOAT/internal/app"
	httpx "github.com/lobogoatfromroblox/StealaLoboGOAT/internal/http"
	hubpkg "github.com/lobogoatfromroblox/StealaLoboGOAT/internal/hub"
	ws "github.com/lobogoatfromroblox/StealaLoboGOAT/internal/ws"
)

func main() {
	// Load local .env (dev only)
	_ = godotenv.Load()

	cfg := app.LoadConfig()
	logger := app.NewLogger(cfg.Env)

	// Cancel on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Relay hub: registry, router, fan-out, scheduler
	hub := hubpkg.NewHub(logger, cfg)

	// Periodic world reseed for every live room
	go hub.RunReseed(ctx)

	// Websocket gateway + HTTP router
	gw := ws.NewGateway(logger, hub, cfg)
	router := httpx.NewRouter(cfg, logger, gw)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server; failing to bind the port is the one fatal fault
	go func() {
		logger.Info("server.listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server.crash", "err", err)
			cancel()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	logger.Info("server.shutdown.start")

	// shutdown
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)

	logger.Info("server.shutdown.complete")
	_ = os.Stdout.Sync()
}
