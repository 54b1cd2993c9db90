package httpx

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/lobogoatfromroblox/StealaLoboGOAT/internal/app"
	"github.com/lobogoatfromroblox/StealaLoboGOAT/internal/ws"
	"github.com/lobogoatfromroblox/StealaLoboGOAT/pkg/metrics"
	"github.com/lobogoatfromroblox/StealaLoboGOAT/pkg/ratelimit"
)

// NewRouter wires up all HTTP routes and middleware
func NewRouter(cfg app.Config, logger *slog.Logger, gw *ws.Gateway) http.Handler {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	// Rate limit HTTP requests, including websocket upgrades, per IP
	r.Use(ratelimit.New(30, time.Minute).Middleware)

	// CORS
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllow,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler)

	// Health / readiness / metrics
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) })
	r.Handle("/metrics", metrics.Handler())

	// WebSocket endpoint
	r.Get("/ws", gw.ServeWS)

	return r
}
