package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/limitup/internal/api/handlers"
	"github.com/wonny/limitup/internal/api/ws"
	"github.com/wonny/limitup/pkg/logger"
)

// NewRouter wires all HTTP routes.
// ⭐ SSOT: routing is configured only in this function
func NewRouter(snapshots *handlers.SnapshotHandler, markets *handlers.MarketHandler, hub *ws.Hub, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/markets", markets.List).Methods("GET")
	api.HandleFunc("/markets/{market}/snapshot", snapshots.GetSnapshot).Methods("GET")
	api.HandleFunc("/markets/{market}/board", snapshots.GetBoard).Methods("GET")
	api.HandleFunc("/markets/{market}/sectors", snapshots.GetSectors).Methods("GET")
	api.HandleFunc("/markets/{market}/watchlist", snapshots.GetWatchlist).Methods("GET")
	api.HandleFunc("/markets/{market}/peers", snapshots.GetPeers).Methods("GET")
	api.HandleFunc("/markets/{market}/classify", snapshots.Classify).Methods("POST")

	if hub != nil {
		r.HandleFunc("/ws", hub.ServeHTTP)
	}

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status.
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "limitup-api",
	})
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from handler panics.
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
