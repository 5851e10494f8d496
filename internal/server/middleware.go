package server

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"trading-gateway/internal/monitoring"
)

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func observeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		route := routeLabel(r.URL.Path)
		monitoring.RecordRequest(route, r.Method, strconv.Itoa(rec.status), elapsed)
		log.Printf(
			"level=INFO event=http_request method=%s route=%s status=%d elapsed_ms=%d",
			r.Method, route, rec.status, elapsed.Milliseconds(),
		)
	})
}

// routeLabel collapses path parameters so metric cardinality stays bounded.
func routeLabel(path string) string {
	switch {
	case path == "/":
		return "/"
	case strings.HasPrefix(path, "/api/market/"):
		return "/api/market/{symbol}"
	case strings.HasPrefix(path, "/api/orders/"):
		rest := strings.TrimPrefix(path, "/api/orders/")
		if strings.Contains(strings.Trim(rest, "/"), "/") {
			return "/api/orders/{symbol}/{orderId}"
		}
		return "/api/orders/{symbol}"
	default:
		return path
	}
}
