package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS accepts credentialed requests from any origin; the request origin is
// echoed back. Preflight requests end here.
var CORS = cors.Handler(cors.Options{
	AllowOriginFunc:  func(*http.Request, string) bool { return true },
	AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
	AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization", IdempotencyKeyHeader},
	ExposedHeaders:   []string{idempotencyReplayHeader, "Retry-After"},
	AllowCredentials: true,
	MaxAge:           300,
})
