package api

import (
	"net/http"
	"time"

	"github.com/makosai/backend/internal/logger"
)

const (
	corsAllowOrigin      = "Access-Control-Allow-Origin"
	corsAllowMethods     = "Access-Control-Allow-Methods"
	corsAllowHeaders     = "Access-Control-Allow-Headers"
	corsAllowCredentials = "Access-Control-Allow-Credentials"
	allowedMethods       = "GET, POST, PUT, DELETE, OPTIONS"
	allowedHeaders       = "Content-Type, Authorization"
	allowedCredentials   = "true"
	internalServerError  = "Internal server error"
)

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		logger.Log.Info("request",
			"method", r.Method,
			"uri", r.RequestURI,
			"duration", time.Since(start).String(),
		)
	})
}

func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Log.Error("panic recovered", "error", err, "uri", r.RequestURI)
				http.Error(w, internalServerError, http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func CORSMiddleware(allowedOrigin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(corsAllowOrigin, allowedOrigin)
			w.Header().Set(corsAllowMethods, allowedMethods)
			w.Header().Set(corsAllowHeaders, allowedHeaders)
			w.Header().Set(corsAllowCredentials, allowedCredentials)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
