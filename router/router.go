package router

import (
	"net/http"

	"go-auth-api/handler"
	"go-auth-api/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// NewRouter builds the full handler chain. The edge authentication filter
// wraps the whole mux, so every route not on the public allow-list needs a
// valid Bearer access token before it is even dispatched.
func NewRouter(authHandler *handler.AuthHandler, codec *service.TokenCodec, publicPaths []string) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/auth/login", handler.ErrorHandlingMiddleware(authHandler.Login))
	mux.Handle("/auth/refresh", handler.ErrorHandlingMiddleware(authHandler.Refresh))
	mux.Handle("/auth/logout", handler.ErrorHandlingMiddleware(authHandler.Logout))

	mux.HandleFunc("/health", handler.HealthCheck)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/swagger/", httpSwagger.Handler())

	// Protected route: returns the identity the filter attached.
	mux.Handle("/api/me", handler.ErrorHandlingMiddleware(handler.WhoAmI))

	var h http.Handler = mux
	h = handler.EdgeAuthMiddleware(codec, publicPaths)(h)
	h = handler.RequestIDMiddleware(h)
	return h
}
