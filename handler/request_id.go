// file: handler/request_id.go

package handler

import (
	"net/http"

	"go-auth-api/logger"

	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags every request with an id so log lines across the
// login/refresh path can be correlated. An id supplied by an upstream proxy
// is kept; otherwise a new one is generated.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
			r.Header.Set(RequestIDHeader, requestID)
		}
		w.Header().Set(RequestIDHeader, requestID)

		logger.Log.WithField("request_id", requestID).
			WithField("method", r.Method).
			WithField("path", r.URL.Path).
			Debug("Handling request")

		next.ServeHTTP(w, r)
	})
}
