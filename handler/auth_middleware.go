package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go-auth-api/common"
	"go-auth-api/metrics"
	"go-auth-api/service"
)

type contextKey string

const (
	SubjectKey contextKey = "subject"
	RolesKey   contextKey = "roles"
)

// Headers forwarded downstream so services behind the edge can identify the
// caller without re-parsing the token.
const (
	AuthenticatedUserHeader  = "X-Authenticated-User"
	AuthenticatedRolesHeader = "X-Authenticated-Roles"
)

// MatchPublicPath reports whether the path matches a single allow-list
// pattern. A pattern ending in "/**" matches its prefix and everything
// below it; any other pattern must match exactly.
func MatchPublicPath(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	return pattern == path
}

// EdgeAuthMiddleware gates every inbound request. Allow-listed paths pass
// through untouched; everything else needs a valid Bearer access token.
// Verification is pure signature + expiry checking against the shared key;
// this middleware never calls the session store, so edge instances scale
// horizontally with no shared state.
func EdgeAuthMiddleware(codec *service.TokenCodec, publicPaths []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, pattern := range publicPaths {
				if MatchPublicPath(pattern, r.URL.Path) {
					next.ServeHTTP(w, r)
					return
				}
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				metrics.EdgeRejections.WithLabelValues(common.ReasonMissingCredentials).Inc()
				appErr := common.NewAppErrorWithReason(http.StatusUnauthorized,
					"Authorization header is required", common.ReasonMissingCredentials, nil)
				appErr.Send(w)
				return
			}

			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
				metrics.EdgeRejections.WithLabelValues(common.ReasonInvalidAuthScheme).Inc()
				appErr := common.NewAppErrorWithReason(http.StatusUnauthorized,
					"Invalid authorization header format", common.ReasonInvalidAuthScheme, nil)
				appErr.Send(w)
				return
			}

			claims, err := codec.Parse(headerParts[1])
			if err != nil {
				// Expired gets its own reason so clients know to try a
				// refresh instead of forcing a re-login.
				reason := common.ReasonTokenInvalid
				message := "Invalid access token"
				if errors.Is(err, service.ErrTokenExpired) {
					reason = common.ReasonTokenExpired
					message = "Access token has expired"
				}
				metrics.EdgeRejections.WithLabelValues(reason).Inc()
				appErr := common.NewAppErrorWithReason(http.StatusUnauthorized, message, reason, err)
				appErr.Send(w)
				return
			}

			ctx := context.WithValue(r.Context(), SubjectKey, claims.Subject)
			ctx = context.WithValue(ctx, RolesKey, claims.Roles)

			r = r.WithContext(ctx)
			r.Header.Set(AuthenticatedUserHeader, claims.Subject)
			r.Header.Set(AuthenticatedRolesHeader, strings.Join(claims.Roles, ","))

			next.ServeHTTP(w, r)
		})
	}
}
