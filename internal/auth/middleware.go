package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/lms-backend/internal"
	"github.com/frahmantamala/lms-backend/internal/transport"
	"github.com/frahmantamala/lms-backend/pkg/logger"
)

// Middleware attaches the principal named by a valid bearer token. A missing or
// invalid token leaves the request unauthenticated; gated routes then answer 401.
func Middleware(verifier TokenVerifier, lg *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := transport.ExtractBearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.VerifyAccessToken(token)
			if err != nil {
				logger.FromOr(r.Context(), lg).Debug("bearer token rejected", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			principalID, err := claims.PrincipalID()
			if err != nil {
				logger.FromOr(r.Context(), lg).Debug("bearer token has no usable subject", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := internal.ContextWithPrincipal(r.Context(), principalID)
			ctx = logger.With(ctx, "user_id", principalID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
