package middleware

import (
	"net/http"
	"strings"

	"github.com/MysticyDev/OproepBot/internal/request"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"go.uber.org/zap"
)

// RelayAuth verifies the bearer token presented by the platform relay. The
// relay is a single trusted caller, so tokens are HS256-signed with a shared
// key rather than a full OIDC exchange. The token's subject identifies the
// relay instance and ends up in the request context for logging.
func RelayAuth(secret string, logger *zap.Logger) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, http.StatusUnauthorized, "Missing Authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			token, err := jwt.Parse([]byte(parts[1]),
				jwt.WithKey(jwa.HS256, key),
				jwt.WithValidate(true),
			)
			if err != nil {
				logger.Warn("relay_token_rejected", zap.Error(err))
				respondError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := request.WithActor(r.Context(), token.Subject())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
