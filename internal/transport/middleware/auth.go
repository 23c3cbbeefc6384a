package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	internal "github.com/frahmantamala/payment-gateway/internal"
)

// PartnerClaims are the claims issued to partner API consumers. PartnerID
// scopes every payment operation to the calling partner.
type PartnerClaims struct {
	PartnerID int64 `json:"partner_id"`
	jwt.RegisteredClaims
}

// BearerAuth validates the Authorization bearer token (HS256, shared secret)
// and puts the partner id into the request context.
func BearerAuth(secret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeAuthError(w, "missing bearer token")
				return
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			claims := &PartnerClaims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				logger.Warn("rejected bearer token", "error", err)
				writeAuthError(w, "invalid token")
				return
			}

			if claims.PartnerID == 0 {
				logger.Warn("bearer token missing partner claim", "subject", claims.Subject)
				writeAuthError(w, "token has no partner scope")
				return
			}

			ctx := internal.ContextWithPartnerID(r.Context(), claims.PartnerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"error_code":"UNAUTHORIZED","message":%q}`, message)
}
