package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"users-backend/application/ports"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const claimsKey contextKey = "claims"

// Authenticate resolves a bearer token into a claim set and attaches it to
// the request context. Locally signed HS256 tokens are parsed with the
// configured secret; anything else is tried as a Cognito access token. A
// missing or unresolvable token is tolerated: the request proceeds with no
// claims and the caller is treated as anonymous, mirroring how the gateway
// authorizer path behaves when no claims are attached.
func Authenticate(jwtSecret string, validator ports.AccessTokenValidator, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims := parseLocalToken(token, jwtSecret)
			if claims == nil && validator != nil {
				cognitoClaims, err := validator.ValidateAccessToken(r.Context(), token)
				if err != nil {
					logger.Warn("Failed to resolve bearer token, proceeding as anonymous",
						zap.Error(err),
					)
				} else {
					claims = cognitoClaims
				}
			}

			if claims != nil {
				r = r.WithContext(context.WithValue(r.Context(), claimsKey, claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext returns the claim set attached by Authenticate, or nil.
func ClaimsFromContext(ctx context.Context) map[string]string {
	claims, _ := ctx.Value(claimsKey).(map[string]string)
	return claims
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		header = r.Header.Get("authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func parseLocalToken(token, secret string) map[string]string {
	if secret == "" {
		return nil
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return nil
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}

	claims := make(map[string]string, len(mapClaims))
	for key, value := range mapClaims {
		switch v := value.(type) {
		case string:
			claims[key] = v
		case bool:
			claims[key] = strconv.FormatBool(v)
		case float64:
			claims[key] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return claims
}
