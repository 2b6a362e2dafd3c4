package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

type ctxKey string

const claimsKey ctxKey = "claims"

const (
	HeaderUserID       = "X-User-ID"
	HeaderGatewayToken = "X-Gateway-Token"
)

// Claims es la identidad que el gateway del bot resolvió para el request.
type Claims struct {
	UserID string
}

// AuthContext:
// - Si gatewayToken == "" => modo dev: alcanza con X-User-ID.
// - Si no, X-Gateway-Token tiene que coincidir; si no coincide no se setean claims.
// - Si no hay claims, el request sigue igual; los handlers deciden el 401.
func AuthContext(gatewayToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid := strings.TrimSpace(r.Header.Get(HeaderUserID))
			if uid == "" {
				next.ServeHTTP(w, r)
				return
			}

			if gatewayToken != "" && !tokenMatches(r.Header.Get(HeaderGatewayToken), gatewayToken) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, Claims{UserID: uid})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetClaims(ctx context.Context) (Claims, bool) {
	v := ctx.Value(claimsKey)
	if v == nil {
		return Claims{}, false
	}
	c, ok := v.(Claims)
	return c, ok
}

// UserID es el atajo que usan los handlers. ok=false si no hay usuario autenticado.
func UserID(r *http.Request) (string, bool) {
	c, ok := GetClaims(r.Context())
	if !ok || strings.TrimSpace(c.UserID) == "" {
		return "", false
	}
	return c.UserID, true
}

func tokenMatches(got, want string) bool {
	got = strings.TrimSpace(got)
	if got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
