// Package middleware provides the HTTP middleware chain: bearer-token auth,
// request logging and prometheus instrumentation.
package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pathforge/platform/internal/errors"
	"github.com/pathforge/platform/internal/httputil"
	"github.com/pathforge/platform/internal/logging"
)

// Claims are the session-token claims issued by the auth gateway.
type Claims struct {
	jwt.RegisteredClaims
}

// Auth validates HS256 bearer tokens signed with the gateway JWT secret and
// stores the user id and role on the request context.
type Auth struct {
	secret []byte
	log    *logging.Logger
}

// NewAuth creates the auth middleware.
func NewAuth(jwtSecret string, log *logging.Logger) *Auth {
	return &Auth{secret: []byte(jwtSecret), log: log.WithField("middleware", "auth")}
}

// Optional authenticates the request when a bearer token is present and
// passes it through untouched otherwise. A present-but-invalid token is still
// rejected, so clients never act under a silently dropped identity.
func (a *Auth) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := a.validate(token)
		if err != nil {
			a.log.WithError(err).Debug("Rejected bearer token")
			svcErr := errors.InvalidToken(err)
			httputil.WriteErrorResponse(w, r, svcErr.HTTPStatus, string(svcErr.Code), svcErr.Message, nil)
			return
		}
		ctx := logging.WithUserID(r.Context(), claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Require rejects requests without a valid bearer token.
func (a *Auth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			httputil.Unauthorized(w, "missing bearer token")
			return
		}
		claims, err := a.validate(token)
		if err != nil {
			a.log.WithError(err).Debug("Rejected bearer token")
			svcErr := errors.InvalidToken(err)
			httputil.WriteErrorResponse(w, r, svcErr.HTTPStatus, string(svcErr.Code), svcErr.Message, nil)
			return
		}
		ctx := logging.WithUserID(r.Context(), claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Auth) validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.InvalidToken(nil)
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.InvalidToken(nil)
	}
	return claims, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
