package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt"

	"github.com/DioGolang/fleettrack/pkg/logger"
)

const OperatorRole = "operator"

var (
	errMissingToken = errors.New("missing bearer token")
	errForbidden    = errors.New("token lacks operator role")
)

// RequireOperator accepts HS256 bearer tokens carrying role=operator. An
// empty secret disables the check.
func RequireOperator(secret string, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		key := []byte(secret)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := verifyOperator(r.Header.Get("Authorization"), key); err != nil {
				log.Warn(r.Context(), "Operator authorization failed",
					logger.String("path", r.URL.Path),
					logger.WithError(err),
				)
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("WWW-Authenticate", `Bearer realm="fleettrack"`)
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "message": "Unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func verifyOperator(header string, key []byte) error {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return errMissingToken
	}
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return err
	}
	if role, _ := claims["role"].(string); role != OperatorRole {
		return errForbidden
	}
	return nil
}
