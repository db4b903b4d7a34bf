package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/TanmayDhobale/splvault/internal/common"
)

// Claims carries the standard claims plus the operator identity the token
// was minted for.
type Claims struct {
	jwt.RegisteredClaims
	Operator string
}

// GenerateToken mints an HS256 operator token.
func GenerateToken(operator string, secret []byte, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		Operator: operator,
	})

	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// ParseToken validates a token and returns the operator it names.
func ParseToken(tokenString string, secret []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}
	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.Operator, nil
}

type contextKey string

const operatorKey contextKey = "operator"

// OperatorFromContext returns the operator an authenticated request runs as.
func OperatorFromContext(ctx context.Context) (string, bool) {
	operator, ok := ctx.Value(operatorKey).(string)
	return operator, ok
}

// authenticate guards a route group with bearer-token auth.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		if header == "" {
			s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authorization required"})
			return
		}
		if !strings.HasPrefix(header, common.BearerPrefix) {
			s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "bearer token required"})
			return
		}

		operator, err := ParseToken(strings.TrimPrefix(header, common.BearerPrefix), s.secret)
		if err != nil {
			s.log.Warn(r.Context(), "token rejected", "error", err)
			s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
			return
		}

		ctx := context.WithValue(r.Context(), operatorKey, operator)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
