package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Vahe555123/busines/internal/infra/logging"
)

// ===== Session/JWT primitives =====

type AuthManager struct {
	secret []byte
	ttl    time.Duration
}

func NewAuthManager(secret string, ttl time.Duration) *AuthManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthManager{secret: []byte(secret), ttl: ttl}
}

type SessionClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Mint signs a session token for the given user. Used by the seed tooling and
// the tests; token issuance normally lives with the auth provider.
func (a *AuthManager) Mint(userID, email, role string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *AuthManager) parse(tok string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// VerifyToken satisfies the websocket hub's TokenVerifier.
func (a *AuthManager) VerifyToken(tok string) (string, error) {
	claims, err := a.parse(tok)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

type ctxKey int

const claimsKey ctxKey = iota

// bearerToken pulls the raw JWT out of the Authorization header.
func bearerToken(r *http.Request) string {
	hdr := r.Header.Get("Authorization")
	if hdr == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
		return ""
	}
	return strings.TrimSpace(hdr[7:])
}

// Require rejects requests without a valid session token.
func (a *AuthManager) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := bearerToken(r)
		if tok == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		claims, err := a.parse(tok)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		ctx = logging.WithUserID(ctx, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional attaches the identity when a valid token is present and lets the
// request through anonymously otherwise. Used by the chat routes.
func (a *AuthManager) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := bearerToken(r); tok != "" {
			if claims, err := a.parse(tok); err == nil {
				ctx := context.WithValue(r.Context(), claimsKey, claims)
				ctx = logging.WithUserID(ctx, claims.Subject)
				r = r.WithContext(ctx)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// callerID returns the authenticated user id, or "" for anonymous requests.
func callerID(r *http.Request) string {
	claims, _ := r.Context().Value(claimsKey).(*SessionClaims)
	if claims == nil {
		return ""
	}
	return claims.Subject
}

func callerRole(r *http.Request) string {
	claims, _ := r.Context().Value(claimsKey).(*SessionClaims)
	if claims == nil {
		return ""
	}
	return claims.Role
}
