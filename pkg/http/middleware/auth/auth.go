package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey struct{}

var errNoSubject = errors.New("token has no subject")

// Identity is the authenticated principal of a request.
type Identity struct {
	Subject string
	Role    string
}

// Claims are the token claims the service understands.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator verifies HS256 bearer tokens.
type Authenticator struct {
	secret []byte
	issuer string
}

func NewAuthenticator(secret, issuer string) *Authenticator {
	return &Authenticator{secret: []byte(secret), issuer: issuer}
}

// Middleware rejects requests without a valid bearer token and stores the Identity in the context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			unauth(w, "invalid_request", "missing bearer token")

			return
		}

		id, err := a.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			slog.DebugContext(r.Context(), "Rejected bearer token", "error", err)
			unauth(w, "invalid_token", describe(err))

			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// Parse validates a raw token and returns its identity.
func (a *Authenticator) Parse(raw string) (Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(30 * time.Second),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return Identity{}, err
	}
	if !token.Valid {
		return Identity{}, errors.New("invalid jwt")
	}
	if claims.Subject == "" {
		return Identity{}, errNoSubject
	}

	return Identity{Subject: claims.Subject, Role: claims.Role}, nil
}

// Issue signs a token for subject and role. It is used by tests and local tooling.
func (a *Authenticator) Issue(subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by Middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)

	return id, ok
}

// describe maps a token error to a fixed description safe to quote in a header.
func describe(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token is expired"
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return "token is not valid yet"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "token is malformed"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "token signature is invalid"
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "token issuer is invalid"
	case errors.Is(err, errNoSubject):
		return "token has no subject"
	default:
		return "token is invalid"
	}
}

func unauth(w http.ResponseWriter, code, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="`+code+`", error_description="`+desc+`"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code, "message": desc})
}
