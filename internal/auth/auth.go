// Package auth verifies the bearer credentials presented to the API. Identity
// is issued elsewhere: a local HS256 issuer, Google or Apple.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ionutdr23/GameMate/internal/domain"
)

var ErrNoVerifier = errors.New("no token verifier configured")

// Claims identifies the caller of a request.
type Claims struct {
	Issuer  string
	Subject string
	Email   string
}

// UserID is the stable identity key that profiles are owned by.
func (c Claims) UserID() string {
	return c.Issuer + "|" + c.Subject
}

type Verifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// Chain accepts a token when any of its verifiers does, trying them in order.
type Chain []Verifier

func (c Chain) Verify(ctx context.Context, token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, fmt.Errorf("%w: missing token", domain.ErrUnauthorized)
	}
	if len(c) == 0 {
		return Claims{}, ErrNoVerifier
	}
	var errs []error
	for _, v := range c {
		claims, err := v.Verify(ctx, token)
		if err == nil {
			return claims, nil
		}
		errs = append(errs, err)
	}
	return Claims{}, fmt.Errorf("%w: %w", domain.ErrUnauthorized, errors.Join(errs...))
}

type ctxKey int

const claimsKey ctxKey = iota

func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(claimsKey).(Claims)
	return c, ok && c.Subject != ""
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
