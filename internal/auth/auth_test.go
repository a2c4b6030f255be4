package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"google.golang.org/api/idtoken"

	"github.com/ionutdr23/GameMate/internal/domain"
)

func newTestJWT(t *testing.T) *JWTVerifier {
	t.Helper()
	v, err := NewJWTVerifier("test-secret-at-least-16-chars!!", "gamemate-test", "gamemate-api")
	if err != nil {
		t.Fatalf("NewJWTVerifier: %v", err)
	}
	return v
}

func TestNewJWTVerifier_ShortSecret(t *testing.T) {
	if _, err := NewJWTVerifier("short", "iss", ""); err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestJWTVerifier_RoundTrip(t *testing.T) {
	v := newTestJWT(t)
	tok, err := v.Mint("user-1", "a@example.com", time.Hour)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if strings.Count(tok, ".") != 2 {
		t.Fatalf("token %q does not look like a JWT", tok)
	}

	c, err := v.Verify(context.Background(), tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if c.Subject != "user-1" || c.Issuer != "gamemate-test" || c.Email != "a@example.com" {
		t.Fatalf("claims = %+v", c)
	}
	if c.UserID() != "gamemate-test|user-1" {
		t.Fatalf("UserID = %q", c.UserID())
	}
}

func TestJWTVerifier_Rejects(t *testing.T) {
	v := newTestJWT(t)

	expired, _ := v.Mint("user-1", "", -time.Minute)
	if _, err := v.Verify(context.Background(), expired); err == nil {
		t.Fatal("expected expired token to fail")
	}

	other, _ := NewJWTVerifier("another-secret-at-least-16-chars", "gamemate-test", "gamemate-api")
	forged, _ := other.Mint("user-1", "", time.Hour)
	if _, err := v.Verify(context.Background(), forged); err == nil {
		t.Fatal("expected token signed with other secret to fail")
	}

	wrongAud, _ := NewJWTVerifier("test-secret-at-least-16-chars!!", "gamemate-test", "other-api")
	tok, _ := wrongAud.Mint("user-1", "", time.Hour)
	if _, err := v.Verify(context.Background(), tok); err == nil {
		t.Fatal("expected audience mismatch to fail")
	}
}

type verifierFunc func(ctx context.Context, token string) (Claims, error)

func (f verifierFunc) Verify(ctx context.Context, token string) (Claims, error) { return f(ctx, token) }

func TestChain(t *testing.T) {
	reject := verifierFunc(func(context.Context, string) (Claims, error) { return Claims{}, errors.New("nope") })
	accept := verifierFunc(func(_ context.Context, tok string) (Claims, error) {
		return Claims{Issuer: "x", Subject: tok}, nil
	})

	c, err := Chain{reject, accept}.Verify(context.Background(), "abc")
	if err != nil || c.Subject != "abc" {
		t.Fatalf("Verify = %+v, %v", c, err)
	}

	_, err = Chain{reject}.Verify(context.Background(), "abc")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	_, err = Chain{accept}.Verify(context.Background(), " ")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("empty token err = %v", err)
	}
	if _, err := (Chain{}).Verify(context.Background(), "abc"); !errors.Is(err, ErrNoVerifier) {
		t.Fatalf("err = %v, want ErrNoVerifier", err)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer  abc ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		got, ok := BearerToken(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("BearerToken(%q) = %q, %v", tc.in, got, ok)
		}
	}
}

func TestGoogleVerifier_IssuerCheck(t *testing.T) {
	v := &GoogleVerifier{ClientID: "cid", validate: func(_ context.Context, token, aud string) (*idtoken.Payload, error) {
		if aud != "cid" {
			t.Fatalf("audience = %q", aud)
		}
		iss := "accounts.google.com"
		if token == "evil" {
			iss = "https://evil.example.com"
		}
		return &idtoken.Payload{Issuer: iss, Subject: "g-1", Claims: map[string]any{"email": " A@Example.com "}}, nil
	}}

	c, err := v.Verify(context.Background(), "good")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if c.Subject != "g-1" || c.Email != "a@example.com" || c.Issuer != "https://accounts.google.com" {
		t.Fatalf("claims = %+v", c)
	}
	if _, err := v.Verify(context.Background(), "evil"); err == nil {
		t.Fatal("expected issuer mismatch to fail")
	}
}

func TestAppleVerifier_IssuerCheck(t *testing.T) {
	v := &AppleVerifier{ServiceID: "svc", verify: func(aud, token string) (Claims, error) {
		if token == "evil" {
			return Claims{Issuer: "https://evil.example.com", Subject: "x"}, nil
		}
		return Claims{Issuer: "https://appleid.apple.com", Subject: "a-1", Email: "Me@Icloud.com"}, nil
	}}
	c, err := v.Verify(context.Background(), "good")
	if err != nil || c.Email != "me@icloud.com" {
		t.Fatalf("Verify = %+v, %v", c, err)
	}
	if _, err := v.Verify(context.Background(), "evil"); err == nil {
		t.Fatal("expected issuer mismatch to fail")
	}
}

func TestClaimsContext(t *testing.T) {
	if _, ok := ClaimsFromContext(context.Background()); ok {
		t.Fatal("expected no claims")
	}
	ctx := WithClaims(context.Background(), Claims{Issuer: "i", Subject: "s"})
	c, ok := ClaimsFromContext(ctx)
	if !ok || c.Subject != "s" {
		t.Fatalf("ClaimsFromContext = %+v, %v", c, ok)
	}
}
