package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HendrickPhan/go-verify-apple-id-token/validator"
	"google.golang.org/api/idtoken"
)

// GoogleVerifier accepts Google ID tokens minted for ClientID.
type GoogleVerifier struct {
	ClientID string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{ClientID: clientID, validate: idtoken.Validate}
}

func (v *GoogleVerifier) Verify(ctx context.Context, token string) (Claims, error) {
	if strings.TrimSpace(v.ClientID) == "" {
		return Claims{}, errors.New("missing google client id")
	}
	payload, err := v.validate(ctx, token, v.ClientID)
	if err != nil {
		return Claims{}, err
	}
	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return Claims{}, fmt.Errorf("unexpected issuer: %s", payload.Issuer)
	}

	email := ""
	if raw, ok := payload.Claims["email"]; ok {
		if s, ok := raw.(string); ok {
			email = s
		}
	}
	return Claims{
		// Both issuer spellings name the same identity space.
		Issuer:  "https://accounts.google.com",
		Subject: payload.Subject,
		Email:   strings.TrimSpace(strings.ToLower(email)),
	}, nil
}

// AppleVerifier accepts Sign in with Apple ID tokens for ServiceID.
type AppleVerifier struct {
	ServiceID string
	verify    func(serviceID, token string) (Claims, error)
}

func NewAppleVerifier(serviceID string) *AppleVerifier {
	client := validator.NewClient()
	return &AppleVerifier{
		ServiceID: serviceID,
		verify: func(aud, token string) (Claims, error) {
			idToken, err := client.VerifyIdToken(aud, token)
			if err != nil {
				return Claims{}, err
			}
			return Claims{Issuer: idToken.Iss, Subject: idToken.Sub, Email: idToken.Email}, nil
		},
	}
}

func (v *AppleVerifier) Verify(_ context.Context, token string) (Claims, error) {
	if strings.TrimSpace(v.ServiceID) == "" {
		return Claims{}, errors.New("missing apple service id")
	}
	c, err := v.verify(v.ServiceID, token)
	if err != nil {
		return Claims{}, err
	}
	if c.Issuer != "https://appleid.apple.com" {
		return Claims{}, fmt.Errorf("unexpected issuer: %s", c.Issuer)
	}
	c.Email = strings.TrimSpace(strings.ToLower(c.Email))
	return c, nil
}
