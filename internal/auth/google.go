package auth

import (
	"context"

	"google.golang.org/api/idtoken"

	apperrors "github.com/arcanewagers/Auth/internal/errors"
)

// GoogleIdentity is the slice of a verified Google ID token the auth service
// cares about.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
}

// GoogleVerifier validates third-party identity tokens.
type GoogleVerifier interface {
	Verify(ctx context.Context, token string) (*GoogleIdentity, error)
}

// googleVerifier verifies Google ID tokens against the configured OAuth
// client ID.
type googleVerifier struct {
	clientID string
}

// NewGoogleVerifier builds a GoogleVerifier for the given OAuth client ID.
func NewGoogleVerifier(clientID string) GoogleVerifier {
	return &googleVerifier{clientID: clientID}
}

func (v *googleVerifier) Verify(ctx context.Context, token string) (*GoogleIdentity, error) {
	payload, err := idtoken.Validate(ctx, token, v.clientID)
	if err != nil {
		return nil, apperrors.ErrInvalidGoogleToken
	}

	// Issuer check guards against tokens minted by a spoofed issuer.
	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return nil, apperrors.ErrInvalidGoogleToken
	}

	identity := &GoogleIdentity{Subject: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		identity.Name = name
	}
	return identity, nil
}
