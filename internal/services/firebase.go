package services

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// FirebaseService verifies phone-login ID tokens with Firebase Auth.
// A nil receiver means the integration is not configured; callers get
// ErrUpstreamUnavailable instead of a panic.
type FirebaseService struct {
	client *auth.Client
}

// NewFirebaseService initializes the Firebase Admin SDK from a service
// account credentials file.
func NewFirebaseService(ctx context.Context, credentialsFile string) (*FirebaseService, error) {
	if credentialsFile == "" {
		return nil, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("firebase init: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}

	return &FirebaseService{client: client}, nil
}

// VerifyPhoneToken validates the ID token and returns the verified phone
// number embedded in it.
func (s *FirebaseService) VerifyPhoneToken(ctx context.Context, idToken string) (string, error) {
	if s == nil || s.client == nil {
		return "", fmt.Errorf("%w: firebase not configured", ErrUpstreamUnavailable)
	}

	token, err := s.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	phone, _ := token.Claims["phone_number"].(string)
	if phone == "" {
		return "", fmt.Errorf("%w: no phone number in token", ErrInvalidToken)
	}

	return phone, nil
}
