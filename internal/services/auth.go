package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tablesideapp/tableside/internal/auth"
	"github.com/tablesideapp/tableside/internal/logging"
	"github.com/tablesideapp/tableside/internal/session"
)

var ErrAuthInvalidToken = errors.New("invalid or expired token")

type tokenVerifier interface {
	Verify(raw string) (auth.Identity, error)
}

// AuthService turns a backend-issued token into session data. Signing in
// keeps the guest id so a guest cart can follow the customer.
type AuthService struct {
	verifier tokenVerifier
	logger   *slog.Logger
}

func NewAuthService(verifier tokenVerifier, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{verifier: verifier, logger: logger.With("component", "auth")}
}

func (s *AuthService) SignIn(ctx context.Context, current *session.Data, token string) (*session.Data, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return nil, fmt.Errorf("%w: token is required", ErrAuthInvalidToken)
	}

	identity, err := s.verifier.Verify(token)
	if err != nil {
		logging.FromContext(ctx, s.logger).Info("rejected session token", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrAuthInvalidToken, err)
	}

	data := &session.Data{}
	if current != nil {
		data.GuestID = current.GuestID
		data.Pickers = current.Pickers
		if current.CustomerID == identity.Subject {
			data.DraftOrderID = current.DraftOrderID
		}
	}
	data.CustomerID = identity.Subject
	data.Role = identity.Role
	data.AccessToken = token

	logging.FromContext(ctx, s.logger).Info("session signed in", "subject", identity.Subject, "role", identity.Role)
	return data, nil
}
