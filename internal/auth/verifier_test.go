package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestVerifier_Verify(t *testing.T) {
	t.Parallel()

	verifier := NewVerifier(testSecret)
	other := NewVerifier("ffffffffffffffffffffffffffffffff")

	valid, err := verifier.Sign("emp-7", "employee", time.Hour)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	expired, _ := verifier.Sign("emp-7", "employee", -time.Hour)
	foreign, _ := other.Sign("emp-7", "employee", time.Hour)
	badRole, _ := verifier.Sign("emp-7", "owner", time.Hour)
	noSubject, _ := verifier.Sign("", "admin", time.Hour)
	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "a-1"},
	}).SignedString([]byte(testSecret))
	wrongAlg, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "a-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "valid", token: valid},
		{name: "expired", token: expired, wantErr: ErrInvalidToken},
		{name: "other secret", token: foreign, wantErr: ErrInvalidToken},
		{name: "unknown role", token: badRole, wantErr: ErrUnknownRole},
		{name: "missing subject", token: noSubject, wantErr: ErrInvalidToken},
		{name: "missing expiry", token: noExpiry, wantErr: ErrInvalidToken},
		{name: "wrong algorithm", token: wrongAlg, wantErr: ErrInvalidToken},
		{name: "garbage", token: "not-a-token", wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			identity, err := verifier.Verify(tt.token)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if identity.Subject != "emp-7" || identity.Role != "employee" || identity.ExpiresAt.IsZero() {
				t.Fatalf("unexpected identity %+v", identity)
			}
		})
	}
}
