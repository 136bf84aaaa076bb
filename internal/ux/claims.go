package ux

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields of an access or refresh token shown by status.
// They are decoded without verifying the signature: the client has no key
// and only displays them.
type Claims struct {
	Subject   string     `json:"sub,omitempty" yaml:"sub,omitempty"`
	Type      string     `json:"type,omitempty" yaml:"type,omitempty"`
	ExpiresAt *time.Time `json:"exp,omitempty" yaml:"exp,omitempty"`
	IssuedAt  *time.Time `json:"iat,omitempty" yaml:"iat,omitempty"`
}

type tokenClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// DecodeClaims reads the claims of a JWT without checking its signature.
// Opaque (non-JWT) tokens return an error.
func DecodeClaims(token string) (*Claims, error) {
	var tc tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &tc); err != nil {
		return nil, fmt.Errorf("token is not a JWT: %w", err)
	}

	c := &Claims{Subject: tc.Subject, Type: tc.Type}
	if tc.ExpiresAt != nil {
		t := tc.ExpiresAt.Time
		c.ExpiresAt = &t
	}
	if tc.IssuedAt != nil {
		t := tc.IssuedAt.Time
		c.IssuedAt = &t
	}
	return c, nil
}
