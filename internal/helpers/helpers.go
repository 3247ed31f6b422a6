package helpers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

type CustomClaims struct {
	Role        string `json:"role"`
	Email       string `json:"email"`
	AppMetadata struct {
		Provider  string   `json:"provider"`
		Providers []string `json:"providers"`
		Roles     []string `json:"roles,omitempty"`
	} `json:"app_metadata"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// TokenValidator verifies Supabase access tokens.
type TokenValidator struct {
	keyfunc jwt.Keyfunc
	stop    func()
}

// NewTokenValidator fetches the project's JWKS once and keeps it refreshed
// in the background until Close is called.
func NewTokenValidator(ctx context.Context, supabaseURL string) (*TokenValidator, error) {
	if supabaseURL == "" {
		return nil, errors.New("SUPABASE_URL not set")
	}

	jwksURL := fmt.Sprintf("%s/auth/v1/.well-known/jwks.json", strings.TrimRight(supabaseURL, "/"))

	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS from %s: %w", jwksURL, err)
	}

	return &TokenValidator{keyfunc: jwks.Keyfunc, stop: jwks.EndBackground}, nil
}

// NewTokenValidatorWithKeyfunc builds a validator around a fixed key source.
func NewTokenValidatorWithKeyfunc(kf jwt.Keyfunc) *TokenValidator {
	return &TokenValidator{keyfunc: kf, stop: func() {}}
}

func (v *TokenValidator) ValidateToken(tokenStr string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, v.keyfunc)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}

	return claims, nil
}

func (v *TokenValidator) Close() {
	v.stop()
}

// StringTrim strips whitespace and stray quotes that clients sometimes
// send around path parameters.
func StringTrim(s string) string {
	s = strings.TrimSpace(s)
	return strings.Trim(s, "\"'")
}
