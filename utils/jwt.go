package utils

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SupabaseClaims là claims trong access token Supabase (HS256, aud "authenticated").
type SupabaseClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func (c *SupabaseClaims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

const supabaseAudience = "authenticated"

type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

func (v *TokenVerifier) Verify(tokenString string) (*SupabaseClaims, error) {
	if len(v.secret) == 0 {
		return nil, errors.New("jwt secret is not configured")
	}
	claims := &SupabaseClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(supabaseAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if _, err := claims.UserID(); err != nil {
		return nil, fmt.Errorf("token subject is not a user id: %w", err)
	}
	return claims, nil
}

// SignToken ký token cùng dạng với Supabase; dùng cho môi trường dev và test.
func (v *TokenVerifier) SignToken(claims SupabaseClaims) (string, error) {
	if len(claims.Audience) == 0 {
		claims.Audience = jwt.ClaimStrings{supabaseAudience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
