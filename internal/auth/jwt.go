// StepSocial - Dance Community Platform
// Copyright 2026 StepSocial
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stepsocial/stepsocial

// Package auth provides bearer token authentication for the API:
// HMAC-signed JWTs carrying the member's profile id, password
// verification, and per-IP login rate limiting.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stepsocial/stepsocial/internal/config"
)

// Claims are the JWT claims carried by a bearer token. ProfileID is the
// authenticated member and the subject of every recommendation request.
type Claims struct {
	Username  string `json:"username"`
	ProfileID int64  `json:"profile_id"`
	jwt.RegisteredClaims
}

// JWTManager creates and validates bearer tokens. Tokens are signed
// with HMAC-SHA256 and expire after the configured TTL.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTManager builds a token manager from the auth configuration.
// When the secret is empty a random one is generated, which is only
// acceptable in development; config validation rejects an empty secret
// in production.
func NewJWTManager(cfg *config.AuthConfig) (*JWTManager, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		generated, err := generateSecret()
		if err != nil {
			return nil, fmt.Errorf("failed to generate jwt secret: %w", err)
		}
		secret = generated
	}

	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &JWTManager{
		secret: []byte(secret),
		ttl:    ttl,
	}, nil
}

// GenerateToken creates a signed token for an authenticated member.
func (m *JWTManager) GenerateToken(username string, profileID int64) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username:  username,
		ProfileID: profileID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signedToken, nil
}

// ValidateToken verifies a token's signature, algorithm, and time
// claims and returns the embedded claims.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Pin the algorithm to prevent confusion attacks.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.ProfileID <= 0 {
		return nil, fmt.Errorf("token carries no profile id")
	}
	return claims, nil
}

// TokenTTL returns the configured token lifetime.
func (m *JWTManager) TokenTTL() time.Duration {
	return m.ttl
}

func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
