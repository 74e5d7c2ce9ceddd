/*
 * Copyright (c) 2025, Brokkr Project (https://github.com/brokkr-id).
 *
 * Brokkr Project licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package token provides issuance and verification of signed, expiring bearer
// tokens carrying a typed subject of the form "<kind>-<payload>".
package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind disambiguates the purpose a token was issued for.
type Kind string

const (
	// KindUser marks session and device-flow access tokens.
	KindUser Kind = "user"
	// KindReset marks password reset tokens.
	KindReset Kind = "reset"
	// KindEmail marks email verification tokens.
	KindEmail Kind = "email"
	// KindUpdate marks email change verification tokens.
	KindUpdate Kind = "update"
)

// oldEmailClaim carries the prior address on email change tokens.
const oldEmailClaim = "old_email"

// ErrInvalidToken is returned for every verification failure. Signature,
// expiry, and kind mismatches are deliberately indistinguishable.
var ErrInvalidToken = errors.New("invalid token")

// ServiceInterface defines the interface for signed token operations.
type ServiceInterface interface {
	Issue(kind Kind, payload string, validity time.Duration, extra map[string]string) (string, error)
	Verify(token string, kind Kind) (string, error)
	VerifyEmailUpdate(token string) (string, string, error)
}

// Service implements ServiceInterface using HMAC-SHA256 signatures.
type Service struct {
	secret []byte
	issuer string
}

// NewService creates a new signed token service with the given signing secret.
func NewService(secret, issuer string) *Service {
	return &Service{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// Issue signs a token of the given kind whose subject carries the payload.
// Extra claims are flattened into the claim set.
func (s *Service) Issue(kind Kind, payload string, validity time.Duration, extra map[string]string) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"sub": string(kind) + "-" + payload,
		"iss": s.issuer,
		"nbf": now.Unix(),
		"exp": now.Add(validity).Unix(),
	}
	for key, value := range extra {
		claims[key] = value
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks the token signature and validity window and returns the
// subject payload if the token was issued for the expected kind. Any failure
// collapses to ErrInvalidToken.
func (s *Service) Verify(tokenString string, kind Kind) (string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", ErrInvalidToken
	}

	payload, err := payloadForKind(claims, kind)
	if err != nil {
		return "", ErrInvalidToken
	}
	return payload, nil
}

// VerifyEmailUpdate verifies an email change token and returns the new and
// prior email addresses.
func (s *Service) VerifyEmailUpdate(tokenString string) (string, string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", "", ErrInvalidToken
	}

	email, err := payloadForKind(claims, KindUpdate)
	if err != nil {
		return "", "", ErrInvalidToken
	}

	oldEmail, ok := claims[oldEmailClaim].(string)
	if !ok || oldEmail == "" {
		return "", "", ErrInvalidToken
	}

	return email, oldEmail, nil
}

// parse parses and validates the token with the service secret.
func (s *Service) parse(tokenString string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// payloadForKind splits the composite subject and checks the token kind.
func payloadForKind(claims jwt.MapClaims, kind Kind) (string, error) {
	sub, err := claims.GetSubject()
	if err != nil {
		return "", ErrInvalidToken
	}

	parts := strings.SplitN(sub, "-", 2)
	if len(parts) != 2 || parts[0] != string(kind) || parts[1] == "" {
		return "", ErrInvalidToken
	}
	return parts[1], nil
}
