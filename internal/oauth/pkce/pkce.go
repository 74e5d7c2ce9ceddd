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

// Package pkce provides PKCE (Proof Key for Code Exchange) validation utilities.
//
// Only the S256 challenge method is supported. The plain method is rejected
// so a downgrade from the hashed transform is not possible.
package pkce

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
)

// CodeChallengeMethodS256 is the only supported PKCE code challenge method.
const CodeChallengeMethodS256 = "S256"

// PKCE validation errors.
var (
	ErrUnsupportedChallengeMethod = errors.New("unsupported code challenge method")
	ErrPKCEValidationFailed       = errors.New("PKCE validation failed")
)

// GenerateCodeVerifier returns a fresh high-entropy code verifier, the
// URL-safe base64 encoding, without padding, of 32 random octets.
func GenerateCodeVerifier() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ComputeS256Challenge computes the S256 transform of a code verifier:
// the URL-safe base64 encoding, without padding, of its SHA-256 digest.
func ComputeS256Challenge(codeVerifier string) string {
	hash := sha256.Sum256([]byte(codeVerifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// ValidatePKCE validates the supplied code verifier against the stored code
// challenge. The comparison of the recomputed challenge uses constant time.
// The verifier must never be logged by callers.
func ValidatePKCE(codeChallenge, codeChallengeMethod, codeVerifier string) error {
	if codeChallengeMethod != CodeChallengeMethodS256 {
		return ErrUnsupportedChallengeMethod
	}

	expectedChallenge := ComputeS256Challenge(codeVerifier)
	if subtle.ConstantTimeCompare([]byte(expectedChallenge), []byte(codeChallenge)) != 1 {
		return ErrPKCEValidationFailed
	}
	return nil
}
