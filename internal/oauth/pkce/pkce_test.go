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

package pkce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type PKCETestSuite struct {
	suite.Suite
}

func TestPKCESuite(t *testing.T) {
	suite.Run(t, new(PKCETestSuite))
}

func (suite *PKCETestSuite) TestComputeS256Challenge() {
	tests := []struct {
		name         string
		codeVerifier string
		expected     string
	}{
		{
			// RFC 7636 appendix B test vector.
			name:         "RFC 7636 vector",
			codeVerifier: "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk",
			expected:     "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM",
		},
		{
			name:         "Short verifier",
			codeVerifier: "test",
			expected:     "n4bQgYhMfWWaL-qgxVrQFaO_TxsrC4Is0V1sFbDwCgg",
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			assert.Equal(suite.T(), tc.expected, ComputeS256Challenge(tc.codeVerifier))
		})
	}
}

func (suite *PKCETestSuite) TestValidatePKCE() {
	tests := []struct {
		name                string
		codeChallenge       string
		codeChallengeMethod string
		codeVerifier        string
		expectedError       error
	}{
		{
			name:                "Valid S256 challenge",
			codeChallenge:       "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM",
			codeChallengeMethod: CodeChallengeMethodS256,
			codeVerifier:        "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk",
			expectedError:       nil,
		},
		{
			name:                "Wrong verifier",
			codeChallenge:       "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM",
			codeChallengeMethod: CodeChallengeMethodS256,
			codeVerifier:        "wrong-verifier",
			expectedError:       ErrPKCEValidationFailed,
		},
		{
			name:                "Plain method rejected",
			codeChallenge:       "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk",
			codeChallengeMethod: "plain",
			codeVerifier:        "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk",
			expectedError:       ErrUnsupportedChallengeMethod,
		},
		{
			name:                "Empty method rejected",
			codeChallenge:       "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM",
			codeChallengeMethod: "",
			codeVerifier:        "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk",
			expectedError:       ErrUnsupportedChallengeMethod,
		},
		{
			name:                "Unknown method rejected even with matching challenge",
			codeChallenge:       "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM",
			codeChallengeMethod: "S512",
			codeVerifier:        "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk",
			expectedError:       ErrUnsupportedChallengeMethod,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			err := ValidatePKCE(tc.codeChallenge, tc.codeChallengeMethod, tc.codeVerifier)
			if tc.expectedError == nil {
				assert.NoError(suite.T(), err)
			} else {
				assert.ErrorIs(suite.T(), err, tc.expectedError)
			}
		})
	}
}

func (suite *PKCETestSuite) TestValidateRoundTrip() {
	verifiers := []string{
		"test",
		"dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk",
		"another~verifier_with-unreserved.chars",
	}

	for _, verifier := range verifiers {
		challenge := ComputeS256Challenge(verifier)
		assert.NoError(suite.T(), ValidatePKCE(challenge, CodeChallengeMethodS256, verifier))
		assert.ErrorIs(suite.T(),
			ValidatePKCE(challenge, CodeChallengeMethodS256, verifier+"x"),
			ErrPKCEValidationFailed)
	}
}

func (suite *PKCETestSuite) TestGenerateCodeVerifier() {
	first, err := GenerateCodeVerifier()
	assert.NoError(suite.T(), err)
	// 32 octets, base64url without padding.
	assert.Len(suite.T(), first, 43)
	assert.NoError(suite.T(), ValidatePKCE(ComputeS256Challenge(first), CodeChallengeMethodS256, first))

	second, err := GenerateCodeVerifier()
	assert.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), first, second)
}
