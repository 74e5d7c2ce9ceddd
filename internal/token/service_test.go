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

package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type TokenServiceTestSuite struct {
	suite.Suite
	service *Service
}

func TestTokenServiceSuite(t *testing.T) {
	suite.Run(t, new(TokenServiceTestSuite))
}

func (suite *TokenServiceTestSuite) SetupTest() {
	suite.service = NewService("test-signing-secret", "brokkr")
}

func (suite *TokenServiceTestSuite) TestIssueAndVerify() {
	tokenString, err := suite.service.Issue(KindEmail, "user@example.com", time.Hour, nil)
	suite.Require().NoError(err)
	suite.NotEmpty(tokenString)

	payload, err := suite.service.Verify(tokenString, KindEmail)
	suite.NoError(err)
	suite.Equal("user@example.com", payload)
}

func (suite *TokenServiceTestSuite) TestVerifyKindMismatch() {
	tokenString, err := suite.service.Issue(KindEmail, "user@example.com", time.Hour, nil)
	suite.Require().NoError(err)

	_, err = suite.service.Verify(tokenString, KindReset)
	suite.ErrorIs(err, ErrInvalidToken)
}

func (suite *TokenServiceTestSuite) TestVerifyExpiredToken() {
	tokenString, err := suite.service.Issue(KindReset, "user@example.com", -time.Minute, nil)
	suite.Require().NoError(err)

	_, err = suite.service.Verify(tokenString, KindReset)
	suite.ErrorIs(err, ErrInvalidToken)
}

func (suite *TokenServiceTestSuite) TestVerifyTamperedToken() {
	tokenString, err := suite.service.Issue(KindUser, "user-123", time.Hour, nil)
	suite.Require().NoError(err)

	tampered := tokenString[:len(tokenString)-4] + "aaaa"
	_, err = suite.service.Verify(tampered, KindUser)
	suite.ErrorIs(err, ErrInvalidToken)
}

func (suite *TokenServiceTestSuite) TestVerifyWrongSecret() {
	other := NewService("another-secret", "brokkr")
	tokenString, err := other.Issue(KindUser, "user-123", time.Hour, nil)
	suite.Require().NoError(err)

	_, err = suite.service.Verify(tokenString, KindUser)
	suite.ErrorIs(err, ErrInvalidToken)
}

func (suite *TokenServiceTestSuite) TestVerifyGarbage() {
	_, err := suite.service.Verify("not-a-token", KindUser)
	suite.ErrorIs(err, ErrInvalidToken)
}

func (suite *TokenServiceTestSuite) TestPayloadContainingSeparator() {
	// Email payloads can contain dashes; only the first separator splits the kind.
	tokenString, err := suite.service.Issue(KindEmail, "first-last@example.com", time.Hour, nil)
	suite.Require().NoError(err)

	payload, err := suite.service.Verify(tokenString, KindEmail)
	suite.NoError(err)
	suite.Equal("first-last@example.com", payload)
}

func (suite *TokenServiceTestSuite) TestVerifyEmailUpdate() {
	tokenString, err := suite.service.Issue(KindUpdate, "new@example.com", time.Hour,
		map[string]string{"old_email": "old@example.com"})
	suite.Require().NoError(err)

	email, oldEmail, err := suite.service.VerifyEmailUpdate(tokenString)
	suite.NoError(err)
	suite.Equal("new@example.com", email)
	suite.Equal("old@example.com", oldEmail)
}

func (suite *TokenServiceTestSuite) TestVerifyEmailUpdateMissingOldEmail() {
	tokenString, err := suite.service.Issue(KindUpdate, "new@example.com", time.Hour, nil)
	suite.Require().NoError(err)

	_, _, err = suite.service.VerifyEmailUpdate(tokenString)
	suite.ErrorIs(err, ErrInvalidToken)
}

func (suite *TokenServiceTestSuite) TestTokenShape() {
	tokenString, err := suite.service.Issue(KindUser, "user-123", time.Hour, nil)
	suite.Require().NoError(err)
	suite.Len(strings.Split(tokenString, "."), 3)
}
