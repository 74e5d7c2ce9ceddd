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

package deviceauth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/brokkr-id/brokkr/internal/ephemeral"
)

type DeviceAuthServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	store   *ephemeral.MemoryStore
	service ServiceInterface
}

func TestDeviceAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DeviceAuthServiceTestSuite))
}

func (s *DeviceAuthServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = ephemeral.NewMemoryStore()
	s.service = NewDeviceAuthService(s.store, 15*time.Minute)
}

func (s *DeviceAuthServiceTestSuite) TestBeginIssuesDistinctCodePair() {
	result, svcErr := s.service.Begin(s.ctx, "cli", "1.2.3.4")
	s.Require().Nil(svcErr)

	s.NotEmpty(result.DeviceCode)
	s.NotEmpty(result.UserCode)
	s.NotEqual(result.DeviceCode, result.UserCode)
	s.Equal(int((15 * time.Minute).Seconds()), result.ExpiresIn)

	// User codes are short, separated, and drawn from the unambiguous charset.
	s.Len(result.UserCode, userCodeLength+1)
	s.Contains(result.UserCode, "-")
	for _, r := range strings.ReplaceAll(result.UserCode, "-", "") {
		s.Contains(userCodeCharset, string(r))
	}
}

func (s *DeviceAuthServiceTestSuite) TestBeginRequiresClientID() {
	result, svcErr := s.service.Begin(s.ctx, "  ", "1.2.3.4")
	s.Nil(result)
	s.Require().NotNil(svcErr)
	s.Equal(ErrorEmptyClientID.Code, svcErr.Code)
}

func (s *DeviceAuthServiceTestSuite) TestLookupsResolveSameRecord() {
	result, svcErr := s.service.Begin(s.ctx, "cli", "1.2.3.4")
	s.Require().Nil(svcErr)

	byDevice, svcErr := s.service.LookupByDeviceCode(s.ctx, result.DeviceCode)
	s.Require().Nil(svcErr)
	s.Require().NotNil(byDevice)

	byUser, svcErr := s.service.LookupByUserCode(s.ctx, result.UserCode)
	s.Require().Nil(svcErr)
	s.Require().NotNil(byUser)

	s.Equal(byDevice, byUser)
	s.Equal("cli", byDevice.ClientID)
	s.Equal("1.2.3.4", byDevice.RequestIP)
	s.Equal(StatusPending, byDevice.Status)
	s.Empty(byDevice.AccessToken)
}

func (s *DeviceAuthServiceTestSuite) TestLookupUnknownCodesReturnNil() {
	record, svcErr := s.service.LookupByDeviceCode(s.ctx, "unknown")
	s.Nil(svcErr)
	s.Nil(record)

	record, svcErr = s.service.LookupByUserCode(s.ctx, "XXXX-XXXX")
	s.Nil(svcErr)
	s.Nil(record)
}

func (s *DeviceAuthServiceTestSuite) TestAuthorizeTransitionsBothLookups() {
	result, svcErr := s.service.Begin(s.ctx, "cli", "1.2.3.4")
	s.Require().Nil(svcErr)

	s.Require().Nil(s.service.Authorize(s.ctx, result.DeviceCode, "tok-123"))

	byDevice, svcErr := s.service.LookupByDeviceCode(s.ctx, result.DeviceCode)
	s.Require().Nil(svcErr)
	s.Equal(StatusAuthorized, byDevice.Status)
	s.Equal("tok-123", byDevice.AccessToken)

	byUser, svcErr := s.service.LookupByUserCode(s.ctx, result.UserCode)
	s.Require().Nil(svcErr)
	s.Equal(StatusAuthorized, byUser.Status)
	s.Equal("tok-123", byUser.AccessToken)
}

func (s *DeviceAuthServiceTestSuite) TestAuthorizeTwiceRejected() {
	result, svcErr := s.service.Begin(s.ctx, "cli", "1.2.3.4")
	s.Require().Nil(svcErr)

	s.Require().Nil(s.service.Authorize(s.ctx, result.DeviceCode, "tok-first"))

	secondErr := s.service.Authorize(s.ctx, result.DeviceCode, "tok-second")
	s.Require().NotNil(secondErr)
	s.Equal(ErrorAlreadyAuthorized.Code, secondErr.Code)

	// The first token sticks.
	record, svcErr := s.service.LookupByDeviceCode(s.ctx, result.DeviceCode)
	s.Require().Nil(svcErr)
	s.Equal("tok-first", record.AccessToken)
}

func (s *DeviceAuthServiceTestSuite) TestAuthorizeUnknownCode() {
	svcErr := s.service.Authorize(s.ctx, "unknown", "tok-123")
	s.Require().NotNil(svcErr)
	s.Equal(ErrorRecordNotFound.Code, svcErr.Code)
}

func (s *DeviceAuthServiceTestSuite) TestAuthorizeRequiresAccessToken() {
	result, svcErr := s.service.Begin(s.ctx, "cli", "1.2.3.4")
	s.Require().Nil(svcErr)

	svcErr = s.service.Authorize(s.ctx, result.DeviceCode, "")
	s.Require().NotNil(svcErr)
	s.Equal(ErrorEmptyAccessToken.Code, svcErr.Code)
}

func (s *DeviceAuthServiceTestSuite) TestAuthorizeByUserCode() {
	result, svcErr := s.service.Begin(s.ctx, "cli", "1.2.3.4")
	s.Require().Nil(svcErr)

	s.Require().Nil(s.service.AuthorizeByUserCode(s.ctx, result.UserCode, "tok-123"))

	record, svcErr := s.service.LookupByDeviceCode(s.ctx, result.DeviceCode)
	s.Require().Nil(svcErr)
	s.Equal(StatusAuthorized, record.Status)
	s.Equal("tok-123", record.AccessToken)
}

func (s *DeviceAuthServiceTestSuite) TestAuthorizeByUserCodeIsCaseInsensitive() {
	result, svcErr := s.service.Begin(s.ctx, "cli", "1.2.3.4")
	s.Require().Nil(svcErr)

	lowered := " " + strings.ToLower(result.UserCode) + " "
	s.Require().Nil(s.service.AuthorizeByUserCode(s.ctx, lowered, "tok-123"))
}

func (s *DeviceAuthServiceTestSuite) TestAuthorizeByUnknownUserCode() {
	svcErr := s.service.AuthorizeByUserCode(s.ctx, "XXXX-XXXX", "tok-123")
	s.Require().NotNil(svcErr)
	s.Equal(ErrorRecordNotFound.Code, svcErr.Code)
}

func (s *DeviceAuthServiceTestSuite) TestExpiredRecordBehavesLikeMissing() {
	service := NewDeviceAuthService(s.store, time.Millisecond)
	result, svcErr := service.Begin(s.ctx, "cli", "1.2.3.4")
	s.Require().Nil(svcErr)

	time.Sleep(5 * time.Millisecond)

	record, svcErr := service.LookupByDeviceCode(s.ctx, result.DeviceCode)
	s.Nil(svcErr)
	s.Nil(record)

	authErr := service.Authorize(s.ctx, result.DeviceCode, "tok-123")
	s.Require().NotNil(authErr)
	s.Equal(ErrorRecordNotFound.Code, authErr.Code)
}
