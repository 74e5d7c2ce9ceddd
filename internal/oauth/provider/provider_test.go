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

package provider

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/brokkr-id/brokkr/internal/system/config"
)

type ProviderVariantTestSuite struct {
	suite.Suite
}

func TestProviderVariantTestSuite(t *testing.T) {
	suite.Run(t, new(ProviderVariantTestSuite))
}

func (s *ProviderVariantTestSuite) deploymentConfig(providerType string) config.OAuthProvider {
	return config.OAuthProvider{
		ID:           "variant-test",
		Type:         providerType,
		ClientID:     "client-1",
		ClientSecret: "client-secret",
	}
}

func (s *ProviderVariantTestSuite) TestVariantPKCESupport() {
	testCases := []struct {
		name         string
		cfg          config.OAuthProvider
		supportsPKCE bool
	}{
		{
			name:         "github never opts in",
			cfg:          s.deploymentConfig(ProviderTypeGitHub),
			supportsPKCE: false,
		},
		{
			name:         "discord never opts in",
			cfg:          s.deploymentConfig(ProviderTypeDiscord),
			supportsPKCE: false,
		},
		{
			name:         "google always opts in",
			cfg:          s.deploymentConfig(ProviderTypeGoogle),
			supportsPKCE: true,
		},
		{
			name: "generic oauth2 follows the deployment flag",
			cfg: func() config.OAuthProvider {
				cfg := s.deploymentConfig(ProviderTypeOAuth2)
				cfg.SupportsPKCE = true
				cfg.AdditionalParams = map[string]string{
					"authorization_endpoint": "https://idp.example.com/authorize",
					"token_endpoint":         "https://idp.example.com/token",
					"userinfo_endpoint":      "https://idp.example.com/userinfo",
				}
				return cfg
			}(),
			supportsPKCE: true,
		},
		{
			name: "generic oauth2 defaults off",
			cfg: func() config.OAuthProvider {
				cfg := s.deploymentConfig(ProviderTypeOAuth2)
				cfg.AdditionalParams = map[string]string{
					"authorization_endpoint": "https://idp.example.com/authorize",
					"token_endpoint":         "https://idp.example.com/token",
					"userinfo_endpoint":      "https://idp.example.com/userinfo",
				}
				return cfg
			}(),
			supportsPKCE: false,
		},
	}

	for _, testCase := range testCases {
		s.Run(testCase.name, func() {
			p, err := NewProviderFromConfig(testCase.cfg, nil)
			s.Require().NoError(err)
			s.Equal(testCase.supportsPKCE, p.SupportsPKCE())
		})
	}
}

func (s *ProviderVariantTestSuite) TestAuthorizationParamsOmitChallengeWithoutPKCE() {
	p := NewProvider(ProviderConfig{
		ID:       "acme",
		ClientID: "client-1",
		Scopes:   []string{"email"},
		Endpoints: Endpoints{
			Authorization: "https://idp.example.com/authorize",
			Token:         "https://idp.example.com/token",
			UserInfo:      "https://idp.example.com/userinfo",
		},
	}, nil)

	params := p.BuildAuthorizationParams(AuthorizationParams{
		CallbackURL:         "https://broker.example.com/callback",
		State:               "state-1",
		CodeChallenge:       "a-challenge",
		CodeChallengeMethod: "S256",
	})
	_, hasChallenge := params[RequestParamCodeChallenge]
	s.False(hasChallenge)
	_, hasMethod := params[RequestParamCodeChallengeMethod]
	s.False(hasMethod)
}
