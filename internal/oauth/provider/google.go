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
	"github.com/brokkr-id/brokkr/internal/system/config"
	httpservice "github.com/brokkr-id/brokkr/internal/system/http"
)

// Google OAuth2 endpoints.
const (
	googleAuthorizationEndpoint = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenEndpoint         = "https://oauth2.googleapis.com/token"
	googleUserInfoEndpoint      = "https://openidconnect.googleapis.com/v1/userinfo"
)

var googleDefaultScopes = []string{"openid", "email", "profile"}

// newGoogleProvider creates the Google variant. Google's userinfo endpoint
// returns the subject under "sub", which the engine's claim normalization
// already handles, so this is a pure configuration bundle. Google's endpoints
// accept PKCE, so the variant always opts in.
func newGoogleProvider(cfg config.OAuthProvider,
	httpClient httpservice.HTTPClientInterface) ProviderInterface {
	providerCfg := providerConfigFromDeployment(cfg, Endpoints{
		Authorization: googleAuthorizationEndpoint,
		Token:         googleTokenEndpoint,
		UserInfo:      googleUserInfoEndpoint,
	}, googleDefaultScopes)
	providerCfg.SupportsPKCE = true

	return newBaseProvider(providerCfg, httpClient)
}
