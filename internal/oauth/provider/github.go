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
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/brokkr-id/brokkr/internal/system/config"
	sysconst "github.com/brokkr-id/brokkr/internal/system/constants"
	httpservice "github.com/brokkr-id/brokkr/internal/system/http"
)

// GitHub OAuth2 endpoints.
const (
	githubAuthorizationEndpoint = "https://github.com/login/oauth/authorize"
	githubTokenEndpoint         = "https://github.com/login/oauth/access_token"
	githubUserInfoEndpoint      = "https://api.github.com/user"
)

var githubDefaultScopes = []string{"read:user", "user:email"}

// githubProvider adapts the GitHub OAuth application flow. GitHub's token
// endpoint answers form-encoded unless JSON is negotiated, so the response
// parser accepts both shapes.
type githubProvider struct {
	*baseProvider
}

func newGithubProvider(cfg config.OAuthProvider,
	httpClient httpservice.HTTPClientInterface) ProviderInterface {
	providerCfg := providerConfigFromDeployment(cfg, Endpoints{
		Authorization: githubAuthorizationEndpoint,
		Token:         githubTokenEndpoint,
		UserInfo:      githubUserInfoEndpoint,
	}, githubDefaultScopes)

	return &githubProvider{
		baseProvider: newBaseProvider(providerCfg, httpClient),
	}
}

// ParseTokenResponse decodes the token endpoint response, handling both the
// JSON and form-encoded bodies GitHub may return.
func (p *githubProvider) ParseTokenResponse(resp *http.Response) (*TokenResponse, error) {
	contentType := resp.Header.Get(sysconst.ContentTypeHeaderName)
	if strings.Contains(contentType, sysconst.ContentTypeJSON) {
		var tokenResp TokenResponse
		if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
			return nil, err
		}
		return &tokenResp, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, err
	}
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, err
	}

	expiresIn, _ := strconv.Atoi(values.Get("expires_in"))
	refreshExpiresIn, _ := strconv.Atoi(values.Get("refresh_token_expires_in"))

	return &TokenResponse{
		AccessToken:      values.Get("access_token"),
		TokenType:        values.Get("token_type"),
		Scope:            values.Get("scope"),
		RefreshToken:     values.Get("refresh_token"),
		ExpiresIn:        expiresIn,
		RefreshExpiresIn: refreshExpiresIn,
		Error:            values.Get("error"),
		ErrorDescription: values.Get("error_description"),
	}, nil
}
