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

// Package provider implements the OAuth2 upstream login state machine:
// authorize, provider callback, downstream code issuance, and the
// account-linking variant. Each upstream provider is a configuration bundle
// with overridable hooks over one shared flow engine.
package provider

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/brokkr-id/brokkr/internal/system/config"
	sysconst "github.com/brokkr-id/brokkr/internal/system/constants"
	httpservice "github.com/brokkr-id/brokkr/internal/system/http"
)

// Endpoints holds the upstream provider endpoints used by the flow engine.
type Endpoints struct {
	Authorization string
	Token         string
	UserInfo      string
}

// ProviderConfig bundles everything a provider instance is configured with.
type ProviderConfig struct {
	ID               string
	ClientID         string
	ClientSecret     string
	Scopes           []string
	SupportsPKCE     bool
	Endpoints        Endpoints
	AdditionalParams map[string]string
}

// AuthorizationParams carries the inputs of the authorization URL construction.
type AuthorizationParams struct {
	State               string
	CallbackURL         string
	CodeChallenge       string
	CodeChallengeMethod string
	LoginHint           string
}

// ProviderInterface defines the per-provider hooks of the flow engine. The
// engine always calls hooks through this interface so variants can override
// individual steps while inheriting the rest from baseProvider.
type ProviderInterface interface {
	// ID returns the stable provider identifier used in routes and
	// social account records.
	ID() string
	// ClientID returns the configured downstream-facing client identifier.
	ClientID() string
	// AuthorizationEndpoint returns the upstream authorization endpoint URL.
	AuthorizationEndpoint() string
	// SupportsPKCE reports whether the upstream authorization and token
	// endpoints accept a PKCE challenge/verifier pair.
	SupportsPKCE() bool
	// BuildAuthorizationParams builds the query parameters for the redirect
	// to the upstream authorization endpoint.
	BuildAuthorizationParams(p AuthorizationParams) map[string]string
	// CodeVerifier returns the PKCE verifier for the upstream token
	// exchange, or empty when the provider flow carries none.
	CodeVerifier() string
	// BuildTokenExchangeParams builds the form parameters for the upstream
	// token exchange request.
	BuildTokenExchangeParams(code, redirectURI, codeVerifier string) map[string]string
	// SendTokenRequest posts the token exchange form to the upstream token
	// endpoint.
	SendTokenRequest(params map[string]string) (*http.Response, error)
	// ParseTokenResponse decodes the upstream token endpoint response body.
	ParseTokenResponse(resp *http.Response) (*TokenResponse, error)
	// FetchUserInfo retrieves the upstream user info claims with the given
	// access token.
	FetchUserInfo(accessToken string) (map[string]interface{}, error)
}

// baseProvider is the default ProviderInterface implementation. Variants embed
// it and override individual hooks.
type baseProvider struct {
	config     ProviderConfig
	httpClient httpservice.HTTPClientInterface
}

// NewProvider creates a generic OAuth2 provider from the given configuration.
func NewProvider(cfg ProviderConfig, httpClient httpservice.HTTPClientInterface) ProviderInterface {
	return newBaseProvider(cfg, httpClient)
}

func newBaseProvider(cfg ProviderConfig, httpClient httpservice.HTTPClientInterface) *baseProvider {
	if httpClient == nil {
		httpClient = httpservice.GetHTTPClient()
	}
	return &baseProvider{
		config:     cfg,
		httpClient: httpClient,
	}
}

// NewProviderFromConfig creates a provider instance from the deployment
// configuration, selecting the variant by the configured type.
func NewProviderFromConfig(cfg config.OAuthProvider,
	httpClient httpservice.HTTPClientInterface) (ProviderInterface, error) {
	switch cfg.Type {
	case ProviderTypeGitHub:
		return newGithubProvider(cfg, httpClient), nil
	case ProviderTypeDiscord:
		return newDiscordProvider(cfg, httpClient), nil
	case ProviderTypeGoogle:
		return newGoogleProvider(cfg, httpClient), nil
	case ProviderTypeOAuth2:
		providerCfg := providerConfigFromDeployment(cfg, Endpoints{
			Authorization: cfg.AdditionalParams["authorization_endpoint"],
			Token:         cfg.AdditionalParams["token_endpoint"],
			UserInfo:      cfg.AdditionalParams["userinfo_endpoint"],
		}, nil)
		if providerCfg.Endpoints.Authorization == "" || providerCfg.Endpoints.Token == "" ||
			providerCfg.Endpoints.UserInfo == "" {
			return nil, fmt.Errorf("provider %s: missing endpoint configuration", cfg.ID)
		}
		return NewProvider(providerCfg, httpClient), nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", cfg.Type)
	}
}

// providerConfigFromDeployment merges the deployment configuration of a
// provider with the variant's endpoint and scope defaults.
func providerConfigFromDeployment(cfg config.OAuthProvider, endpoints Endpoints,
	defaultScopes []string) ProviderConfig {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = defaultScopes
	}

	additionalParams := make(map[string]string, len(cfg.AdditionalParams))
	for key, value := range cfg.AdditionalParams {
		switch key {
		case "authorization_endpoint", "token_endpoint", "userinfo_endpoint":
			continue
		}
		additionalParams[key] = value
	}

	return ProviderConfig{
		ID:               cfg.ID,
		ClientID:         cfg.ClientID,
		ClientSecret:     cfg.ClientSecret,
		Scopes:           scopes,
		SupportsPKCE:     cfg.SupportsPKCE,
		Endpoints:        endpoints,
		AdditionalParams: additionalParams,
	}
}

// ID returns the stable provider identifier.
func (p *baseProvider) ID() string {
	return p.config.ID
}

// ClientID returns the configured client identifier.
func (p *baseProvider) ClientID() string {
	return p.config.ClientID
}

// AuthorizationEndpoint returns the upstream authorization endpoint URL.
func (p *baseProvider) AuthorizationEndpoint() string {
	return p.config.Endpoints.Authorization
}

// SupportsPKCE reports whether the upstream endpoints accept PKCE.
func (p *baseProvider) SupportsPKCE() bool {
	return p.config.SupportsPKCE
}

// BuildAuthorizationParams builds the default upstream authorization parameters.
func (p *baseProvider) BuildAuthorizationParams(params AuthorizationParams) map[string]string {
	queryParams := map[string]string{
		RequestParamClientID:     p.config.ClientID,
		RequestParamScope:        strings.Join(p.config.Scopes, " "),
		RequestParamRedirectURI:  params.CallbackURL,
		RequestParamState:        params.State,
		RequestParamResponseType: ResponseTypeCode,
	}

	if p.config.SupportsPKCE && params.CodeChallenge != "" {
		queryParams[RequestParamCodeChallenge] = params.CodeChallenge
		queryParams[RequestParamCodeChallengeMethod] = params.CodeChallengeMethod
	}

	if params.LoginHint != "" {
		queryParams[RequestParamLoginHint] = params.LoginHint
	}

	for key, value := range p.config.AdditionalParams {
		if key == "" || value == "" {
			continue
		}
		queryParams[key] = value
	}

	return queryParams
}

// CodeVerifier returns the PKCE verifier for the upstream exchange. The
// default flow carries none.
func (p *baseProvider) CodeVerifier() string {
	return ""
}

// BuildTokenExchangeParams builds the default token exchange form parameters.
func (p *baseProvider) BuildTokenExchangeParams(code, redirectURI, codeVerifier string) map[string]string {
	params := map[string]string{
		RequestParamGrantType:    GrantTypeAuthorizationCode,
		RequestParamCode:         code,
		RequestParamRedirectURI:  redirectURI,
		RequestParamClientID:     p.config.ClientID,
		RequestParamClientSecret: p.config.ClientSecret,
	}

	if codeVerifier != "" {
		params[RequestParamCodeVerifier] = codeVerifier
	}

	return params
}

// SendTokenRequest posts the token exchange form to the token endpoint.
func (p *baseProvider) SendTokenRequest(params map[string]string) (*http.Response, error) {
	form := url.Values{}
	for key, value := range params {
		form.Set(key, value)
	}

	req, err := http.NewRequest(http.MethodPost, p.config.Endpoints.Token,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set(sysconst.ContentTypeHeaderName, sysconst.ContentTypeFormURLEncoded)
	req.Header.Set(sysconst.AcceptHeaderName, sysconst.ContentTypeJSON)

	return p.httpClient.Do(req)
}

// ParseTokenResponse decodes a JSON token endpoint response body.
func (p *baseProvider) ParseTokenResponse(resp *http.Response) (*TokenResponse, error) {
	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, err
	}
	return &tokenResp, nil
}

// FetchUserInfo retrieves the upstream user info claims.
func (p *baseProvider) FetchUserInfo(accessToken string) (map[string]interface{}, error) {
	req, err := http.NewRequest(http.MethodGet, p.config.Endpoints.UserInfo, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(sysconst.AuthorizationHeaderName, sysconst.TokenTypeBearer+" "+accessToken)
	req.Header.Set(sysconst.AcceptHeaderName, sysconst.ContentTypeJSON)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("userinfo endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	decoder := json.NewDecoder(resp.Body)
	// Numeric subject ids (e.g. GitHub) must not go through float64.
	decoder.UseNumber()

	var userInfo map[string]interface{}
	if err := decoder.Decode(&userInfo); err != nil {
		return nil, err
	}
	return userInfo, nil
}
