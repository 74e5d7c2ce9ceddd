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

// OAuth2 request parameter names.
const (
	RequestParamClientID            = "client_id"
	RequestParamClientSecret        = "client_secret"
	RequestParamRedirectURI         = "redirect_uri"
	RequestParamResponseType        = "response_type"
	RequestParamScope               = "scope"
	RequestParamState               = "state"
	RequestParamCode                = "code"
	RequestParamGrantType           = "grant_type"
	RequestParamLoginHint           = "login_hint"
	RequestParamCodeChallenge       = "code_challenge"
	RequestParamCodeChallengeMethod = "code_challenge_method"
	RequestParamCodeVerifier        = "code_verifier"
	RequestParamError               = "error"
	RequestParamErrorDescription    = "error_description"
	RequestParamLinkCode            = "link_code"
)

// Supported response types for the authorize operation.
const (
	ResponseTypeCode     = "code"
	ResponseTypeLinkCode = "link_code"
)

// GrantTypeAuthorizationCode is the grant type used for the upstream token exchange.
const GrantTypeAuthorizationCode = "authorization_code"

// OAuth2 wire error codes surfaced to the relying application.
const (
	ErrorInvalidRequest     = "invalid_request"
	ErrorInvalidRedirectURI = "invalid_redirect_uri"
	ErrorInvalidGrant       = "invalid_grant"
	ErrorServerError        = "server_error"
	ErrorAccountExists      = "account_exists"
	ErrorUnauthorized       = "unauthorized"
)

// Ephemeral store key prefixes for the flow state records.
const (
	authorizationRequestKeyPrefix = "oauth:authorization_request:"
	authorizationCodeKeyPrefix    = "oauth:code:"
	linkRequestKeyPrefix          = "oauth:link_request:"
)

// Provider type identifiers accepted in the deployment configuration.
const (
	ProviderTypeGitHub  = "github"
	ProviderTypeDiscord = "discord"
	ProviderTypeGoogle  = "google"
	ProviderTypeOAuth2  = "oauth2"
)
