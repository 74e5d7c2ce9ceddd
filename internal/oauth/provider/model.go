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

import "time"

// AuthorizationRequestState is the flow state persisted when a client begins
// an upstream login, keyed by the generated state value. It is consumed
// exactly once at callback time.
type AuthorizationRequestState struct {
	RedirectURI         string `json:"redirect_uri"`
	LoginHint           string `json:"login_hint,omitempty"`
	ClientState         string `json:"client_state,omitempty"`
	State               string `json:"state"`
	CodeChallenge       string `json:"code_challenge"`
	CodeChallengeMethod string `json:"code_challenge_method"`
	Link                bool   `json:"link"`
	// UpstreamCodeVerifier is this broker's own PKCE verifier for the
	// upstream exchange, set only for providers that support PKCE. It is
	// unrelated to the downstream client's challenge above.
	UpstreamCodeVerifier string `json:"upstream_code_verifier,omitempty"`
}

// AuthorizationCodeGrant is minted after a successful upstream login and
// stored under a fresh opaque code. The code-exchange endpoint redeems it
// at most once after validating the PKCE verifier.
type AuthorizationCodeGrant struct {
	UserID              string    `json:"user_id"`
	ExpiresAt           time.Time `json:"expires_at"`
	ClientID            string    `json:"client_id"`
	RedirectURI         string    `json:"redirect_uri"`
	CodeChallenge       string    `json:"code_challenge"`
	CodeChallengeMethod string    `json:"code_challenge_method"`
}

// LinkCodeState carries the deferred upstream authorization code for the
// account-linking flow. The upstream exchange happens only at finalize-link
// time, against an authenticated local session.
type LinkCodeState struct {
	ExpiresAt           time.Time `json:"expires_at"`
	ClientID            string    `json:"client_id"`
	RedirectURI         string    `json:"redirect_uri"`
	CodeChallenge       string    `json:"code_challenge"`
	CodeChallengeMethod string    `json:"code_challenge_method"`
	ProviderCode        string    `json:"provider_code"`
	// UpstreamCodeVerifier carries the broker's upstream PKCE verifier from
	// the authorization request into the deferred finalize-link exchange.
	UpstreamCodeVerifier string `json:"upstream_code_verifier,omitempty"`
}

// TokenResponse represents the upstream token endpoint response body. Error
// responses share the same shape with the error fields populated.
type TokenResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	Scope            string `json:"scope"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresIn        int    `json:"expires_in"`
	RefreshExpiresIn int    `json:"refresh_expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// IsError reports whether the response carries an error body.
func (t *TokenResponse) IsError() bool {
	return t.Error != ""
}

// AuthorizeRequest carries the validated-or-not inputs of the authorize operation.
type AuthorizeRequest struct {
	RedirectURI         string
	ResponseType        string
	CodeChallenge       string
	CodeChallengeMethod string
	LoginHint           string
	ClientState         string
	// CallbackURL is this broker's own callback endpoint for the provider,
	// derived from the inbound request by the HTTP layer.
	CallbackURL string
}

// CallbackRequest carries the inputs of the callback operation.
type CallbackRequest struct {
	State       string
	Code        string
	CallbackURL string
}

// FlowError describes a terminal flow failure and how it must be delivered.
// When RedirectURI is set the error travels as error/error_description query
// parameters on a redirect to that URI; otherwise it is a bare response,
// since no redirect target has been validated yet.
type FlowError struct {
	Error            string
	ErrorDescription string
	RedirectURI      string
	StatusCode       int
}
