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
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/brokkr-id/brokkr/internal/account"
	"github.com/brokkr-id/brokkr/internal/ephemeral"
	"github.com/brokkr-id/brokkr/internal/oauth/pkce"
	"github.com/brokkr-id/brokkr/internal/system/log"
)

const loggerComponentName = "OAuthFlowService"

// FlowConfig holds the engine configuration resolved at construction time.
type FlowConfig struct {
	TrustedOrigins          []string
	AuthorizationRequestTTL time.Duration
	GrantTTL                time.Duration
}

// FlowServiceInterface defines the contract of the upstream login state machine
// for one provider.
type FlowServiceInterface interface {
	// Provider returns the provider instance this engine drives.
	Provider() ProviderInterface
	// Authorize validates the client request, persists the authorization
	// request state, and returns the upstream redirect URL.
	Authorize(ctx context.Context, req *AuthorizeRequest) (string, *FlowError)
	// Callback consumes the authorization request state, completes the
	// upstream exchange, resolves the local account, and returns the
	// downstream redirect URL carrying a code or link_code.
	Callback(ctx context.Context, req *CallbackRequest) (string, *FlowError)
	// FinalizeLink redeems a link code against an authenticated local user,
	// performing the deferred upstream exchange and the account mutation.
	FinalizeLink(ctx context.Context, user *account.User, linkCode, codeVerifier,
		callbackURL string) *FlowError
	// ConsumeGrant redeems a downstream authorization code at most once,
	// validating the PKCE verifier against the stored challenge.
	ConsumeGrant(ctx context.Context, code, codeVerifier string) (*AuthorizationCodeGrant, *FlowError)
}

// flowService is the default implementation of FlowServiceInterface.
type flowService struct {
	provider     ProviderInterface
	stateStore   ephemeral.StoreInterface
	accountStore account.StoreInterface
	cfg          FlowConfig
	logger       *log.Logger
}

// NewFlowService creates a flow engine for the given provider over the
// injected storage capabilities.
func NewFlowService(p ProviderInterface, stateStore ephemeral.StoreInterface,
	accountStore account.StoreInterface, cfg FlowConfig) FlowServiceInterface {
	if cfg.AuthorizationRequestTTL <= 0 {
		cfg.AuthorizationRequestTTL = 10 * time.Minute
	}
	if cfg.GrantTTL <= 0 {
		cfg.GrantTTL = 10 * time.Minute
	}

	return &flowService{
		provider:     p,
		stateStore:   stateStore,
		accountStore: accountStore,
		cfg:          cfg,
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
			log.String(log.LoggerKeyProviderID, p.ID())),
	}
}

// Provider returns the provider instance this engine drives.
func (s *flowService) Provider() ProviderInterface {
	return s.provider
}

// Authorize validates the request and redirects to the upstream provider.
// Failures before the redirect URI passes the allowlist check are bare errors;
// every later failure is delivered as a redirect to the validated URI.
func (s *flowService) Authorize(ctx context.Context, req *AuthorizeRequest) (string, *FlowError) {
	if req.RedirectURI == "" {
		s.logger.Error("No redirect URI provided")
		return "", bareError(ErrorInvalidRequest, "No redirect URI provided", 0)
	}
	if !isValidAbsoluteURL(req.RedirectURI) {
		s.logger.Error("Invalid redirect URI")
		return "", bareError(ErrorInvalidRedirectURI, "Invalid redirect URI", 0)
	}
	if !s.isTrustedRedirectURI(req.RedirectURI) {
		s.logger.Error("Redirect URI is not in the trusted origin allowlist")
		return "", bareError(ErrorInvalidRedirectURI, "Invalid redirect URI", 0)
	}

	if req.ResponseType == "" {
		s.logger.Error("No response type provided")
		return "", redirectError(req.RedirectURI, ErrorInvalidRequest, "No response type provided")
	}
	if req.ResponseType != ResponseTypeCode && req.ResponseType != ResponseTypeLinkCode {
		s.logger.Error("Unsupported response type")
		return "", redirectError(req.RedirectURI, ErrorInvalidRequest, "Unsupported response type")
	}
	if req.CodeChallenge == "" {
		s.logger.Error("No code challenge provided")
		return "", redirectError(req.RedirectURI, ErrorInvalidRequest, "No code challenge provided")
	}
	if req.CodeChallengeMethod != pkce.CodeChallengeMethodS256 {
		s.logger.Error("Unsupported code challenge method")
		return "", redirectError(req.RedirectURI, ErrorInvalidRequest, "Unsupported code challenge method")
	}

	// The broker runs its own PKCE leg against the upstream provider when
	// that provider supports it. The downstream client's challenge is never
	// forwarded: its verifier only ever arrives after the upstream exchange
	// has already happened.
	upstreamVerifier := ""
	upstreamChallenge := ""
	upstreamMethod := ""
	if s.provider.SupportsPKCE() {
		verifier, err := pkce.GenerateCodeVerifier()
		if err != nil {
			s.logger.Error("Failed to generate upstream code verifier", log.Error(err))
			return "", redirectError(req.RedirectURI, ErrorServerError, "Failed to build authorize URL")
		}
		upstreamVerifier = verifier
		upstreamChallenge = pkce.ComputeS256Challenge(verifier)
		upstreamMethod = pkce.CodeChallengeMethodS256
	}

	state := uuid.New().String()
	requestState := AuthorizationRequestState{
		RedirectURI:          req.RedirectURI,
		LoginHint:            req.LoginHint,
		ClientState:          req.ClientState,
		State:                state,
		CodeChallenge:        req.CodeChallenge,
		CodeChallengeMethod:  req.CodeChallengeMethod,
		Link:                 req.ResponseType == ResponseTypeLinkCode,
		UpstreamCodeVerifier: upstreamVerifier,
	}

	serialized, err := json.Marshal(requestState)
	if err != nil {
		s.logger.Error("Failed to serialize authorization request state", log.Error(err))
		return "", redirectError(req.RedirectURI, ErrorServerError, "Failed to persist request state")
	}
	if err := s.stateStore.Set(ctx, authorizationRequestKeyPrefix+state, string(serialized),
		s.cfg.AuthorizationRequestTTL); err != nil {
		s.logger.Error("Failed to persist authorization request state", log.Error(err))
		return "", redirectError(req.RedirectURI, ErrorServerError, "Failed to persist request state")
	}

	queryParams := s.provider.BuildAuthorizationParams(AuthorizationParams{
		State:               state,
		CallbackURL:         req.CallbackURL,
		CodeChallenge:       upstreamChallenge,
		CodeChallengeMethod: upstreamMethod,
		LoginHint:           req.LoginHint,
	})

	authorizeURL, err := appendQueryParams(s.provider.AuthorizationEndpoint(), queryParams)
	if err != nil {
		s.logger.Error("Failed to build upstream authorize URL", log.Error(err))
		return "", redirectError(req.RedirectURI, ErrorServerError, "Failed to build authorize URL")
	}

	return authorizeURL, nil
}

// Callback consumes the stored authorization request state and completes the
// flow. State lookup failures stay bare since no redirect target has been
// verified; once the stored record is loaded its redirect URI carries errors.
func (s *flowService) Callback(ctx context.Context, req *CallbackRequest) (string, *FlowError) {
	if req.State == "" {
		s.logger.Error("No state found in callback request")
		return "", bareError(ErrorServerError, "No state found in request", 0)
	}

	requestState, ferr := s.consumeAuthorizationRequest(ctx, req.State)
	if ferr != nil {
		return "", ferr
	}

	if req.Code == "" {
		s.logger.Error("No authorization code received in callback")
		return "", redirectError(requestState.RedirectURI, ErrorServerError,
			"No authorization code received in callback")
	}

	if requestState.Link {
		return s.linkFlow(ctx, requestState, req.Code)
	}

	userInfo, tokens, oerr := s.exchangeAndFetchUserInfo(req.Code, req.CallbackURL,
		requestState.UpstreamCodeVerifier)
	if oerr != nil {
		return "", redirectError(requestState.RedirectURI, oerr.code, oerr.description)
	}

	user, ferr := s.resolveAccount(requestState.RedirectURI, userInfo, tokens)
	if ferr != nil {
		return "", ferr
	}

	code := uuid.New().String()
	grant := AuthorizationCodeGrant{
		UserID:              user.ID,
		ExpiresAt:           time.Now().UTC().Add(s.cfg.GrantTTL),
		ClientID:            s.provider.ClientID(),
		RedirectURI:         requestState.RedirectURI,
		CodeChallenge:       requestState.CodeChallenge,
		CodeChallengeMethod: requestState.CodeChallengeMethod,
	}

	serialized, err := json.Marshal(grant)
	if err != nil {
		s.logger.Error("Failed to serialize authorization code grant", log.Error(err))
		return "", redirectError(requestState.RedirectURI, ErrorServerError, "Failed to issue authorization code")
	}
	if err := s.stateStore.Set(ctx, authorizationCodeKeyPrefix+code, string(serialized),
		s.cfg.GrantTTL); err != nil {
		s.logger.Error("Failed to persist authorization code grant", log.Error(err))
		return "", redirectError(requestState.RedirectURI, ErrorServerError, "Failed to issue authorization code")
	}

	redirectURL, err := appendQueryParams(requestState.RedirectURI, map[string]string{
		RequestParamCode: code,
	})
	if err != nil {
		s.logger.Error("Failed to build downstream redirect URL", log.Error(err))
		return "", redirectError(requestState.RedirectURI, ErrorServerError, "Failed to issue authorization code")
	}

	return redirectURL, nil
}

// consumeAuthorizationRequest loads the stored request state and deletes it,
// so a state value is redeemable at most once.
func (s *flowService) consumeAuthorizationRequest(ctx context.Context,
	state string) (*AuthorizationRequestState, *FlowError) {
	key := authorizationRequestKeyPrefix + state

	raw, found, err := s.stateStore.Get(ctx, key)
	if err != nil {
		s.logger.Error("Failed to read authorization request state", log.Error(err))
		return nil, bareError(ErrorServerError, "Request state not found", 0)
	}
	if !found {
		s.logger.Error("No authorization request state found for callback state")
		return nil, bareError(ErrorServerError, "Request state not found", 0)
	}

	if err := s.stateStore.Delete(ctx, key); err != nil {
		s.logger.Error("Failed to delete consumed authorization request state", log.Error(err))
		return nil, bareError(ErrorServerError, "Request state not found", 0)
	}

	var requestState AuthorizationRequestState
	if err := json.Unmarshal([]byte(raw), &requestState); err != nil {
		s.logger.Error("Invalid authorization request state record", log.Error(err))
		return nil, bareError(ErrorServerError, "Invalid request state", 0)
	}
	if requestState.RedirectURI == "" || requestState.CodeChallenge == "" ||
		requestState.CodeChallengeMethod != pkce.CodeChallengeMethodS256 {
		s.logger.Error("Malformed authorization request state record")
		return nil, bareError(ErrorServerError, "Invalid request state", 0)
	}

	return &requestState, nil
}

// linkFlow defers the upstream exchange: it stores a link code carrying the
// upstream provider code and redirects the caller. The exchange and account
// mutation happen only at finalize-link time, against a proven local session.
func (s *flowService) linkFlow(ctx context.Context, requestState *AuthorizationRequestState,
	providerCode string) (string, *FlowError) {
	linkState := LinkCodeState{
		ExpiresAt:            time.Now().UTC().Add(s.cfg.GrantTTL),
		ClientID:             s.provider.ClientID(),
		RedirectURI:          requestState.RedirectURI,
		CodeChallenge:        requestState.CodeChallenge,
		CodeChallengeMethod:  requestState.CodeChallengeMethod,
		ProviderCode:         providerCode,
		UpstreamCodeVerifier: requestState.UpstreamCodeVerifier,
	}

	serialized, err := json.Marshal(linkState)
	if err != nil {
		s.logger.Error("Failed to serialize link code state", log.Error(err))
		return "", redirectError(requestState.RedirectURI, ErrorServerError, "Failed to issue link code")
	}

	code := uuid.New().String()
	if err := s.stateStore.Set(ctx, linkRequestKeyPrefix+code, string(serialized),
		s.cfg.GrantTTL); err != nil {
		s.logger.Error("Failed to persist link code state", log.Error(err))
		return "", redirectError(requestState.RedirectURI, ErrorServerError, "Failed to issue link code")
	}

	redirectURL, err := appendQueryParams(requestState.RedirectURI, map[string]string{
		RequestParamLinkCode: code,
	})
	if err != nil {
		s.logger.Error("Failed to build link redirect URL", log.Error(err))
		return "", redirectError(requestState.RedirectURI, ErrorServerError, "Failed to issue link code")
	}

	return redirectURL, nil
}

// resolveAccount maps the upstream identity onto a local user: refresh an
// existing social account, or create the user and the social account. Accounts
// are never merged by email.
func (s *flowService) resolveAccount(redirectURI string, userInfo account.UserInfo,
	tokens account.TokenFields) (*account.User, *FlowError) {
	socialAccount, err := s.accountStore.FindSocialAccount(s.provider.ID(), userInfo.ID)
	if err != nil {
		s.logger.Error("Failed to look up social account", log.Error(err))
		return nil, redirectError(redirectURI, ErrorServerError, "Failed to resolve account")
	}

	if socialAccount != nil {
		if err := s.accountStore.UpdateSocialAccount(socialAccount.ID, tokens, userInfo); err != nil {
			s.logger.Error("Failed to update social account", log.Error(err))
			return nil, redirectError(redirectURI, ErrorServerError, "Failed to resolve account")
		}

		user, err := s.accountStore.FindUserByID(socialAccount.UserID)
		if err != nil || user == nil {
			s.logger.Error("Failed to load user owning the social account", log.Error(err))
			return nil, redirectError(redirectURI, ErrorServerError, "Failed to resolve account")
		}
		return user, nil
	}

	existing, err := s.accountStore.FindUserByEmail(userInfo.Email)
	if err != nil {
		s.logger.Error("Failed to look up user by email", log.Error(err))
		return nil, redirectError(redirectURI, ErrorServerError, "Failed to resolve account")
	}
	if existing != nil {
		return nil, redirectError(redirectURI, ErrorAccountExists,
			"An account with this email already exists.")
	}

	user, err := s.accountStore.CreateUserWithSocialAccount(userInfo, s.provider.ID(),
		userInfo.ID, tokens)
	if err != nil {
		var policyErr *account.PolicyError
		if errors.As(err, &policyErr) {
			return nil, redirectError(redirectURI, policyErr.Code, policyErr.Description)
		}
		s.logger.Error("Failed to create user with social account", log.Error(err))
		return nil, redirectError(redirectURI, ErrorServerError, "Failed to create account")
	}

	return user, nil
}

// FinalizeLink redeems a link code against an authenticated caller. All
// failures here are bare responses: the operation is a direct API call, not a
// browser redirect leg.
func (s *flowService) FinalizeLink(ctx context.Context, user *account.User,
	linkCode, codeVerifier, callbackURL string) *FlowError {
	if user == nil {
		return bareError(ErrorUnauthorized, "Not logged in", http.StatusUnauthorized)
	}
	if linkCode == "" {
		s.logger.Error("No link code found in request")
		return bareError(ErrorServerError, "No link code found in request", 0)
	}

	key := linkRequestKeyPrefix + linkCode
	raw, found, err := s.stateStore.Get(ctx, key)
	if err != nil {
		s.logger.Error("Failed to read link code state", log.Error(err))
		return bareError(ErrorServerError, "Link code not found", 0)
	}
	if !found {
		s.logger.Error("No link code state found for link code")
		return bareError(ErrorServerError, "Link code not found", 0)
	}
	if err := s.stateStore.Delete(ctx, key); err != nil {
		s.logger.Error("Failed to delete consumed link code state", log.Error(err))
		return bareError(ErrorServerError, "Link code not found", 0)
	}

	var linkState LinkCodeState
	if err := json.Unmarshal([]byte(raw), &linkState); err != nil {
		s.logger.Error("Invalid link code state record", log.Error(err))
		return bareError(ErrorServerError, "Invalid link code", 0)
	}

	if linkState.ExpiresAt.Before(time.Now().UTC()) {
		s.logger.Error("Link code has expired")
		return bareError(ErrorServerError, "Link code has expired", 0)
	}
	if linkState.CodeChallengeMethod != pkce.CodeChallengeMethodS256 {
		return bareError(ErrorServerError, "Unsupported code challenge method", 0)
	}
	if codeVerifier == "" {
		return bareError(ErrorServerError, "No code_verifier provided", 0)
	}
	if err := pkce.ValidatePKCE(linkState.CodeChallenge, linkState.CodeChallengeMethod,
		codeVerifier); err != nil {
		return bareError(ErrorServerError, "Invalid code challenge", 0)
	}

	userInfo, tokens, oerr := s.exchangeAndFetchUserInfo(linkState.ProviderCode, callbackURL,
		linkState.UpstreamCodeVerifier)
	if oerr != nil {
		return bareError(oerr.code, oerr.description, 0)
	}

	socialAccount, err := s.accountStore.FindSocialAccount(s.provider.ID(), userInfo.ID)
	if err != nil {
		s.logger.Error("Failed to look up social account", log.Error(err))
		return bareError(ErrorServerError, "Failed to link account", 0)
	}

	if socialAccount != nil {
		// An upstream identity can never be relinked to a different owner.
		if socialAccount.UserID != user.ID {
			return bareError(ErrorServerError, "Social account already exists", 0)
		}
		if err := s.accountStore.UpdateSocialAccount(socialAccount.ID, tokens, userInfo); err != nil {
			s.logger.Error("Failed to update social account", log.Error(err))
			return bareError(ErrorServerError, "Failed to link account", 0)
		}
		return nil
	}

	if _, err := s.accountStore.CreateSocialAccount(user.ID, s.provider.ID(), userInfo.ID,
		tokens, userInfo); err != nil {
		s.logger.Error("Failed to create social account", log.Error(err))
		return bareError(ErrorServerError, "Failed to link account", 0)
	}

	return nil
}

// ConsumeGrant redeems a downstream authorization code. The stored grant is
// deleted on first read so a code can never be exchanged twice, and the PKCE
// verifier must match the challenge bound at authorize time.
func (s *flowService) ConsumeGrant(ctx context.Context, code,
	codeVerifier string) (*AuthorizationCodeGrant, *FlowError) {
	if code == "" {
		return nil, bareError(ErrorInvalidGrant, "No authorization code provided", 0)
	}

	key := authorizationCodeKeyPrefix + code
	raw, found, err := s.stateStore.Get(ctx, key)
	if err != nil {
		s.logger.Error("Failed to read authorization code grant", log.Error(err))
		return nil, bareError(ErrorInvalidGrant, "Invalid authorization code", 0)
	}
	if !found {
		return nil, bareError(ErrorInvalidGrant, "Invalid authorization code", 0)
	}
	if err := s.stateStore.Delete(ctx, key); err != nil {
		s.logger.Error("Failed to delete consumed authorization code grant", log.Error(err))
		return nil, bareError(ErrorInvalidGrant, "Invalid authorization code", 0)
	}

	var grant AuthorizationCodeGrant
	if err := json.Unmarshal([]byte(raw), &grant); err != nil {
		s.logger.Error("Invalid authorization code grant record", log.Error(err))
		return nil, bareError(ErrorInvalidGrant, "Invalid authorization code", 0)
	}
	if grant.ExpiresAt.Before(time.Now().UTC()) {
		return nil, bareError(ErrorInvalidGrant, "Invalid authorization code", 0)
	}

	if err := pkce.ValidatePKCE(grant.CodeChallenge, grant.CodeChallengeMethod,
		codeVerifier); err != nil {
		return nil, bareError(ErrorInvalidGrant, "Invalid code verifier", 0)
	}

	return &grant, nil
}

// exchangeAndFetchUserInfo performs the upstream token exchange and the user
// info fetch. Upstream failure details are logged but surfaced only as a
// generic server_error, so provider diagnostics never leak to the browser.
func (s *flowService) exchangeAndFetchUserInfo(code, callbackURL,
	codeVerifier string) (account.UserInfo, account.TokenFields, *oauthError) {
	tokenResp, err := s.exchangeCode(code, callbackURL, codeVerifier)
	if err != nil || tokenResp == nil || tokenResp.IsError() || tokenResp.AccessToken == "" {
		if err != nil {
			s.logger.Error("Token exchange failed", log.Error(err))
		} else if tokenResp != nil && tokenResp.IsError() {
			s.logger.Error("Token exchange returned an error response",
				log.String("upstreamError", tokenResp.Error))
		} else {
			s.logger.Error("Token exchange returned an empty response")
		}
		return account.UserInfo{}, account.TokenFields{},
			&oauthError{code: ErrorServerError, description: "Token exchange failed"}
	}

	claims, err := s.provider.FetchUserInfo(tokenResp.AccessToken)
	if err != nil {
		s.logger.Error("Failed to fetch user info", log.Error(err))
		return account.UserInfo{}, account.TokenFields{},
			&oauthError{code: ErrorServerError, description: "Failed to fetch user info"}
	}

	email := claimString(claims, "email")
	if email == "" {
		s.logger.Error("No email found in user info")
		return account.UserInfo{}, account.TokenFields{},
			&oauthError{code: ErrorServerError, description: "No email found in user info"}
	}

	providerUserID := claimString(claims, "id", "sub")
	if providerUserID == "" {
		s.logger.Error("No provider user ID found in user info")
		return account.UserInfo{}, account.TokenFields{},
			&oauthError{code: ErrorServerError, description: "No provider user ID found in user info"}
	}

	userInfo := account.UserInfo{
		ID:         providerUserID,
		Email:      email,
		Attributes: claims,
	}
	return userInfo, tokenFieldsFromResponse(tokenResp), nil
}

// exchangeCode sends the token exchange request and parses the response
// through the provider hooks.
func (s *flowService) exchangeCode(code, callbackURL, codeVerifier string) (*TokenResponse, error) {
	if codeVerifier == "" {
		codeVerifier = s.provider.CodeVerifier()
	}
	params := s.provider.BuildTokenExchangeParams(code, callbackURL, codeVerifier)

	resp, err := s.provider.SendTokenRequest(params)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.logger.Error("Failed to close token response body", log.Error(closeErr))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		s.logger.Error("Token endpoint returned an error response",
			log.Int("statusCode", resp.StatusCode), log.String("response", string(body)))
		return nil, errors.New("token endpoint returned a non-2xx response")
	}

	return s.provider.ParseTokenResponse(resp)
}
