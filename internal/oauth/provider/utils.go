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
	"time"

	"github.com/brokkr-id/brokkr/internal/account"
	sysutils "github.com/brokkr-id/brokkr/internal/system/utils"
)

// isValidAbsoluteURL reports whether the given string is an absolute http(s) URL.
func isValidAbsoluteURL(urlStr string) bool {
	return sysutils.IsAbsoluteURL(urlStr)
}

// isTrustedRedirectURI checks the redirect URI origin against the allowlist.
func (s *flowService) isTrustedRedirectURI(redirectURI string) bool {
	return sysutils.GetAllowedOrigin(s.cfg.TrustedOrigins, redirectURI) != ""
}

// appendQueryParams appends the given query parameters to the URL string.
func appendQueryParams(urlStr string, params map[string]string) (string, error) {
	return sysutils.AppendQueryParams(urlStr, params)
}

// claimString extracts the first non-empty claim among the given keys as a
// string. Numeric subject identifiers are normalized to their decimal form.
func claimString(claims map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		value, ok := claims[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			if v != "" {
				return v
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}

// tokenFieldsFromResponse converts an upstream token response into the fields
// stored on a social account.
func tokenFieldsFromResponse(tokenResp *TokenResponse) account.TokenFields {
	fields := account.TokenFields{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		Scope:        tokenResp.Scope,
	}

	now := time.Now().UTC()
	if tokenResp.ExpiresIn > 0 {
		expiresAt := now.Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
		fields.AccessTokenExpiresAt = &expiresAt
	}
	if tokenResp.RefreshExpiresIn > 0 {
		refreshExpiresAt := now.Add(time.Duration(tokenResp.RefreshExpiresIn) * time.Second)
		fields.RefreshTokenExpiresAt = &refreshExpiresAt
	}

	return fields
}
