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

package utils

import (
	"net/url"
	"strings"
)

// GetAllowedOrigin checks if the redirect URI is allowed and returns the allowed origin.
func GetAllowedOrigin(allowedOrigins []string, redirectURI string) string {
	if len(allowedOrigins) == 0 {
		return ""
	}

	parsedURI, err := url.Parse(redirectURI)
	if err != nil {
		return ""
	}
	origin := parsedURI.Scheme + "://" + parsedURI.Host

	for _, allowedOrigin := range allowedOrigins {
		if strings.EqualFold(strings.TrimSuffix(allowedOrigin, "/"), origin) {
			return allowedOrigin
		}
	}

	return ""
}

// SanitizeString trims whitespace and strips control characters from the given string.
func SanitizeString(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}
