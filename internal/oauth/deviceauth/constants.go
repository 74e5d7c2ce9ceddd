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

// Ephemeral store key prefixes for device authorization state.
const (
	deviceCodeKeyPrefix = "auth:device:"
	userCodeKeyPrefix   = "auth:user-code:"
)

// Wire error codes of the polling protocol (RFC 8628 naming).
const (
	ErrorAuthorizationPending = "authorization_pending"
	ErrorExpiredToken         = "expired_token"
	ErrorInvalidRequest       = "invalid_request"
	ErrorUnauthorized         = "unauthorized"
)

// pollInterval is the minimum polling interval in seconds advertised to clients.
const pollInterval = 5

// userCodeLength is the number of characters in a generated user code,
// excluding the separator.
const userCodeLength = 8

// userCodeCharset deliberately omits vowels and ambiguous characters so the
// human-typed code stays short and unambiguous.
const userCodeCharset = "BCDFGHJKLMNPQRSTVWXZ0123456789"
