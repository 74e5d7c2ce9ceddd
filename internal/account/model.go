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

// Package account provides user and social account persistence for the broker.
package account

import "time"

// User represents a local user account.
type User struct {
	ID         string
	Email      string
	Attributes map[string]interface{}
}

// SocialAccount represents one upstream identity bound to one local user.
// A (provider, provider_user_id) pair is globally unique.
type SocialAccount struct {
	ID                    string
	UserID                string
	Provider              string
	ProviderUserID        string
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  *time.Time
	RefreshTokenExpiresAt *time.Time
	Scope                 string
}

// UserInfo carries the identity attributes returned by an upstream provider.
type UserInfo struct {
	ID         string
	Email      string
	Attributes map[string]interface{}
}

// TokenFields carries the upstream token triple stored on a social account.
type TokenFields struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  *time.Time
	RefreshTokenExpiresAt *time.Time
	Scope                 string
}
