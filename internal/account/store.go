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

package account

// StoreInterface defines the capability interface for account persistence.
// Lookup operations return (nil, nil) when no matching record exists.
type StoreInterface interface {
	FindUserByEmail(email string) (*User, error)
	FindUserByID(id string) (*User, error)
	FindSocialAccount(provider, providerUserID string) (*SocialAccount, error)
	// CreateUser creates a new local user from upstream user info. It may
	// fail with a *PolicyError when account creation is restricted.
	CreateUser(userInfo UserInfo) (*User, error)
	// CreateUserWithSocialAccount creates a new local user and its first
	// social account atomically: either both records exist afterwards or
	// neither does. It may fail with a *PolicyError like CreateUser.
	CreateUserWithSocialAccount(userInfo UserInfo, provider, providerUserID string,
		tokens TokenFields) (*User, error)
	CreateSocialAccount(userID, provider, providerUserID string,
		tokens TokenFields, userInfo UserInfo) (*SocialAccount, error)
	UpdateSocialAccount(id string, tokens TokenFields, userInfo UserInfo) error
}

// PolicyError is returned when the account store rejects an operation for a
// policy reason the end user should see, such as an invite-only deployment.
type PolicyError struct {
	Code        string
	Description string
}

// Error returns the policy error code.
func (e *PolicyError) Error() string {
	return e.Code
}
