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
	"net/http"

	"github.com/brokkr-id/brokkr/internal/account"
	"github.com/brokkr-id/brokkr/internal/system/utils"
	"github.com/brokkr-id/brokkr/internal/token"
)

// UserResolver resolves the authenticated local user from an inbound request.
// An unauthenticated request resolves to (nil, nil), not an error.
type UserResolver interface {
	ResolveUser(r *http.Request) (*account.User, error)
}

// tokenUserResolver resolves the caller from a bearer token of the user kind.
type tokenUserResolver struct {
	tokenService token.ServiceInterface
	accountStore account.StoreInterface
}

// NewTokenUserResolver creates a resolver that verifies a bearer session token
// and loads the user it names.
func NewTokenUserResolver(tokenService token.ServiceInterface,
	accountStore account.StoreInterface) UserResolver {
	return &tokenUserResolver{
		tokenService: tokenService,
		accountStore: accountStore,
	}
}

// ResolveUser verifies the bearer token and loads the matching user.
func (r *tokenUserResolver) ResolveUser(req *http.Request) (*account.User, error) {
	bearerToken, err := utils.ExtractBearerToken(req)
	if err != nil {
		return nil, nil
	}

	userID, err := r.tokenService.Verify(bearerToken, token.KindUser)
	if err != nil {
		return nil, nil
	}

	return r.accountStore.FindUserByID(userID)
}
