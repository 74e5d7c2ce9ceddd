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
	"github.com/brokkr-id/brokkr/internal/system/config"
	httpservice "github.com/brokkr-id/brokkr/internal/system/http"
)

// Discord OAuth2 endpoints.
const (
	discordAuthorizationEndpoint = "https://discord.com/oauth2/authorize"
	discordTokenEndpoint         = "https://discord.com/api/oauth2/token"
	discordUserInfoEndpoint      = "https://discord.com/api/users/@me"
)

var discordDefaultScopes = []string{"identify", "email"}

// newDiscordProvider creates the Discord variant. Discord follows the generic
// OAuth2 contract end to end, so this is a pure configuration bundle.
func newDiscordProvider(cfg config.OAuthProvider,
	httpClient httpservice.HTTPClientInterface) ProviderInterface {
	providerCfg := providerConfigFromDeployment(cfg, Endpoints{
		Authorization: discordAuthorizationEndpoint,
		Token:         discordTokenEndpoint,
		UserInfo:      discordUserInfoEndpoint,
	}, discordDefaultScopes)

	return newBaseProvider(providerCfg, httpClient)
}
