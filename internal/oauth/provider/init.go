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
	"time"

	"github.com/brokkr-id/brokkr/internal/account"
	"github.com/brokkr-id/brokkr/internal/ephemeral"
	"github.com/brokkr-id/brokkr/internal/system/config"
	"github.com/brokkr-id/brokkr/internal/system/middleware"
)

// Initialize builds a flow engine per configured provider, registers their
// routes, and returns the engines keyed by provider id.
func Initialize(mux *http.ServeMux, stateStore ephemeral.StoreInterface,
	accountStore account.StoreInterface, resolver UserResolver) (map[string]FlowServiceInterface, error) {
	oauthConfig := config.GetBrokkrRuntime().Config.OAuth

	flowCfg := FlowConfig{
		TrustedOrigins:          oauthConfig.TrustedOrigins,
		AuthorizationRequestTTL: time.Duration(oauthConfig.Flow.AuthorizationRequestTTLMinutes) * time.Minute,
		GrantTTL:                time.Duration(oauthConfig.Flow.GrantTTLMinutes) * time.Minute,
	}

	services := make(map[string]FlowServiceInterface, len(oauthConfig.Providers))
	for _, providerCfg := range oauthConfig.Providers {
		p, err := NewProviderFromConfig(providerCfg, nil)
		if err != nil {
			return nil, err
		}

		service := NewFlowService(p, stateStore, accountStore, flowCfg)
		services[p.ID()] = service
		registerRoutes(mux, p.ID(), newFlowHandler(service, resolver))
	}

	return services, nil
}

// registerRoutes registers the three flow routes for one provider.
func registerRoutes(mux *http.ServeMux, providerID string, handler *flowHandler) {
	opts := middleware.CORSOptions{
		AllowedMethods:   "GET, POST",
		AllowedHeaders:   "Content-Type, Authorization",
		AllowCredentials: true,
	}

	mux.HandleFunc(middleware.WithCORS("GET /oauth/"+providerID+"/authorize",
		handler.HandleAuthorizeRequest, opts))
	mux.HandleFunc(middleware.WithCORS("GET /oauth/"+providerID+"/callback",
		handler.HandleCallbackRequest, opts))
	mux.HandleFunc(middleware.WithCORS("POST /oauth/"+providerID+"/finalize-link",
		handler.HandleFinalizeLinkRequest, opts))
	mux.HandleFunc(middleware.WithCORS("OPTIONS /oauth/"+providerID+"/finalize-link",
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}, opts))
}
