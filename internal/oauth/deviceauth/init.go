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

import (
	"net/http"
	"time"

	"github.com/brokkr-id/brokkr/internal/ephemeral"
	"github.com/brokkr-id/brokkr/internal/oauth/provider"
	"github.com/brokkr-id/brokkr/internal/system/config"
	"github.com/brokkr-id/brokkr/internal/system/middleware"
	"github.com/brokkr-id/brokkr/internal/token"
)

// Initialize builds the device authorization engine and registers its routes.
func Initialize(mux *http.ServeMux, store ephemeral.StoreInterface,
	resolver provider.UserResolver, tokenService token.ServiceInterface) ServiceInterface {
	cfg := config.GetBrokkrRuntime().Config.OAuth

	service := NewDeviceAuthService(store,
		time.Duration(cfg.Flow.DeviceAuthTTLMinutes)*time.Minute)
	handler := newDeviceAuthHandler(service, resolver, tokenService,
		time.Duration(cfg.JWT.UserTokenValidityHours)*time.Hour)
	registerRoutes(mux, handler)

	return service
}

// registerRoutes registers the device flow routes.
func registerRoutes(mux *http.ServeMux, handler *deviceAuthHandler) {
	opts := middleware.CORSOptions{
		AllowedMethods:   "POST",
		AllowedHeaders:   "Content-Type, Authorization",
		AllowCredentials: true,
	}

	mux.HandleFunc(middleware.WithCORS("POST /device/authorize",
		handler.HandleDeviceAuthorizeRequest, opts))
	mux.HandleFunc(middleware.WithCORS("POST /device/token",
		handler.HandleDeviceTokenRequest, opts))
	mux.HandleFunc(middleware.WithCORS("POST /device/verify",
		handler.HandleDeviceVerifyRequest, opts))
	mux.HandleFunc(middleware.WithCORS("OPTIONS /device/verify",
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}, opts))
}
