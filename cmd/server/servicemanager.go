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

package main

import (
	"context"
	"net/http"

	"github.com/brokkr-id/brokkr/internal/account"
	"github.com/brokkr-id/brokkr/internal/ephemeral"
	"github.com/brokkr-id/brokkr/internal/oauth/deviceauth"
	"github.com/brokkr-id/brokkr/internal/oauth/provider"
	"github.com/brokkr-id/brokkr/internal/system/config"
	dbprovider "github.com/brokkr-id/brokkr/internal/system/database/provider"
	"github.com/brokkr-id/brokkr/internal/system/log"
	"github.com/brokkr-id/brokkr/internal/token"
)

// registerServices wires the stores and engines and registers all the
// services with the provided HTTP multiplexer.
func registerServices(mux *http.ServeMux) error {
	cfg := config.GetBrokkrRuntime().Config

	stateStore, err := buildStateStore(cfg)
	if err != nil {
		return err
	}

	accountStore := account.NewSQLStore(dbprovider.GetDBProvider(), account.SQLStoreConfig{
		InviteOnly: cfg.UserStore.InviteOnly,
	})

	tokenService := token.NewService(cfg.Crypto.Key, cfg.OAuth.JWT.Issuer)
	resolver := provider.NewTokenUserResolver(tokenService, accountStore)

	// Register the health service.
	registerHealthService(mux)

	// Register the upstream login flow services, one engine per provider.
	if _, err := provider.Initialize(mux, stateStore, accountStore, resolver); err != nil {
		return err
	}

	// Register the device authorization service.
	deviceauth.Initialize(mux, stateStore, resolver, tokenService)

	return nil
}

// buildStateStore selects the ephemeral state store backend from the
// deployment configuration.
func buildStateStore(cfg config.Config) (ephemeral.StoreInterface, error) {
	if cfg.Redis.Enabled {
		return ephemeral.NewRedisStore(context.Background(), cfg.Redis)
	}

	log.GetLogger().Info("Redis is not enabled, using the in-memory state store")
	return ephemeral.NewMemoryStore(), nil
}

// registerHealthService registers the liveness endpoint.
func registerHealthService(mux *http.ServeMux) {
	mux.HandleFunc("GET /health/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}
