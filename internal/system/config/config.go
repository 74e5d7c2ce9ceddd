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

// Package config provides structures and functions for loading and managing server configurations.
package config

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	yaml "gopkg.in/yaml.v3"

	"github.com/brokkr-id/brokkr/internal/system/log"
)

// ServerConfig holds the server configuration details.
type ServerConfig struct {
	Hostname string `yaml:"hostname"`
	Port     int    `yaml:"port"`
	HTTPOnly bool   `yaml:"http_only"`
}

// SecurityConfig holds the security configuration details.
type SecurityConfig struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// CryptoConfig holds the cryptographic configuration details.
type CryptoConfig struct {
	Key string `yaml:"key" env:"BROKKR_CRYPTO_KEY"`
}

// DataSource holds the individual database connection details.
type DataSource struct {
	Type     string `yaml:"type"`
	Hostname string `yaml:"hostname"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	Username string `yaml:"username"`
	Password string `yaml:"password" env:"BROKKR_DB_PASSWORD"`
	SSLMode  string `yaml:"sslmode"`
	Path     string `yaml:"path"`
	Options  string `yaml:"options"`
}

// DatabaseConfig holds the different database configuration details.
type DatabaseConfig struct {
	Identity DataSource `yaml:"identity"`
}

// RedisConfig holds the redis connection details for the ephemeral state store.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Username string `yaml:"username"`
	Password string `yaml:"password" env:"BROKKR_REDIS_PASSWORD"`
	DB       int    `yaml:"db"`
}

// OAuthProvider holds the configuration details for an individual upstream provider.
type OAuthProvider struct {
	ID               string            `yaml:"id"`
	Type             string            `yaml:"type"`
	ClientID         string            `yaml:"client_id"`
	ClientSecret     string            `yaml:"client_secret"`
	Scopes           []string          `yaml:"scopes"`
	SupportsPKCE     bool              `yaml:"supports_pkce"`
	AdditionalParams map[string]string `yaml:"additional_params"`
}

// OAuthFlowConfig holds the TTLs for the ephemeral OAuth flow state.
type OAuthFlowConfig struct {
	AuthorizationRequestTTLMinutes int `yaml:"authorization_request_ttl_minutes"`
	GrantTTLMinutes                int `yaml:"grant_ttl_minutes"`
	DeviceAuthTTLMinutes           int `yaml:"device_auth_ttl_minutes"`
}

// JWTConfig holds the signed token configuration details.
type JWTConfig struct {
	Issuer                   string `yaml:"issuer"`
	UserTokenValidityHours   int    `yaml:"user_token_validity_hours"`
	VerifyTokenValidityHours int    `yaml:"verify_token_validity_hours"`
}

// OAuthConfig holds the OAuth configuration details.
type OAuthConfig struct {
	TrustedOrigins []string        `yaml:"trusted_origins"`
	Flow           OAuthFlowConfig `yaml:"flow"`
	JWT            JWTConfig       `yaml:"jwt"`
	Providers      []OAuthProvider `yaml:"providers"`
}

// UserStoreConfig holds the user store configuration details.
type UserStoreConfig struct {
	InviteOnly bool `yaml:"invite_only"`
}

// CORSConfig holds the CORS configuration details.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Config holds the complete configuration details of the server.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Security  SecurityConfig  `yaml:"security"`
	Crypto    CryptoConfig    `yaml:"crypto"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	OAuth     OAuthConfig     `yaml:"oauth"`
	UserStore UserStoreConfig `yaml:"user_store"`
	CORS      CORSConfig      `yaml:"cors"`
}

// LoadConfig loads the configurations from the specified YAML file.
// Secret-bearing fields may be overridden from the environment after the
// file is parsed.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	path = filepath.Clean(path)

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if ferr := file.Close(); ferr != nil {
			log.GetLogger().Error("Failed to close config file", log.Error(ferr))
		}
	}()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
