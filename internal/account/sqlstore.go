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

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brokkr-id/brokkr/internal/system/database/model"
	"github.com/brokkr-id/brokkr/internal/system/database/provider"
	"github.com/brokkr-id/brokkr/internal/system/log"
)

const loggerComponentName = "AccountStore"

// SQLStoreConfig holds the construction options for the SQL account store.
type SQLStoreConfig struct {
	// InviteOnly rejects user creation through the social login flow.
	InviteOnly bool
}

// SQLStore implements StoreInterface on the identity database.
type SQLStore struct {
	dbProvider provider.DBProviderInterface
	config     SQLStoreConfig
}

// NewSQLStore creates a new SQL-backed account store.
func NewSQLStore(dbProvider provider.DBProviderInterface, config SQLStoreConfig) *SQLStore {
	return &SQLStore{
		dbProvider: dbProvider,
		config:     config,
	}
}

// FindUserByEmail retrieves a user by email address.
func (s *SQLStore) FindUserByEmail(email string) (*User, error) {
	dbClient, err := s.dbProvider.GetDBClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get database client: %w", err)
	}

	results, err := dbClient.Query(QueryGetUserByEmail, email)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	return buildUserFromResultRow(results[0])
}

// FindUserByID retrieves a user by its identifier.
func (s *SQLStore) FindUserByID(id string) (*User, error) {
	dbClient, err := s.dbProvider.GetDBClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get database client: %w", err)
	}

	results, err := dbClient.Query(QueryGetUserByUserID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	return buildUserFromResultRow(results[0])
}

// FindSocialAccount retrieves a social account by provider and provider user ID.
func (s *SQLStore) FindSocialAccount(providerID, providerUserID string) (*SocialAccount, error) {
	dbClient, err := s.dbProvider.GetDBClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get database client: %w", err)
	}

	results, err := dbClient.Query(QueryGetSocialAccount, providerID, providerUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	return buildSocialAccountFromResultRow(results[0])
}

// CreateUser creates a new local user from upstream user info.
func (s *SQLStore) CreateUser(userInfo UserInfo) (*User, error) {
	if s.config.InviteOnly {
		return nil, &PolicyError{
			Code:        "signup_disabled",
			Description: "This deployment is invite-only.",
		}
	}

	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	dbClient, err := s.dbProvider.GetDBClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get database client: %w", err)
	}

	user := &User{
		ID:         uuid.New().String(),
		Email:      userInfo.Email,
		Attributes: userInfo.Attributes,
	}

	attributes, err := json.Marshal(user.Attributes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user attributes: %w", err)
	}

	if _, err := dbClient.Execute(QueryCreateUser, user.ID, user.Email, string(attributes)); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Debug("Created user", log.String("userId", user.ID))
	return user, nil
}

// CreateUserWithSocialAccount creates a user and its first social account in
// one transaction, so a failed second insert leaves no orphaned user row.
func (s *SQLStore) CreateUserWithSocialAccount(userInfo UserInfo, providerID, providerUserID string,
	tokens TokenFields) (*User, error) {
	if s.config.InviteOnly {
		return nil, &PolicyError{
			Code:        "signup_disabled",
			Description: "This deployment is invite-only.",
		}
	}

	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	dbClient, err := s.dbProvider.GetDBClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get database client: %w", err)
	}

	user := &User{
		ID:         uuid.New().String(),
		Email:      userInfo.Email,
		Attributes: userInfo.Attributes,
	}

	attributes, err := json.Marshal(user.Attributes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user attributes: %w", err)
	}

	tx, err := dbClient.BeginTx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.Exec(QueryCreateUser.Query, user.ID, user.Email, string(attributes)); err != nil {
		rollbackTx(tx, logger)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	accountID := uuid.New().String()
	if _, err := tx.Exec(QueryCreateSocialAccount.Query, accountID, user.ID, providerID,
		providerUserID, tokens.AccessToken, tokens.RefreshToken, tokens.AccessTokenExpiresAt,
		tokens.RefreshTokenExpiresAt, tokens.Scope, string(attributes)); err != nil {
		rollbackTx(tx, logger)
		return nil, fmt.Errorf("failed to create social account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	logger.Debug("Created user with social account", log.String("userId", user.ID))
	return user, nil
}

func rollbackTx(tx model.TxInterface, logger *log.Logger) {
	if err := tx.Rollback(); err != nil {
		logger.Error("Failed to roll back transaction", log.Error(err))
	}
}

// CreateSocialAccount creates a new social account bound to the given user.
func (s *SQLStore) CreateSocialAccount(userID, providerID, providerUserID string,
	tokens TokenFields, userInfo UserInfo) (*SocialAccount, error) {
	dbClient, err := s.dbProvider.GetDBClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get database client: %w", err)
	}

	attributes, err := json.Marshal(userInfo.Attributes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal account attributes: %w", err)
	}

	socialAccount := &SocialAccount{
		ID:                    uuid.New().String(),
		UserID:                userID,
		Provider:              providerID,
		ProviderUserID:        providerUserID,
		AccessToken:           tokens.AccessToken,
		RefreshToken:          tokens.RefreshToken,
		AccessTokenExpiresAt:  tokens.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokens.RefreshTokenExpiresAt,
		Scope:                 tokens.Scope,
	}

	_, err = dbClient.Execute(QueryCreateSocialAccount, socialAccount.ID, userID, providerID, providerUserID,
		tokens.AccessToken, tokens.RefreshToken, tokens.AccessTokenExpiresAt, tokens.RefreshTokenExpiresAt,
		tokens.Scope, string(attributes))
	if err != nil {
		return nil, fmt.Errorf("failed to create social account: %w", err)
	}

	return socialAccount, nil
}

// UpdateSocialAccount updates the token fields of an existing social account.
func (s *SQLStore) UpdateSocialAccount(id string, tokens TokenFields, userInfo UserInfo) error {
	dbClient, err := s.dbProvider.GetDBClient()
	if err != nil {
		return fmt.Errorf("failed to get database client: %w", err)
	}

	attributes, err := json.Marshal(userInfo.Attributes)
	if err != nil {
		return fmt.Errorf("failed to marshal account attributes: %w", err)
	}

	rowsAffected, err := dbClient.Execute(QueryUpdateSocialAccount, id, tokens.AccessToken, tokens.RefreshToken,
		tokens.AccessTokenExpiresAt, tokens.RefreshTokenExpiresAt, tokens.Scope, string(attributes))
	if err != nil {
		return fmt.Errorf("failed to update social account: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("social account not found: %s", id)
	}

	return nil
}

// buildUserFromResultRow constructs a User from a database result row.
func buildUserFromResultRow(row map[string]interface{}) (*User, error) {
	userID, ok := row["user_id"].(string)
	if !ok {
		return nil, fmt.Errorf("failed to parse user_id as string")
	}
	email, ok := row["email"].(string)
	if !ok {
		return nil, fmt.Errorf("failed to parse email as string")
	}

	user := &User{
		ID:    userID,
		Email: email,
	}

	if attributes := asString(row["attributes"]); attributes != "" {
		if err := json.Unmarshal([]byte(attributes), &user.Attributes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal user attributes: %w", err)
		}
	}

	return user, nil
}

// buildSocialAccountFromResultRow constructs a SocialAccount from a database result row.
func buildSocialAccountFromResultRow(row map[string]interface{}) (*SocialAccount, error) {
	accountID, ok := row["account_id"].(string)
	if !ok {
		return nil, fmt.Errorf("failed to parse account_id as string")
	}
	userID, ok := row["user_id"].(string)
	if !ok {
		return nil, fmt.Errorf("failed to parse user_id as string")
	}
	providerID, ok := row["provider"].(string)
	if !ok {
		return nil, fmt.Errorf("failed to parse provider as string")
	}
	providerUserID, ok := row["provider_user_id"].(string)
	if !ok {
		return nil, fmt.Errorf("failed to parse provider_user_id as string")
	}

	return &SocialAccount{
		ID:                    accountID,
		UserID:                userID,
		Provider:              providerID,
		ProviderUserID:        providerUserID,
		AccessToken:           asString(row["access_token"]),
		RefreshToken:          asString(row["refresh_token"]),
		AccessTokenExpiresAt:  asTime(row["access_token_expires_at"]),
		RefreshTokenExpiresAt: asTime(row["refresh_token_expires_at"]),
		Scope:                 asString(row["scope"]),
	}, nil
}

// asString normalizes nullable text columns across drivers.
func asString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

// asTime normalizes nullable timestamp columns across drivers.
func asTime(value interface{}) *time.Time {
	switch v := value.(type) {
	case time.Time:
		return &v
	case string:
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			return &parsed
		}
		return nil
	default:
		return nil
	}
}
