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

// Package deviceauth implements the device authorization flow: a CLI obtains
// a device/user code pair, a browser session authorizes the user code, and
// the CLI polls the device code until authorized or expired.
package deviceauth

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brokkr-id/brokkr/internal/ephemeral"
	"github.com/brokkr-id/brokkr/internal/system/error/serviceerror"
	"github.com/brokkr-id/brokkr/internal/system/log"
)

const loggerComponentName = "DeviceAuthService"

// errNotPending aborts the conditional authorize update when the record has
// already left the pending state.
var errNotPending = errors.New("device authorization is not pending")

// ServiceInterface defines the contract of the device authorization engine.
type ServiceInterface interface {
	// Begin issues a fresh device/user code pair and persists the pending
	// record and the user-code mapping as one atomic batch.
	Begin(ctx context.Context, clientID, requestIP string) (*BeginResult, *serviceerror.ServiceError)
	// LookupByDeviceCode returns the record for the given device code, or
	// (nil, nil) when the code is unknown or expired.
	LookupByDeviceCode(ctx context.Context, deviceCode string) (
		*DeviceAuthorizationRecord, *serviceerror.ServiceError)
	// LookupByUserCode resolves the user-code mapping and delegates to
	// LookupByDeviceCode.
	LookupByUserCode(ctx context.Context, userCode string) (
		*DeviceAuthorizationRecord, *serviceerror.ServiceError)
	// Authorize transitions the record to authorized and sets the access
	// token. The pending precondition makes the transition happen at most
	// once.
	Authorize(ctx context.Context, deviceCode, accessToken string) *serviceerror.ServiceError
	// AuthorizeByUserCode authorizes the device record the given user code
	// resolves to, binding authorization to the session holding the code.
	AuthorizeByUserCode(ctx context.Context, userCode, accessToken string) *serviceerror.ServiceError
}

// deviceAuthService is the default implementation of ServiceInterface.
type deviceAuthService struct {
	store  ephemeral.StoreInterface
	ttl    time.Duration
	logger *log.Logger
}

// NewDeviceAuthService creates a device authorization engine over the injected
// ephemeral store.
func NewDeviceAuthService(store ephemeral.StoreInterface, ttl time.Duration) ServiceInterface {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &deviceAuthService{
		store:  store,
		ttl:    ttl,
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)),
	}
}

// Begin issues a device/user code pair with status pending.
func (s *deviceAuthService) Begin(ctx context.Context, clientID,
	requestIP string) (*BeginResult, *serviceerror.ServiceError) {
	if strings.TrimSpace(clientID) == "" {
		return nil, &ErrorEmptyClientID
	}

	deviceCode := uuid.New().String()
	userCode, err := generateUserCode()
	if err != nil {
		s.logger.Error("Failed to generate user code", log.Error(err))
		return nil, &ErrorUnexpectedServerError
	}

	now := time.Now().UTC()
	record := DeviceAuthorizationRecord{
		DeviceCode: deviceCode,
		ClientID:   clientID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.ttl),
		RequestIP:  requestIP,
		Status:     StatusPending,
	}

	serialized, err := json.Marshal(record)
	if err != nil {
		s.logger.Error("Failed to serialize device authorization record", log.Error(err))
		return nil, &ErrorUnexpectedServerError
	}

	// Both keys land together so a user code can never point at a missing
	// device record.
	entries := []ephemeral.Entry{
		{Key: deviceCodeKeyPrefix + deviceCode, Value: string(serialized)},
		{Key: userCodeKeyPrefix + userCode, Value: deviceCode},
	}
	if err := s.store.SetBatch(ctx, entries, s.ttl); err != nil {
		s.logger.Error("Failed to persist device authorization state", log.Error(err))
		return nil, &ErrorUnexpectedServerError
	}

	return &BeginResult{
		DeviceCode: deviceCode,
		UserCode:   userCode,
		ExpiresIn:  int(s.ttl.Seconds()),
	}, nil
}

// LookupByDeviceCode returns the record for the device code, or (nil, nil)
// when absent or expired.
func (s *deviceAuthService) LookupByDeviceCode(ctx context.Context,
	deviceCode string) (*DeviceAuthorizationRecord, *serviceerror.ServiceError) {
	raw, found, err := s.store.Get(ctx, deviceCodeKeyPrefix+deviceCode)
	if err != nil {
		s.logger.Error("Failed to read device authorization record", log.Error(err))
		return nil, &ErrorUnexpectedServerError
	}
	if !found {
		return nil, nil
	}

	var record DeviceAuthorizationRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		s.logger.Error("Invalid device authorization record", log.Error(err))
		return nil, &ErrorUnexpectedServerError
	}
	return &record, nil
}

// LookupByUserCode resolves the user-code mapping and loads the record.
func (s *deviceAuthService) LookupByUserCode(ctx context.Context,
	userCode string) (*DeviceAuthorizationRecord, *serviceerror.ServiceError) {
	deviceCode, found, err := s.store.Get(ctx, userCodeKeyPrefix+normalizeUserCode(userCode))
	if err != nil {
		s.logger.Error("Failed to resolve user code mapping", log.Error(err))
		return nil, &ErrorUnexpectedServerError
	}
	if !found {
		return nil, nil
	}

	return s.LookupByDeviceCode(ctx, deviceCode)
}

// Authorize marks the record authorized and attaches the access token through
// the store's conditional update, so two concurrent authorizations of the same
// code cannot both succeed.
func (s *deviceAuthService) Authorize(ctx context.Context, deviceCode,
	accessToken string) *serviceerror.ServiceError {
	if strings.TrimSpace(accessToken) == "" {
		return &ErrorEmptyAccessToken
	}

	err := s.store.Update(ctx, deviceCodeKeyPrefix+deviceCode, s.ttl,
		func(current string) (string, error) {
			var record DeviceAuthorizationRecord
			if err := json.Unmarshal([]byte(current), &record); err != nil {
				return "", err
			}
			if record.Status != StatusPending {
				return "", errNotPending
			}

			record.Status = StatusAuthorized
			record.AccessToken = accessToken

			updated, err := json.Marshal(record)
			if err != nil {
				return "", err
			}
			return string(updated), nil
		})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ephemeral.ErrKeyNotFound):
		return &ErrorRecordNotFound
	case errors.Is(err, errNotPending):
		return &ErrorAlreadyAuthorized
	default:
		s.logger.Error("Failed to authorize device record", log.Error(err))
		return &ErrorUnexpectedServerError
	}
}

// AuthorizeByUserCode resolves the user code and authorizes its device record.
func (s *deviceAuthService) AuthorizeByUserCode(ctx context.Context, userCode,
	accessToken string) *serviceerror.ServiceError {
	deviceCode, found, err := s.store.Get(ctx, userCodeKeyPrefix+normalizeUserCode(userCode))
	if err != nil {
		s.logger.Error("Failed to resolve user code mapping", log.Error(err))
		return &ErrorUnexpectedServerError
	}
	if !found {
		return &ErrorRecordNotFound
	}

	return s.Authorize(ctx, deviceCode, accessToken)
}

// generateUserCode produces a short human-enterable code such as "XFGH-29KL".
func generateUserCode() (string, error) {
	chars := make([]byte, userCodeLength)
	max := big.NewInt(int64(len(userCodeCharset)))
	for i := range chars {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		chars[i] = userCodeCharset[n.Int64()]
	}
	return string(chars[:userCodeLength/2]) + "-" + string(chars[userCodeLength/2:]), nil
}

// normalizeUserCode makes user code entry forgiving of case and whitespace.
func normalizeUserCode(userCode string) string {
	return strings.ToUpper(strings.TrimSpace(userCode))
}
