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

import "time"

// Status is the state of a device authorization record.
type Status string

const (
	// StatusPending marks a record awaiting browser authorization.
	StatusPending Status = "pending"
	// StatusAuthorized marks a record whose access token has been set.
	// The transition happens exactly once.
	StatusAuthorized Status = "authorized"
)

// DeviceAuthorizationRecord is the ephemeral state of one device login,
// keyed by the machine-held device code. A second mapping from the
// human-typed user code to the device code shares the same TTL.
type DeviceAuthorizationRecord struct {
	DeviceCode  string    `json:"device_code"`
	ClientID    string    `json:"client_id"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	RequestIP   string    `json:"request_ip"`
	Status      Status    `json:"status"`
	AccessToken string    `json:"access_token,omitempty"`
}

// BeginResult carries the code pair returned to a device starting the flow.
type BeginResult struct {
	DeviceCode string
	UserCode   string
	ExpiresIn  int
}
