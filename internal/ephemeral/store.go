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

// Package ephemeral provides the capability interface for short-lived flow state
// storage with per-key expiration, together with redis and in-memory implementations.
package ephemeral

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by conditional operations when the key is absent or expired.
var ErrKeyNotFound = errors.New("key not found")

// Entry represents a single key-value pair in a batch write.
type Entry struct {
	Key   string
	Value string
}

// StoreInterface defines the capability interface for the ephemeral state store.
// Expired keys are indistinguishable from keys that never existed.
type StoreInterface interface {
	// Set stores a value under the given key with the given TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// SetBatch stores all entries with the same TTL as a single atomic batch.
	SetBatch(ctx context.Context, entries []Entry, ttl time.Duration) error
	// Get retrieves the value for the given key. The second return value
	// reports whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Delete removes the given key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Update applies fn to the current value of key and writes the result
	// back with a fresh TTL, as a single conditional operation. It returns
	// ErrKeyNotFound if the key is absent and propagates any error from fn.
	Update(ctx context.Context, key string, ttl time.Duration, fn func(current string) (string, error)) error
}
