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

package ephemeral

import (
	"context"
	"sync"
	"time"
)

// storeEntry represents an entry in the in-memory store.
type storeEntry struct {
	value      string
	expiryTime time.Time
}

// MemoryStore implements StoreInterface with a mutex-guarded map.
// Intended for tests and single-node deployments without redis.
type MemoryStore struct {
	entries map[string]storeEntry
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory ephemeral store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]storeEntry),
	}
}

// Set stores a value under the given key with the given TTL.
func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = storeEntry{
		value:      value,
		expiryTime: time.Now().Add(ttl),
	}
	return nil
}

// SetBatch stores all entries with the same TTL under a single lock.
func (s *MemoryStore) SetBatch(_ context.Context, entries []Entry, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry := time.Now().Add(ttl)
	for _, entry := range entries {
		s.entries[entry.Key] = storeEntry{
			value:      entry.Value,
			expiryTime: expiry,
		}
	}
	return nil
}

// Get retrieves the value for the given key.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	entry, exists := s.entries[key]
	s.mu.RUnlock()

	if !exists {
		return "", false, nil
	}
	if time.Now().After(entry.expiryTime) {
		// Remove the expired entry.
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return "", false, nil
	}

	return entry.value, true, nil
}

// Delete removes the given key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Update applies fn to the current value of key and writes the result back with
// a fresh TTL while holding the store lock.
func (s *MemoryStore) Update(_ context.Context, key string, ttl time.Duration,
	fn func(current string) (string, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.entries[key]
	if !exists || time.Now().After(entry.expiryTime) {
		delete(s.entries, key)
		return ErrKeyNotFound
	}

	next, err := fn(entry.value)
	if err != nil {
		return err
	}

	s.entries[key] = storeEntry{
		value:      next,
		expiryTime: time.Now().Add(ttl),
	}
	return nil
}
