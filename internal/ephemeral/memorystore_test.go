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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type MemoryStoreTestSuite struct {
	suite.Suite
	store *MemoryStore
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreTestSuite))
}

func (suite *MemoryStoreTestSuite) SetupTest() {
	suite.store = NewMemoryStore()
	suite.ctx = context.Background()
}

func (suite *MemoryStoreTestSuite) TestSetAndGet() {
	err := suite.store.Set(suite.ctx, "key1", "value1", time.Minute)
	suite.NoError(err)

	value, found, err := suite.store.Get(suite.ctx, "key1")
	suite.NoError(err)
	suite.True(found)
	suite.Equal("value1", value)
}

func (suite *MemoryStoreTestSuite) TestGetMissingKey() {
	value, found, err := suite.store.Get(suite.ctx, "missing")
	suite.NoError(err)
	suite.False(found)
	suite.Empty(value)
}

func (suite *MemoryStoreTestSuite) TestGetExpiredKey() {
	err := suite.store.Set(suite.ctx, "key1", "value1", -time.Second)
	suite.NoError(err)

	_, found, err := suite.store.Get(suite.ctx, "key1")
	suite.NoError(err)
	suite.False(found)
}

func (suite *MemoryStoreTestSuite) TestDelete() {
	err := suite.store.Set(suite.ctx, "key1", "value1", time.Minute)
	suite.NoError(err)

	err = suite.store.Delete(suite.ctx, "key1")
	suite.NoError(err)

	_, found, err := suite.store.Get(suite.ctx, "key1")
	suite.NoError(err)
	suite.False(found)
}

func (suite *MemoryStoreTestSuite) TestDeleteMissingKey() {
	err := suite.store.Delete(suite.ctx, "missing")
	suite.NoError(err)
}

func (suite *MemoryStoreTestSuite) TestSetBatch() {
	entries := []Entry{
		{Key: "key1", Value: "value1"},
		{Key: "key2", Value: "value2"},
	}
	err := suite.store.SetBatch(suite.ctx, entries, time.Minute)
	suite.NoError(err)

	value1, found, err := suite.store.Get(suite.ctx, "key1")
	suite.NoError(err)
	suite.True(found)
	suite.Equal("value1", value1)

	value2, found, err := suite.store.Get(suite.ctx, "key2")
	suite.NoError(err)
	suite.True(found)
	suite.Equal("value2", value2)
}

func (suite *MemoryStoreTestSuite) TestUpdate() {
	err := suite.store.Set(suite.ctx, "key1", "value1", time.Minute)
	suite.NoError(err)

	err = suite.store.Update(suite.ctx, "key1", time.Minute, func(current string) (string, error) {
		suite.Equal("value1", current)
		return "value2", nil
	})
	suite.NoError(err)

	value, found, err := suite.store.Get(suite.ctx, "key1")
	suite.NoError(err)
	suite.True(found)
	suite.Equal("value2", value)
}

func (suite *MemoryStoreTestSuite) TestUpdateMissingKey() {
	err := suite.store.Update(suite.ctx, "missing", time.Minute, func(current string) (string, error) {
		return "value", nil
	})
	suite.ErrorIs(err, ErrKeyNotFound)
}

func (suite *MemoryStoreTestSuite) TestUpdateAborted() {
	err := suite.store.Set(suite.ctx, "key1", "value1", time.Minute)
	suite.NoError(err)

	abortErr := errors.New("abort")
	err = suite.store.Update(suite.ctx, "key1", time.Minute, func(current string) (string, error) {
		return "", abortErr
	})
	suite.ErrorIs(err, abortErr)

	// The stored value must be untouched after an aborted update.
	value, found, err := suite.store.Get(suite.ctx, "key1")
	suite.NoError(err)
	suite.True(found)
	suite.Equal("value1", value)
}
