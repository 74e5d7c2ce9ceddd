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

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RedisStoreTestSuite struct {
	suite.Suite
	server *miniredis.Miniredis
	store  *RedisStore
	ctx    context.Context
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreTestSuite))
}

func (suite *RedisStoreTestSuite) SetupTest() {
	server, err := miniredis.Run()
	suite.Require().NoError(err)
	suite.server = server

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	suite.store = NewRedisStoreWithClient(client)
	suite.ctx = context.Background()
}

func (suite *RedisStoreTestSuite) TearDownTest() {
	suite.NoError(suite.store.Close())
	suite.server.Close()
}

func (suite *RedisStoreTestSuite) TestSetAndGet() {
	err := suite.store.Set(suite.ctx, "key1", "value1", time.Minute)
	suite.NoError(err)

	value, found, err := suite.store.Get(suite.ctx, "key1")
	suite.NoError(err)
	suite.True(found)
	suite.Equal("value1", value)
}

func (suite *RedisStoreTestSuite) TestGetMissingKey() {
	value, found, err := suite.store.Get(suite.ctx, "missing")
	suite.NoError(err)
	suite.False(found)
	suite.Empty(value)
}

func (suite *RedisStoreTestSuite) TestExpiry() {
	err := suite.store.Set(suite.ctx, "key1", "value1", time.Minute)
	suite.NoError(err)

	suite.server.FastForward(2 * time.Minute)

	_, found, err := suite.store.Get(suite.ctx, "key1")
	suite.NoError(err)
	suite.False(found)
}

func (suite *RedisStoreTestSuite) TestDelete() {
	err := suite.store.Set(suite.ctx, "key1", "value1", time.Minute)
	suite.NoError(err)

	err = suite.store.Delete(suite.ctx, "key1")
	suite.NoError(err)

	_, found, err := suite.store.Get(suite.ctx, "key1")
	suite.NoError(err)
	suite.False(found)
}

func (suite *RedisStoreTestSuite) TestSetBatch() {
	entries := []Entry{
		{Key: "key1", Value: "value1"},
		{Key: "key2", Value: "value2"},
	}
	err := suite.store.SetBatch(suite.ctx, entries, time.Minute)
	suite.NoError(err)

	// Both keys carry the same TTL.
	suite.Greater(suite.server.TTL("key1"), time.Duration(0))
	suite.Equal(suite.server.TTL("key1"), suite.server.TTL("key2"))

	value1, found, err := suite.store.Get(suite.ctx, "key1")
	suite.NoError(err)
	suite.True(found)
	suite.Equal("value1", value1)

	value2, found, err := suite.store.Get(suite.ctx, "key2")
	suite.NoError(err)
	suite.True(found)
	suite.Equal("value2", value2)
}

func (suite *RedisStoreTestSuite) TestUpdate() {
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

func (suite *RedisStoreTestSuite) TestUpdateMissingKey() {
	err := suite.store.Update(suite.ctx, "missing", time.Minute, func(current string) (string, error) {
		return "value", nil
	})
	suite.ErrorIs(err, ErrKeyNotFound)
}

func (suite *RedisStoreTestSuite) TestUpdateAborted() {
	err := suite.store.Set(suite.ctx, "key1", "value1", time.Minute)
	suite.NoError(err)

	abortErr := errors.New("abort")
	err = suite.store.Update(suite.ctx, "key1", time.Minute, func(current string) (string, error) {
		return "", abortErr
	})
	suite.ErrorIs(err, abortErr)

	value, found, err := suite.store.Get(suite.ctx, "key1")
	suite.NoError(err)
	suite.True(found)
	suite.Equal("value1", value)
}
