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
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/brokkr-id/brokkr/internal/system/database/client"
	"github.com/brokkr-id/brokkr/internal/system/database/model"
)

const testSchema = `
CREATE TABLE "USER" (
    USER_ID    TEXT PRIMARY KEY,
    EMAIL      TEXT NOT NULL,
    ATTRIBUTES TEXT
);
CREATE TABLE SOCIAL_ACCOUNT (
    ACCOUNT_ID               TEXT PRIMARY KEY,
    USER_ID                  TEXT NOT NULL,
    PROVIDER                 TEXT NOT NULL,
    PROVIDER_USER_ID         TEXT NOT NULL,
    ACCESS_TOKEN             TEXT,
    REFRESH_TOKEN            TEXT,
    ACCESS_TOKEN_EXPIRES_AT  TEXT,
    REFRESH_TOKEN_EXPIRES_AT TEXT,
    SCOPE                    TEXT,
    ATTRIBUTES               TEXT,
    UNIQUE (PROVIDER, PROVIDER_USER_ID)
);
`

// testDBProvider returns a fixed client over an in-memory sqlite database.
type testDBProvider struct {
	client client.DBClientInterface
}

func (p *testDBProvider) GetDBClient() (client.DBClientInterface, error) {
	return p.client, nil
}

type SQLStoreTestSuite struct {
	suite.Suite
	db    *sql.DB
	store *SQLStore
}

func TestSQLStoreSuite(t *testing.T) {
	suite.Run(t, new(SQLStoreTestSuite))
}

func (suite *SQLStoreTestSuite) SetupTest() {
	db, err := sql.Open("sqlite", ":memory:")
	suite.Require().NoError(err)
	// The in-memory database disappears with its connection.
	db.SetMaxOpenConns(1)
	_, err = db.Exec(testSchema)
	suite.Require().NoError(err)

	suite.db = db
	dbClient := client.NewDBClient(model.NewDB(db), "sqlite")
	suite.store = NewSQLStore(&testDBProvider{client: dbClient}, SQLStoreConfig{})
}

func (suite *SQLStoreTestSuite) TearDownTest() {
	suite.NoError(suite.db.Close())
}

func (suite *SQLStoreTestSuite) TestCreateUserAndFindBack() {
	user, err := suite.store.CreateUser(UserInfo{
		ID:         "42",
		Email:      "alice@example.com",
		Attributes: map[string]interface{}{"name": "Alice"},
	})
	suite.Require().NoError(err)
	suite.NotEmpty(user.ID)

	byEmail, err := suite.store.FindUserByEmail("alice@example.com")
	suite.Require().NoError(err)
	suite.Require().NotNil(byEmail)
	suite.Equal(user.ID, byEmail.ID)
	suite.Equal("alice@example.com", byEmail.Email)
	suite.Equal("Alice", byEmail.Attributes["name"])

	byID, err := suite.store.FindUserByID(user.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(byID)
	suite.Equal(byEmail.Email, byID.Email)
}

func (suite *SQLStoreTestSuite) TestFindUnknownUserReturnsNil() {
	user, err := suite.store.FindUserByEmail("ghost@example.com")
	suite.NoError(err)
	suite.Nil(user)

	user, err = suite.store.FindUserByID("missing")
	suite.NoError(err)
	suite.Nil(user)
}

func (suite *SQLStoreTestSuite) TestInviteOnlyRejectsCreateUser() {
	store := NewSQLStore(suite.store.dbProvider, SQLStoreConfig{InviteOnly: true})

	user, err := store.CreateUser(UserInfo{ID: "42", Email: "bob@example.com"})
	suite.Nil(user)

	var policyErr *PolicyError
	suite.Require().True(errors.As(err, &policyErr))
	suite.Equal("signup_disabled", policyErr.Code)

	// Nothing was written.
	found, err := suite.store.FindUserByEmail("bob@example.com")
	suite.NoError(err)
	suite.Nil(found)
}

func (suite *SQLStoreTestSuite) TestCreateAndFindSocialAccount() {
	user, err := suite.store.CreateUser(UserInfo{ID: "42", Email: "alice@example.com"})
	suite.Require().NoError(err)

	created, err := suite.store.CreateSocialAccount(user.ID, "github", "42",
		TokenFields{AccessToken: "at-1", RefreshToken: "rt-1", Scope: "read:user"},
		UserInfo{ID: "42", Email: "alice@example.com"})
	suite.Require().NoError(err)

	found, err := suite.store.FindSocialAccount("github", "42")
	suite.Require().NoError(err)
	suite.Require().NotNil(found)
	suite.Equal(created.ID, found.ID)
	suite.Equal(user.ID, found.UserID)
	suite.Equal("github", found.Provider)
	suite.Equal("42", found.ProviderUserID)
	suite.Equal("at-1", found.AccessToken)
	suite.Equal("rt-1", found.RefreshToken)
	suite.Equal("read:user", found.Scope)
	suite.Nil(found.AccessTokenExpiresAt)
	suite.Nil(found.RefreshTokenExpiresAt)
}

func (suite *SQLStoreTestSuite) TestCreateUserWithSocialAccountCreatesBoth() {
	user, err := suite.store.CreateUserWithSocialAccount(
		UserInfo{ID: "42", Email: "alice@example.com", Attributes: map[string]interface{}{"name": "Alice"}},
		"github", "42",
		TokenFields{AccessToken: "at-1", RefreshToken: "rt-1", Scope: "read:user"})
	suite.Require().NoError(err)
	suite.NotEmpty(user.ID)

	byEmail, err := suite.store.FindUserByEmail("alice@example.com")
	suite.Require().NoError(err)
	suite.Require().NotNil(byEmail)
	suite.Equal(user.ID, byEmail.ID)

	socialAccount, err := suite.store.FindSocialAccount("github", "42")
	suite.Require().NoError(err)
	suite.Require().NotNil(socialAccount)
	suite.Equal(user.ID, socialAccount.UserID)
	suite.Equal("at-1", socialAccount.AccessToken)
	suite.Equal("rt-1", socialAccount.RefreshToken)
	suite.Equal("read:user", socialAccount.Scope)
}

func (suite *SQLStoreTestSuite) TestCreateUserWithSocialAccountRollsBackOnConflict() {
	existing, err := suite.store.CreateUser(UserInfo{ID: "42", Email: "alice@example.com"})
	suite.Require().NoError(err)
	_, err = suite.store.CreateSocialAccount(existing.ID, "github", "42",
		TokenFields{AccessToken: "at-1"}, UserInfo{ID: "42", Email: "alice@example.com"})
	suite.Require().NoError(err)

	// The duplicate provider identity fails the second insert, which must
	// take the already-inserted user row down with it.
	_, err = suite.store.CreateUserWithSocialAccount(
		UserInfo{ID: "42", Email: "impostor@example.com"},
		"github", "42", TokenFields{AccessToken: "at-2"})
	suite.Require().Error(err)

	user, err := suite.store.FindUserByEmail("impostor@example.com")
	suite.NoError(err)
	suite.Nil(user)

	socialAccount, err := suite.store.FindSocialAccount("github", "42")
	suite.Require().NoError(err)
	suite.Require().NotNil(socialAccount)
	suite.Equal("at-1", socialAccount.AccessToken)
}

func (suite *SQLStoreTestSuite) TestInviteOnlyRejectsCombinedSignup() {
	store := NewSQLStore(suite.store.dbProvider, SQLStoreConfig{InviteOnly: true})

	user, err := store.CreateUserWithSocialAccount(
		UserInfo{ID: "42", Email: "bob@example.com"}, "github", "43",
		TokenFields{AccessToken: "at-1"})
	suite.Nil(user)

	var policyErr *PolicyError
	suite.Require().True(errors.As(err, &policyErr))
	suite.Equal("signup_disabled", policyErr.Code)
}

func (suite *SQLStoreTestSuite) TestFindUnknownSocialAccountReturnsNil() {
	found, err := suite.store.FindSocialAccount("github", "nobody")
	suite.NoError(err)
	suite.Nil(found)
}

func (suite *SQLStoreTestSuite) TestUpdateSocialAccountReplacesTokens() {
	user, err := suite.store.CreateUser(UserInfo{ID: "42", Email: "alice@example.com"})
	suite.Require().NoError(err)

	created, err := suite.store.CreateSocialAccount(user.ID, "github", "42",
		TokenFields{AccessToken: "at-1", Scope: "read:user"},
		UserInfo{ID: "42", Email: "alice@example.com"})
	suite.Require().NoError(err)

	err = suite.store.UpdateSocialAccount(created.ID,
		TokenFields{AccessToken: "at-2", RefreshToken: "rt-2", Scope: "read:user user:email"},
		UserInfo{ID: "42", Email: "alice@example.com"})
	suite.Require().NoError(err)

	found, err := suite.store.FindSocialAccount("github", "42")
	suite.Require().NoError(err)
	suite.Require().NotNil(found)
	suite.Equal("at-2", found.AccessToken)
	suite.Equal("rt-2", found.RefreshToken)
	suite.Equal("read:user user:email", found.Scope)
	suite.Equal(user.ID, found.UserID)
}

func (suite *SQLStoreTestSuite) TestUpdateUnknownSocialAccountFails() {
	err := suite.store.UpdateSocialAccount("missing",
		TokenFields{AccessToken: "at-1"}, UserInfo{ID: "42"})
	suite.Error(err)
}
