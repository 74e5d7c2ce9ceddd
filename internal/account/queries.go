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

import "github.com/brokkr-id/brokkr/internal/system/database/model"

var (
	// QueryGetUserByEmail is the query to get a user by email address.
	QueryGetUserByEmail = model.DBQuery{
		ID:    "ACQ-ACCOUNT-01",
		Query: "SELECT USER_ID, EMAIL, ATTRIBUTES FROM \"USER\" WHERE EMAIL = $1",
	}
	// QueryGetUserByUserID is the query to get a user by user ID.
	QueryGetUserByUserID = model.DBQuery{
		ID:    "ACQ-ACCOUNT-02",
		Query: "SELECT USER_ID, EMAIL, ATTRIBUTES FROM \"USER\" WHERE USER_ID = $1",
	}
	// QueryCreateUser is the query to create a new user.
	QueryCreateUser = model.DBQuery{
		ID:    "ACQ-ACCOUNT-03",
		Query: "INSERT INTO \"USER\" (USER_ID, EMAIL, ATTRIBUTES) VALUES ($1, $2, $3)",
	}
	// QueryGetSocialAccount is the query to get a social account by provider and provider user ID.
	QueryGetSocialAccount = model.DBQuery{
		ID: "ACQ-ACCOUNT-04",
		Query: "SELECT ACCOUNT_ID, USER_ID, PROVIDER, PROVIDER_USER_ID, ACCESS_TOKEN, REFRESH_TOKEN, " +
			"ACCESS_TOKEN_EXPIRES_AT, REFRESH_TOKEN_EXPIRES_AT, SCOPE FROM SOCIAL_ACCOUNT " +
			"WHERE PROVIDER = $1 AND PROVIDER_USER_ID = $2",
	}
	// QueryCreateSocialAccount is the query to create a new social account.
	QueryCreateSocialAccount = model.DBQuery{
		ID: "ACQ-ACCOUNT-05",
		Query: "INSERT INTO SOCIAL_ACCOUNT (ACCOUNT_ID, USER_ID, PROVIDER, PROVIDER_USER_ID, ACCESS_TOKEN, " +
			"REFRESH_TOKEN, ACCESS_TOKEN_EXPIRES_AT, REFRESH_TOKEN_EXPIRES_AT, SCOPE, ATTRIBUTES) " +
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)",
	}
	// QueryUpdateSocialAccount is the query to update the token fields of a social account.
	// The sqlite variant uses explicit ordinals since sqlite numbers named
	// parameters by order of appearance, not by name.
	QueryUpdateSocialAccount = model.DBQuery{
		ID: "ACQ-ACCOUNT-06",
		Query: "UPDATE SOCIAL_ACCOUNT SET ACCESS_TOKEN = $2, REFRESH_TOKEN = $3, ACCESS_TOKEN_EXPIRES_AT = $4, " +
			"REFRESH_TOKEN_EXPIRES_AT = $5, SCOPE = $6, ATTRIBUTES = $7 WHERE ACCOUNT_ID = $1",
		SQLiteQuery: "UPDATE SOCIAL_ACCOUNT SET ACCESS_TOKEN = ?2, REFRESH_TOKEN = ?3, " +
			"ACCESS_TOKEN_EXPIRES_AT = ?4, REFRESH_TOKEN_EXPIRES_AT = ?5, SCOPE = ?6, ATTRIBUTES = ?7 " +
			"WHERE ACCOUNT_ID = ?1",
	}
)
