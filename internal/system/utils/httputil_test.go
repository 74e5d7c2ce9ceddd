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

package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brokkr-id/brokkr/internal/system/error/apierror"
)

func TestWriteJSONErrorBody(t *testing.T) {
	recorder := httptest.NewRecorder()
	WriteJSONError(recorder, "invalid_request", "Missing redirect_uri",
		http.StatusBadRequest, nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

	var body apierror.ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "invalid_request", body.Error)
	assert.Equal(t, "Missing redirect_uri", body.ErrorDescription)

	// The wire shape uses the OAuth field names.
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &raw))
	assert.Equal(t, "invalid_request", raw["error"])
	assert.Equal(t, "Missing redirect_uri", raw["error_description"])
}

func TestWriteJSONErrorOmitsEmptyDescription(t *testing.T) {
	recorder := httptest.NewRecorder()
	WriteJSONError(recorder, "server_error", "", http.StatusInternalServerError,
		[]map[string]string{{"Cache-Control": "no-store"}})

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Equal(t, "no-store", recorder.Header().Get("Cache-Control"))

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &raw))
	assert.Equal(t, "server_error", raw["error"])
	_, hasDescription := raw["error_description"]
	assert.False(t, hasDescription)
}
