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

package provider

import "net/http"

// bareError returns a flow error delivered as a direct HTTP response. Used
// only before a trusted redirect target is known, or where a redirect is
// never appropriate (finalize-link, code exchange).
func bareError(code, description string, statusCode int) *FlowError {
	if statusCode == 0 {
		statusCode = http.StatusBadRequest
	}
	return &FlowError{
		Error:            code,
		ErrorDescription: description,
		StatusCode:       statusCode,
	}
}

// redirectError returns a flow error delivered as error/error_description
// query parameters on a redirect to the given validated redirect URI.
func redirectError(redirectURI, code, description string) *FlowError {
	return &FlowError{
		Error:            code,
		ErrorDescription: description,
		RedirectURI:      redirectURI,
	}
}

// oauthError is the internal error raised by the token exchange and user info
// steps. The engine maps it onto the delivery channel of the current operation.
type oauthError struct {
	code        string
	description string
}

func (e *oauthError) Error() string {
	return e.code + ": " + e.description
}
