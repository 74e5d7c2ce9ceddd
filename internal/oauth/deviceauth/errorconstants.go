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

import "github.com/brokkr-id/brokkr/internal/system/error/serviceerror"

// Client errors for device authorization.
var (
	// ErrorEmptyClientID is the error when the client identifier is empty.
	ErrorEmptyClientID = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "DEV-1001",
		Error:            "Empty client id",
		ErrorDescription: "The client id cannot be empty",
	}
	// ErrorEmptyAccessToken is the error when the access token to set is empty.
	ErrorEmptyAccessToken = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "DEV-1002",
		Error:            "Empty access token",
		ErrorDescription: "The access token cannot be empty",
	}
	// ErrorRecordNotFound is the error when no record exists for the given
	// code. Expired and never-issued codes are indistinguishable.
	ErrorRecordNotFound = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "DEV-1003",
		Error:            "Device authorization not found",
		ErrorDescription: "No device authorization found for the given code",
	}
	// ErrorAlreadyAuthorized is the error when the record has already been
	// authorized. A record transitions to authorized exactly once.
	ErrorAlreadyAuthorized = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "DEV-1004",
		Error:            "Device already authorized",
		ErrorDescription: "The device authorization has already been completed",
	}
)

// Server errors for device authorization.
var (
	// ErrorUnexpectedServerError is a generic error for unexpected server errors.
	ErrorUnexpectedServerError = serviceerror.ServiceError{
		Type:             serviceerror.ServerErrorType,
		Code:             "DEV-5000",
		Error:            "Something went wrong",
		ErrorDescription: "An unexpected error occurred while processing the request",
	}
)
