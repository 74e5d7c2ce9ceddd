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

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/brokkr-id/brokkr/internal/oauth/provider"
	sysconst "github.com/brokkr-id/brokkr/internal/system/constants"
	"github.com/brokkr-id/brokkr/internal/system/error/serviceerror"
	"github.com/brokkr-id/brokkr/internal/system/log"
	"github.com/brokkr-id/brokkr/internal/system/utils"
	"github.com/brokkr-id/brokkr/internal/token"
)

// deviceAuthHandler exposes the device flow over HTTP.
type deviceAuthHandler struct {
	service           ServiceInterface
	resolver          provider.UserResolver
	tokenService      token.ServiceInterface
	userTokenValidity time.Duration
}

func newDeviceAuthHandler(service ServiceInterface, resolver provider.UserResolver,
	tokenService token.ServiceInterface, userTokenValidity time.Duration) *deviceAuthHandler {
	return &deviceAuthHandler{
		service:           service,
		resolver:          resolver,
		tokenService:      tokenService,
		userTokenValidity: userTokenValidity,
	}
}

// deviceAuthorizeResponse is the response body of POST /device/authorize.
type deviceAuthorizeResponse struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
}

// deviceTokenResponse is the response body of a successful POST /device/token poll.
type deviceTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// deviceVerifyRequest is the request body of POST /device/verify.
type deviceVerifyRequest struct {
	UserCode string `json:"user_code"`
}

// HandleDeviceAuthorizeRequest handles POST /device/authorize.
func (h *deviceAuthHandler) HandleDeviceAuthorizeRequest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.WriteJSONError(w, ErrorInvalidRequest, "Malformed request body",
			http.StatusBadRequest, nil)
		return
	}

	clientID := utils.SanitizeString(r.PostForm.Get("client_id"))
	result, svcErr := h.service.Begin(r.Context(), clientID, clientIP(r))
	if svcErr != nil {
		writeServiceError(w, svcErr)
		return
	}

	writeJSONResponse(w, http.StatusOK, deviceAuthorizeResponse{
		DeviceCode:      result.DeviceCode,
		UserCode:        result.UserCode,
		VerificationURI: verificationURI(r),
		ExpiresIn:       result.ExpiresIn,
		Interval:        pollInterval,
	})
}

// HandleDeviceTokenRequest handles POST /device/token, the polling endpoint.
// A vanished record and a never-issued code both answer expired_token; expiry
// is the only negative outcome of the protocol.
func (h *deviceAuthHandler) HandleDeviceTokenRequest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.WriteJSONError(w, ErrorInvalidRequest, "Malformed request body",
			http.StatusBadRequest, nil)
		return
	}

	deviceCode := utils.SanitizeString(r.PostForm.Get("device_code"))
	if deviceCode == "" {
		utils.WriteJSONError(w, ErrorInvalidRequest, "No device code provided",
			http.StatusBadRequest, nil)
		return
	}

	record, svcErr := h.service.LookupByDeviceCode(r.Context(), deviceCode)
	if svcErr != nil {
		writeServiceError(w, svcErr)
		return
	}
	if record == nil {
		utils.WriteJSONError(w, ErrorExpiredToken, "The device code has expired",
			http.StatusBadRequest, nil)
		return
	}
	if record.Status != StatusAuthorized {
		utils.WriteJSONError(w, ErrorAuthorizationPending, "Authorization is pending",
			http.StatusBadRequest, nil)
		return
	}

	writeJSONResponse(w, http.StatusOK, deviceTokenResponse{
		AccessToken: record.AccessToken,
		TokenType:   sysconst.TokenTypeBearer,
	})
}

// HandleDeviceVerifyRequest handles POST /device/verify: an authenticated
// browser session authorizes the device holding the matching user code.
func (h *deviceAuthHandler) HandleDeviceVerifyRequest(w http.ResponseWriter, r *http.Request) {
	user, err := h.resolver.ResolveUser(r)
	if err != nil {
		log.GetLogger().Error("Failed to resolve user from request", log.Error(err))
		utils.WriteJSONError(w, ErrorInvalidRequest, "Failed to resolve user",
			http.StatusInternalServerError, nil)
		return
	}
	if user == nil {
		utils.WriteJSONError(w, ErrorUnauthorized, "Not logged in",
			http.StatusUnauthorized, nil)
		return
	}

	body, err := utils.DecodeJSONBody[deviceVerifyRequest](r)
	if err != nil || strings.TrimSpace(body.UserCode) == "" {
		utils.WriteJSONError(w, ErrorInvalidRequest, "No user code provided",
			http.StatusBadRequest, nil)
		return
	}

	accessToken, err := h.tokenService.Issue(token.KindUser, user.ID, h.userTokenValidity, nil)
	if err != nil {
		log.GetLogger().Error("Failed to issue device access token", log.Error(err))
		utils.WriteJSONError(w, ErrorInvalidRequest, "Failed to issue access token",
			http.StatusInternalServerError, nil)
		return
	}

	if svcErr := h.service.AuthorizeByUserCode(r.Context(), body.UserCode, accessToken); svcErr != nil {
		switch svcErr.Code {
		case ErrorRecordNotFound.Code:
			utils.WriteJSONError(w, ErrorExpiredToken, "The user code has expired",
				http.StatusBadRequest, nil)
		case ErrorAlreadyAuthorized.Code:
			utils.WriteJSONError(w, ErrorInvalidRequest, "Device already authorized",
				http.StatusConflict, nil)
		default:
			writeServiceError(w, svcErr)
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Device authorized"})
}

// verificationURI derives the browser-facing verification page URL.
func verificationURI(r *http.Request) string {
	scheme := "http"
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/device"
}

// clientIP extracts the requesting client's IP address.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writeServiceError maps a service error onto an HTTP response.
func writeServiceError(w http.ResponseWriter, svcErr *serviceerror.ServiceError) {
	statusCode := http.StatusBadRequest
	if svcErr.Type == serviceerror.ServerErrorType {
		statusCode = http.StatusInternalServerError
	}
	utils.WriteJSONError(w, svcErr.Error, svcErr.ErrorDescription, statusCode, nil)
}

// writeJSONResponse writes a JSON body with the given status code.
func writeJSONResponse(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set(sysconst.ContentTypeHeaderName, sysconst.ContentTypeJSON)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.GetLogger().Error("Failed to write JSON response", log.Error(err))
	}
}
