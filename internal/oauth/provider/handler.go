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

import (
	"encoding/json"
	"net/http"

	"github.com/brokkr-id/brokkr/internal/system/log"
	"github.com/brokkr-id/brokkr/internal/system/utils"
)

// flowHandler exposes one provider's flow engine over HTTP.
type flowHandler struct {
	service  FlowServiceInterface
	resolver UserResolver
}

func newFlowHandler(service FlowServiceInterface, resolver UserResolver) *flowHandler {
	return &flowHandler{
		service:  service,
		resolver: resolver,
	}
}

// finalizeLinkRequest is the finalize-link request body.
type finalizeLinkRequest struct {
	LinkCode     string `json:"link_code"`
	CodeVerifier string `json:"code_verifier"`
}

// HandleAuthorizeRequest handles GET /oauth/{id}/authorize.
func (h *flowHandler) HandleAuthorizeRequest(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &AuthorizeRequest{
		RedirectURI:         utils.SanitizeString(query.Get(RequestParamRedirectURI)),
		ResponseType:        utils.SanitizeString(query.Get(RequestParamResponseType)),
		CodeChallenge:       utils.SanitizeString(query.Get(RequestParamCodeChallenge)),
		CodeChallengeMethod: utils.SanitizeString(query.Get(RequestParamCodeChallengeMethod)),
		LoginHint:           utils.SanitizeString(query.Get(RequestParamLoginHint)),
		ClientState:         utils.SanitizeString(query.Get(RequestParamState)),
		CallbackURL:         h.callbackURL(r),
	}

	redirectURL, flowErr := h.service.Authorize(r.Context(), req)
	if flowErr != nil {
		h.writeFlowError(w, r, flowErr)
		return
	}

	http.Redirect(w, r, redirectURL, http.StatusFound)
}

// HandleCallbackRequest handles GET /oauth/{id}/callback.
func (h *flowHandler) HandleCallbackRequest(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &CallbackRequest{
		State:       utils.SanitizeString(query.Get(RequestParamState)),
		Code:        query.Get(RequestParamCode),
		CallbackURL: h.callbackURL(r),
	}

	redirectURL, flowErr := h.service.Callback(r.Context(), req)
	if flowErr != nil {
		h.writeFlowError(w, r, flowErr)
		return
	}

	http.Redirect(w, r, redirectURL, http.StatusFound)
}

// HandleFinalizeLinkRequest handles POST /oauth/{id}/finalize-link.
func (h *flowHandler) HandleFinalizeLinkRequest(w http.ResponseWriter, r *http.Request) {
	user, err := h.resolver.ResolveUser(r)
	if err != nil {
		log.GetLogger().Error("Failed to resolve user from request", log.Error(err))
		utils.WriteJSONError(w, ErrorServerError, "Failed to resolve user",
			http.StatusInternalServerError, nil)
		return
	}

	body, err := utils.DecodeJSONBody[finalizeLinkRequest](r)
	if err != nil {
		utils.WriteJSONError(w, ErrorInvalidRequest, "Invalid request body",
			http.StatusBadRequest, nil)
		return
	}

	flowErr := h.service.FinalizeLink(r.Context(), user, body.LinkCode, body.CodeVerifier,
		h.callbackURL(r))
	if flowErr != nil {
		h.writeFlowError(w, r, flowErr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{"message": "Link finalized"}); err != nil {
		log.GetLogger().Error("Failed to write finalize-link response", log.Error(err))
	}
}

// callbackURL derives this broker's provider-facing callback endpoint from the
// inbound request.
func (h *flowHandler) callbackURL(r *http.Request) string {
	scheme := "http"
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/oauth/" + h.service.Provider().ID() + "/callback"
}

// writeFlowError delivers a flow error on its required channel: a redirect
// carrying error parameters once a trusted redirect URI is known, a bare JSON
// response otherwise.
func (h *flowHandler) writeFlowError(w http.ResponseWriter, r *http.Request, flowErr *FlowError) {
	if flowErr.RedirectURI != "" {
		redirectURL, err := appendQueryParams(flowErr.RedirectURI, map[string]string{
			RequestParamError:            flowErr.Error,
			RequestParamErrorDescription: flowErr.ErrorDescription,
		})
		if err == nil {
			http.Redirect(w, r, redirectURL, http.StatusFound)
			return
		}
		log.GetLogger().Error("Failed to build error redirect URL", log.Error(err))
	}

	statusCode := flowErr.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusBadRequest
	}
	utils.WriteJSONError(w, flowErr.Error, flowErr.ErrorDescription, statusCode, nil)
}
