// Package httputil centralizes the JSON plumbing handlers share so error
// envelopes and content types stay consistent across endpoints.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"domcart/pkg/apierrors"
)

// WriteJSON encodes v with the given status. Encoding failures are ignored;
// the status line is already on the wire by then.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates an error to the envelope. Non-apierrors values are
// reported as internal. Internal errors omit error_description.
func WriteError(w http.ResponseWriter, err error) {
	var apiErr apierrors.Error
	if !errors.As(err, &apiErr) {
		apiErr = apierrors.New(apierrors.CodeInternal, "internal error")
	}

	body := map[string]string{"error": string(apiErr.Code)}
	if apiErr.Code != apierrors.CodeInternal && apiErr.Message != "" {
		body["error_description"] = apiErr.Message
	}
	WriteJSON(w, apierrors.ToHTTPStatus(apiErr.Code), body)
}

// DecodeJSON strictly decodes a request body into T.
func DecodeJSON[T any](r *http.Request) (T, error) {
	var v T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, apierrors.New(apierrors.CodeBadRequest, "malformed JSON body")
	}
	return v, nil
}
