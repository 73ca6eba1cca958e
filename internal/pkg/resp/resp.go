/*
Package resp provides helpers for constructing the local API's JSON responses.

It defines a unified envelope carrying a machine-readable error key, a
severity tag, a user-facing message, and an optional data payload, with
wrappers for success and error responses.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"lobbysync/internal/pkg/errs"
	"lobbysync/internal/pkg/logx"
)

// JSONResponse is the standardized envelope returned by the local API.
type JSONResponse struct {
	// Key is the machine-readable error key ("" on success, see errs package).
	Key string `json:"key,omitempty"`

	// Severity tells the rendering layer how to present a failure.
	Severity errs.Severity `json:"severity,omitempty"`

	// Message is the client-friendly status description or error message.
	Message string `json:"message"`

	// Data is the optional response payload.
	Data any `json:"data,omitempty"`
}

// RespondJSON sets the Content-Type and sends the JSON payload.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	response, err := json.Marshal(payload)
	if err != nil {
		logx.Error(err, "Error encoding JSON response", "http_status", httpStatus)

		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(httpStatus)
	w.Write(response)
}

// RespondSuccess sends a successful HTTP response (HTTP 200 OK).
func RespondSuccess(w http.ResponseWriter, r *http.Request, data any) {
	res := JSONResponse{
		Message: "success",
		Data:    data,
	}
	RespondJSON(w, r, http.StatusOK, res)
}

// RespondError sends an HTTP response describing a typed failure.
// Non-typed errors are wrapped as errs.KeyUnknown so the rendering layer
// always receives a key and severity.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	customErr, ok := err.(*errs.CustomError)
	if !ok || customErr == nil {
		customErr = errs.NewError(errs.KeyUnknown, err)
	}

	res := JSONResponse{
		Key:      customErr.Key,
		Severity: customErr.Severity,
		Message:  customErr.Message,
	}
	RespondJSON(w, r, customErr.Status, res)
}
