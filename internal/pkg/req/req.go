/*
Package req provides helpers for parsing local API request bodies.

It binds JSON payloads with strict field checking and maps parse failures to
the application's typed errors.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"lobbysync/internal/pkg/errs"
)

// BindJSON binds the JSON request body to the destination struct dst.
// Unknown fields and trailing content are rejected.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.KeyUnsupportedMediaType)
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.KeyInvalidJSON)
	}

	if decoder.More() {
		return errs.NewError(errs.KeyExtraContent)
	}

	return nil
}
