package validators

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	pkgerrors "github.com/angelmondragon/staybook-backend/pkg/errors"
)

// MaxJSONBody bounds DecodeJSONBody.
const MaxJSONBody = 1 << 20

// DecodeJSONBody decodes exactly one JSON object into dest, rejecting unknown
// fields, then validates it.
func DecodeJSONBody(r *http.Request, dest any) error {
	body, err := ReadBody(r, MaxJSONBody)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").
			WithDetails(map[string]any{"error": err.Error()})
	}
	if dec.More() {
		return pkgerrors.New(pkgerrors.CodeValidation, "request body must hold a single JSON object")
	}
	return Struct(dest)
}

// ReadBody drains the body, failing when it is blank or longer than limit.
func ReadBody(r *http.Request, limit int64) ([]byte, error) {
	if r.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request body required")
	}
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body")
	}
	switch {
	case int64(len(body)) > limit:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request body too large").
			WithDetails(map[string]any{"limit_bytes": limit})
	case len(bytes.TrimSpace(body)) == 0:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request body required")
	}
	return body, nil
}
