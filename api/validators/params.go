package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/angelmondragon/staybook-backend/pkg/errors"
)

// Booking, partner and user ids are short codes.
const maxPathParam = 64

// PathParam returns the trimmed chi URL parameter, which must not be blank.
func PathParam(r *http.Request, key string) (string, error) {
	value := SanitizeString(chi.URLParam(r, key), maxPathParam)
	if value == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "path parameter required").
			WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

// ParseQueryBool accepts the strconv.ParseBool spellings; absent means def.
func ParseQueryBool(r *http.Request, key string, def bool) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be true or false").
			WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

// SanitizeString trims input and keeps at most maxLen runes; maxLen <= 0
// only trims.
func SanitizeString(input string, maxLen int) string {
	s := strings.TrimSpace(input)
	if maxLen > 0 {
		if runes := []rune(s); len(runes) > maxLen {
			s = string(runes[:maxLen])
		}
	}
	return s
}
