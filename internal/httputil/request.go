package httputil

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// FormValue returns a trimmed query or form value and whether it was
// present and non-empty
func FormValue(r *http.Request, name string) (string, bool) {
	value := strings.TrimSpace(r.FormValue(name))
	return value, value != ""
}

// OptionalString returns nil for an absent or empty value
func OptionalString(r *http.Request, name string) *string {
	value := r.FormValue(name)
	if value == "" {
		return nil
	}
	return &value
}

// OptionalInt64 parses an optional integer value. Absent or empty is nil.
func OptionalInt64(r *http.Request, name string) (*int64, error) {
	raw, ok := FormValue(r, name)
	if !ok {
		return nil, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &value, nil
}

// OptionalInt parses an optional int value. Absent or empty is nil.
func OptionalInt(r *http.Request, name string) (*int, error) {
	raw, ok := FormValue(r, name)
	if !ok {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &value, nil
}

// QueryBool parses a boolean query value, falling back to def
func QueryBool(r *http.Request, name string, def bool) bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return value
}
