package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestRespondError(t *testing.T) {
	tests := []struct {
		status   int
		wantType string
	}{
		{http.StatusNotFound, "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.4"},
		{http.StatusGone, "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.9"},
		{http.StatusServiceUnavailable, "https://datatracker.ietf.org/doc/html/rfc7231#section-6.6.4"},
		{http.StatusTeapot, "about:blank"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondError(rec, tt.status, "detail text")

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Errorf("Content-Type = %q", ct)
			}

			var body map[string]interface{}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["type"] != tt.wantType || body["detail"] != "detail text" {
				t.Errorf("body = %v", body)
			}
		})
	}
}

func TestRespondErrorWithExtras(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorWithExtras(rec, http.StatusConflict, "exists", map[string]interface{}{"resource_id": "3"})

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["resource_id"] != "3" || body["status"] != float64(http.StatusConflict) {
		t.Errorf("body = %v", body)
	}
}

func TestOptionalValues(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?folder_id=12&version=3&memo=hi&empty=&bad=x&flat=true", nil)

	folderID, err := OptionalInt64(r, "folder_id")
	if err != nil || folderID == nil || *folderID != 12 {
		t.Errorf("OptionalInt64(folder_id) = %v, %v", folderID, err)
	}
	version, err := OptionalInt(r, "version")
	if err != nil || version == nil || *version != 3 {
		t.Errorf("OptionalInt(version) = %v, %v", version, err)
	}
	if missing, err := OptionalInt64(r, "absent"); missing != nil || err != nil {
		t.Errorf("OptionalInt64(absent) = %v, %v", missing, err)
	}
	if empty, err := OptionalInt64(r, "empty"); empty != nil || err != nil {
		t.Errorf("OptionalInt64(empty) = %v, %v", empty, err)
	}
	if _, err := OptionalInt64(r, "bad"); err == nil {
		t.Error("OptionalInt64(bad) succeeded")
	}
	if memo := OptionalString(r, "memo"); memo == nil || *memo != "hi" {
		t.Errorf("OptionalString(memo) = %v", memo)
	}
	if empty := OptionalString(r, "empty"); empty != nil {
		t.Errorf("OptionalString(empty) = %v", *empty)
	}
	if !QueryBool(r, "flat", false) || QueryBool(r, "bad", false) {
		t.Error("QueryBool parsed incorrectly")
	}
}

func TestFormValueReadsPostBody(t *testing.T) {
	form := url.Values{"name": {"  docs  "}}
	r := httptest.NewRequest(http.MethodPost, "/folders", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	name, ok := FormValue(r, "name")
	if !ok || name != "docs" {
		t.Errorf("FormValue = %q, %v", name, ok)
	}
}
