package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func recordedCookies(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	cookies := make(map[string]*http.Cookie)
	for _, c := range rec.Result().Cookies() {
		cookies[c.Name] = c
	}
	return cookies
}

func TestSetAuthCookiesSetsProvidedTokens(t *testing.T) {
	auth := NewAuthService(nil, "test-secret")
	rec := httptest.NewRecorder()

	auth.SetAuthCookies(rec, "access-abc", "refresh-def", "permanent-ghi")

	cookies := recordedCookies(rec)
	tests := []struct {
		name  string
		value string
	}{
		{"access_token", "access-abc"},
		{"refresh_token", "refresh-def"},
		{"permanent_token", "permanent-ghi"},
	}
	for _, tt := range tests {
		cookie, ok := cookies[tt.name]
		if !ok {
			t.Errorf("cookie %s was not set", tt.name)
			continue
		}
		if cookie.Value != tt.value {
			t.Errorf("cookie %s = %q, expected %q", tt.name, cookie.Value, tt.value)
		}
		if !cookie.HttpOnly {
			t.Errorf("cookie %s is not HttpOnly", tt.name)
		}
	}
}

// A refresh issues a rotated refresh token alongside the new access token.
// The client must receive the replacement cookie, and the untouched
// permanent token cookie must not be clobbered with an empty value.
func TestSetAuthCookiesPropagatesRotatedRefreshToken(t *testing.T) {
	auth := NewAuthService(nil, "test-secret")
	rec := httptest.NewRecorder()

	auth.SetAuthCookies(rec, "access-new", "refresh-rotated", "")

	cookies := recordedCookies(rec)
	refresh, ok := cookies["refresh_token"]
	if !ok {
		t.Fatal("rotated refresh token cookie was not set")
	}
	if refresh.Value != "refresh-rotated" {
		t.Errorf("refresh_token = %q, expected the rotated token", refresh.Value)
	}
	if _, ok := cookies["permanent_token"]; ok {
		t.Error("permanent_token cookie was overwritten with an empty value")
	}
}

func TestSetAuthCookiesSkipsAllEmptyTokens(t *testing.T) {
	auth := NewAuthService(nil, "test-secret")
	rec := httptest.NewRecorder()

	auth.SetAuthCookies(rec, "", "", "")

	if got := len(rec.Result().Cookies()); got != 0 {
		t.Errorf("got %d cookies, expected none", got)
	}
}

func TestMiddlewareRejectsRequestWithoutTokens(t *testing.T) {
	auth := NewAuthService(nil, "test-secret")
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler was called without authentication")
	}))

	req := httptest.NewRequest("GET", "/api/v1/sessions", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, expected %d", rec.Code, http.StatusUnauthorized)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not JSON: %v", err)
	}
	if body["error"] != "Unauthorized" {
		t.Errorf("error = %v, expected Unauthorized", body["error"])
	}
}
