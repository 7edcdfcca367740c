package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

const testSecret = "test-secret"

func authProbe(t *testing.T) (http.Handler, *string, *string) {
	t.Helper()
	var gotID, gotName string
	h := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = GetUserID(r.Context())
		gotName = GetUsername(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	return h, &gotID, &gotName
}

func TestAuthBearerHeader(t *testing.T) {
	token, err := IssueToken(testSecret, "u1", "ann")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	h, gotID, gotName := authProbe(t)
	req := httptest.NewRequest(http.MethodGet, "/ws/chat", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if *gotID != "u1" || *gotName != "ann" {
		t.Fatalf("context identity = (%q, %q)", *gotID, *gotName)
	}
}

func TestAuthQueryParamToken(t *testing.T) {
	token, err := IssueToken(testSecret, "u1", "ann")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	h, gotID, _ := authProbe(t)
	req := httptest.NewRequest(http.MethodGet, "/ws/chat?token="+token, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if *gotID != "u1" {
		t.Fatalf("user id = %q, want u1", *gotID)
	}
}

func TestAuthRejects(t *testing.T) {
	wrongSecret, _ := IssueToken("other-secret", "u1", "ann")
	noSubject, _ := IssueToken(testSecret, "", "ann")

	tests := []struct {
		name    string
		prepare func(r *http.Request)
	}{
		{"missing credentials", func(r *http.Request) {}},
		{"malformed header", func(r *http.Request) { r.Header.Set("Authorization", "Token abc") }},
		{"garbage token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer not-a-jwt") }},
		{"wrong secret", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+wrongSecret) }},
		{"empty subject", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+noSubject) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _ := authProbe(t)
			req := httptest.NewRequest(http.MethodGet, "/ws/chat", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"ok", "hello", false},
		{"empty", "", true},
		{"too long", string(make([]byte, 10001)), true},
		{"invalid utf8", string([]byte{0xff, 0xfe}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateContent(tt.content); (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}
