package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authedHandler(t *testing.T) http.Handler {
	t.Helper()
	users := map[string]User{
		"key-admin":  {Name: "ops", Role: "admin"},
		"key-viewer": {Name: "viewer", Role: "viewer"},
	}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := GetUserFromContext(r.Context())
		require.True(t, ok)
		w.Write([]byte(u.Name))
	})
	return APIKeyAuth(users)(next)
}

func TestAPIKeyAuth(t *testing.T) {
	h := authedHandler(t)

	tests := []struct {
		name   string
		header string
		code   int
		body   string
	}{
		{"bearer format", "Bearer key-admin", http.StatusOK, "ops"},
		{"bare key format", "key-viewer", http.StatusOK, "viewer"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"unknown key", "Bearer nope", http.StatusUnauthorized, ""},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/admin/clusters", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.code, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestAPIKeyAuthSkipsHealth(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	h := APIKeyAuth(map[string]User{})(next)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, called)
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := APIKeyAuth(map[string]User{
		"key-admin":  {Name: "ops", Role: "admin"},
		"key-viewer": {Name: "viewer", Role: "viewer"},
	})(RequireAdmin(next))

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/posts", nil)
	req.Header.Set("Authorization", "Bearer key-viewer")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/admin/posts", nil)
	req.Header.Set("Authorization", "Bearer key-admin")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
