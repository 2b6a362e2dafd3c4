package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"xiuh/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func whoAmI() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(uid))
	})
}

func TestAuthContext(t *testing.T) {
	cases := []struct {
		name       string
		token      string
		headers    map[string]string
		wantStatus int
		wantBody   string
	}{
		{"dev mode", "", map[string]string{HeaderUserID: "u1"}, http.StatusOK, "u1"},
		{"no user", "", nil, http.StatusUnauthorized, ""},
		{"gateway ok", "s3cret", map[string]string{HeaderUserID: "u1", HeaderGatewayToken: "s3cret"}, http.StatusOK, "u1"},
		{"gateway missing", "s3cret", map[string]string{HeaderUserID: "u1"}, http.StatusUnauthorized, ""},
		{"gateway wrong", "s3cret", map[string]string{HeaderUserID: "u1", HeaderGatewayToken: "nope"}, http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			AuthContext(tc.token)(whoAmI()).ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantBody != "" {
				assert.Equal(t, tc.wantBody, rec.Body.String())
			}
		})
	}
}

func TestRecover_LogsAndReturns500(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Level: logger.Debug, Format: logger.FormatJSON, Out: &buf})

	h := chimw.RequestID(Recover(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	out := buf.String()
	assert.Contains(t, out, "panic recovered")
	assert.Contains(t, out, "kaboom")
	assert.Contains(t, out, `"path":"/boom"`)
}

func TestRequestIDAndLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Level: logger.Debug, Format: logger.FormatJSON, Out: &buf})

	h := chimw.RequestID(RequestID(AuthContext("")(RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))))

	req := httptest.NewRequest(http.MethodPost, "/pets", nil)
	req.Header.Set(HeaderUserID, "u9")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))

	line := strings.TrimSpace(buf.String())
	assert.Contains(t, line, `"level":"WARN"`)
	assert.Contains(t, line, `"status":418`)
	assert.Contains(t, line, `"user_id":"u9"`)
	assert.Contains(t, line, rec.Header().Get(HeaderRequestID))
}
