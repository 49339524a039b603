package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"notes-api/internal/platform/logger"
	"notes-api/internal/ports/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeVerifier struct {
	calls int
}

func (f *fakeVerifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	f.calls++
	if token != "good" {
		return nil, errors.New("rejected")
	}
	return auth.Claims{"sub": "user-1"}, nil
}

func TestRequireAuth(t *testing.T) {
	cases := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
		wantCalls  int
	}{
		{"no header", "", http.StatusUnauthorized, `{"error":"Missing or invalid Authorization header"}`, 0},
		{"basic scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, `{"error":"Missing or invalid Authorization header"}`, 0},
		{"bearer without token", "Bearer ", http.StatusUnauthorized, `{"error":"Missing or invalid Authorization header"}`, 0},
		{"rejected token", "Bearer bad", http.StatusUnauthorized, `{"error":"Invalid or expired token"}`, 1},
		{"accepted token", "Bearer good", http.StatusOK, `user-1`, 1},
		{"scheme is case insensitive", "bearer good", http.StatusOK, `user-1`, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := &fakeVerifier{}
			h := RequireAuth(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				claims, ok := GetClaims(r.Context())
				require.True(t, ok)
				_, _ = w.Write([]byte(claims.Subject()))
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
				assert.JSONEq(t, tc.wantBody, rec.Body.String())
			} else {
				assert.Equal(t, tc.wantBody, rec.Body.String())
			}
			assert.Equal(t, tc.wantCalls, v.calls)
		})
	}
}

func TestRequireAuth_NilVerifierRejects(t *testing.T) {
	h := RequireAuth(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid or expired token"}`, rec.Body.String())
}

func TestGetClaims_Missing(t *testing.T) {
	c, ok := GetClaims(context.Background())
	assert.False(t, ok)
	assert.Nil(t, c)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))
}

func TestRecover(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.NewFromZap(zap.New(core))

	h := Recover(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error","details":"kaboom"}`, rec.Body.String())

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "unhandled panic", logs.All()[0].Message)
	assert.Equal(t, "/boom", logs.All()[0].ContextMap()["path"])
}

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.NewFromZap(zap.New(core))

	h := RequestID(AccessLog(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/notes?x=1", nil))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "/api/notes?x=1", fields["path"])
	assert.EqualValues(t, http.StatusCreated, fields["status"])
	assert.Equal(t, rec.Header().Get(HeaderRequestID), fields["request_id"])
}
