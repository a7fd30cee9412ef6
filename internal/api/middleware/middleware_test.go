package middleware

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "req-42", seen)
}

func TestRequestID_ReplacesUnsafeHeader(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	for _, bad := range []string{"has space", strings.Repeat("a", 200), "tab\there"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", bad)
		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.NotEqual(t, bad, seen)
		assert.Len(t, seen, 36)
	}
}

func TestMaxBodyBytes(t *testing.T) {
	h := MaxBodyBytes(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("much too large")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "request body too large")
	assert.Contains(t, w.Body.String(), "BODY_TOO_LARGE")
}

func TestMaxBodyBytes_ChunkedAndBodyless(t *testing.T) {
	h := MaxBodyBytes(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader("much too large"))
	req.ContentLength = -1
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tools", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAccessLog_RecordsAccount(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Writer()
	flags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prev)
		log.SetFlags(flags)
	})

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WithAccountID(r.Context(), "acct-9")
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("hi"))
	})

	req := httptest.NewRequest(http.MethodGet, "/tools", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	AccessLog(inner).ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	require.NotEmpty(t, line)
	assert.Contains(t, line, `"account_id":"acct-9"`)
	assert.Contains(t, line, `"status":418`)
	assert.Contains(t, line, `"bytes":2`)
	assert.Contains(t, line, `"remote_addr":"203.0.113.7"`)
	assert.Contains(t, line, `"path":"/tools"`)
}

func TestSpanStatus(t *testing.T) {
	assert.Equal(t, sentry.SpanStatusOK, spanStatus(http.StatusOK))
	assert.Equal(t, sentry.SpanStatusOK, spanStatus(http.StatusNoContent))
	assert.Equal(t, sentry.SpanStatusResourceExhausted, spanStatus(http.StatusRequestEntityTooLarge))
	assert.Equal(t, sentry.SpanStatusResourceExhausted, spanStatus(http.StatusTooManyRequests))
	assert.Equal(t, sentry.SpanStatusInvalidArgument, spanStatus(http.StatusUnprocessableEntity))
	assert.Equal(t, sentry.SpanStatusInternalError, spanStatus(http.StatusBadGateway))
}

func TestSentryMiddleware_PassesThroughWithoutClient(t *testing.T) {
	r := chi.NewRouter()
	r.Use(SentryMiddleware)
	r.Get("/tools/{slug}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tools/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
