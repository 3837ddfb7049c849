package core

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shorewatch/internal/config"
	"shorewatch/internal/types"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, err := NewServer(&config.Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return srv
}

func TestNewServerRejectsNilDeps(t *testing.T) {
	_, err := NewServer(nil, slog.Default())
	assert.Error(t, err)

	_, err = NewServer(&config.Config{}, nil)
	assert.Error(t, err)
}

func TestRequestIDAssignedAndEchoed(t *testing.T) {
	srv := newTestServer(t)
	srv.Router().Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, r, http.StatusOK, APIResponse{Data: types.GetRequestID(r.Context())})
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, rec.Header().Get("X-Request-Id"), resp.Data)
}

func TestRequestIDHonorsInboundHeader(t *testing.T) {
	srv := newTestServer(t)
	srv.Router().Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", "req-abc")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "req-abc", rec.Header().Get("X-Request-Id"))
}

func TestRecovererProducesStructured500(t *testing.T) {
	srv := newTestServer(t)
	srv.Router().Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("unexpected")
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp APIErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(types.ErrCodeInternalUnexpected), resp.Error.Code)
	assert.NotEmpty(t, resp.Error.RequestID)
}

func TestErrorMapsAppErrorStatus(t *testing.T) {
	srv := newTestServer(t)
	srv.Router().Get("/missing", func(w http.ResponseWriter, r *http.Request) {
		Error(w, r, types.NewAppError(types.ErrCodeNotFoundZone, "no such zone", nil))
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp APIErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(types.ErrCodeNotFoundZone), resp.Error.Code)
	assert.Equal(t, "no such zone", resp.Error.Message)
}

func TestErrorHidesGenericErrorText(t *testing.T) {
	srv := newTestServer(t)
	srv.Router().Get("/oops", func(w http.ResponseWriter, r *http.Request) {
		Error(w, r, errors.New("pq: connection refused on 10.0.0.3"))
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oops", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.3")
}

func TestDecodeJSONRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"empty body":     "",
		"malformed":      "{not json",
		"trailing value": `{"a":1}{"b":2}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
			var dst map[string]any
			err := DecodeJSON(httptest.NewRecorder(), req, &dst)
			require.Error(t, err)

			var appErr *types.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, types.ErrCodeValidationBadPayload, appErr.Code)
		})
	}
}

type stubProbe struct {
	name string
	err  error
}

func (p stubProbe) Name() string                  { return p.name }
func (p stubProbe) Check(_ context.Context) error { return p.err }

func TestHealthAllProbesPass(t *testing.T) {
	srv := newTestServer(t)
	srv.HealthProbes = []HealthProbe{stubProbe{name: "store"}, stubProbe{name: "vision"}}
	srv.Router().Get("/health", srv.HandleHealth)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestHealthFailingProbeYields503(t *testing.T) {
	srv := newTestServer(t)
	srv.HealthProbes = []HealthProbe{
		stubProbe{name: "store"},
		stubProbe{name: "vision", err: errors.New("breaker open")},
	}
	srv.Router().Get("/health", srv.HandleHealth)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "breaker open")
}
