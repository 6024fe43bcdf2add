package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/massmailer/pkg/health"
)

func TestLivenessHandler(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	health.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK", rec.Body.String())
}

func TestReadinessHandler_AllHealthy(t *testing.T) {
	t.Parallel()

	checks := health.Checks{
		"transport": func(context.Context) error { return nil },
	}

	rec := httptest.NewRecorder()
	health.ReadinessHandler(checks)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK", rec.Body.String())
}

func TestReadinessHandler_Failure(t *testing.T) {
	t.Parallel()

	checks := health.Checks{
		"transport": func(context.Context) error { return errors.New("connection refused") },
		"workspace": func(context.Context) error { return nil },
	}

	req := httptest.NewRequest(http.MethodGet, "/readyz?format=json", nil)
	rec := httptest.NewRecorder()
	health.ReadinessHandler(checks)(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp health.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, health.StatusUnhealthy, resp.Status)
	require.Equal(t, health.StatusUnhealthy, resp.Checks["transport"].Status)
	require.Equal(t, "connection refused", resp.Checks["transport"].Error)
	require.Equal(t, health.StatusHealthy, resp.Checks["workspace"].Status)
}

func TestReadinessHandler_NoChecks(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	health.ReadinessHandler(nil)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestReadinessHandler_Timeout(t *testing.T) {
	t.Parallel()

	checks := health.Checks{
		"slow": func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}

	rec := httptest.NewRecorder()
	handler := health.ReadinessHandler(checks, health.WithTimeout(10*time.Millisecond))
	handler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
