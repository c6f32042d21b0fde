package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skillcoder/reconfigurer/internal/logic/reconfig"
)

type fakeEngine struct {
	report      *reconfig.RunReport
	runErr      error
	rollbackErr error
	lastReq     reconfig.PatchRequest
	rollbacks   []string
}

func (e *fakeEngine) Run(_ context.Context, req reconfig.PatchRequest) (*reconfig.RunReport, error) {
	e.lastReq = req

	if e.runErr != nil {
		return nil, e.runErr
	}

	return e.report, nil
}

func (e *fakeEngine) Rollback(_ context.Context, backupID string) error {
	e.rollbacks = append(e.rollbacks, backupID)

	return e.rollbackErr
}

type fakeChecker struct {
	err error
}

func (c *fakeChecker) CheckContext(context.Context) error { return c.err }

func newTestServer(engine *fakeEngine, checker *fakeChecker) *Server {
	return New(slog.Default(), engine, checker, "0")
}

func TestHandleReconfigure(t *testing.T) {
	t.Parallel()

	t.Run("returns the run report", func(t *testing.T) {
		t.Parallel()

		engine := &fakeEngine{report: &reconfig.RunReport{Mode: reconfig.ModeWarning, Processed: 2}}
		srv := newTestServer(engine, &fakeChecker{})

		body := `{"mode":"warning","replicas":3,"cpuLimits":600,"memoryLimits":800}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reconfigure", strings.NewReader(body))
		rec := httptest.NewRecorder()

		srv.handleReconfigure(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, reconfig.ModeWarning, engine.lastReq.Mode)
		require.EqualValues(t, 3, engine.lastReq.Replicas)
		require.EqualValues(t, 600, engine.lastReq.CPULimitsMilli)

		var report reconfig.RunReport
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		require.Equal(t, 2, report.Processed)
	})

	t.Run("defaults replicas to one", func(t *testing.T) {
		t.Parallel()

		engine := &fakeEngine{report: &reconfig.RunReport{}}
		srv := newTestServer(engine, &fakeChecker{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/reconfigure", strings.NewReader(`{"mode":"normal"}`))
		rec := httptest.NewRecorder()

		srv.handleReconfigure(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.EqualValues(t, 1, engine.lastReq.Replicas)
	})

	t.Run("explicit zero replicas is scale to zero", func(t *testing.T) {
		t.Parallel()

		engine := &fakeEngine{report: &reconfig.RunReport{}}
		srv := newTestServer(engine, &fakeChecker{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/reconfigure", strings.NewReader(`{"mode":"normal","replicas":0}`))
		rec := httptest.NewRecorder()

		srv.handleReconfigure(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Zero(t, engine.lastReq.Replicas)
	})

	t.Run("invalid body", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(&fakeEngine{}, &fakeChecker{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/reconfigure", strings.NewReader("{"))
		rec := httptest.NewRecorder()

		srv.handleReconfigure(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("precondition failure", func(t *testing.T) {
		t.Parallel()

		engine := &fakeEngine{runErr: fmt.Errorf("%w: no session", reconfig.ErrPrecondition)}
		srv := newTestServer(engine, &fakeChecker{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/reconfigure", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()

		srv.handleReconfigure(rec, req)

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestHandleRollback(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		engine := &fakeEngine{}
		srv := newTestServer(engine, &fakeChecker{})

		body := `{"backup":"authservice_20240101_000000"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/rollback", strings.NewReader(body))
		rec := httptest.NewRecorder()

		srv.handleRollback(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, []string{"authservice_20240101_000000"}, engine.rollbacks)
	})

	t.Run("missing backup id", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(&fakeEngine{}, &fakeChecker{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/rollback", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()

		srv.handleRollback(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown backup", func(t *testing.T) {
		t.Parallel()

		engine := &fakeEngine{rollbackErr: fmt.Errorf("%w: nope", reconfig.ErrBackupNotFound)}
		srv := newTestServer(engine, &fakeChecker{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/rollback", strings.NewReader(`{"backup":"nope"}`))
		rec := httptest.NewRecorder()

		srv.handleRollback(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleReadyz(t *testing.T) {
	t.Parallel()

	t.Run("ready", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(&fakeEngine{}, &fakeChecker{})

		rec := httptest.NewRecorder()
		srv.handleReadyz(rec, httptest.NewRequest(http.MethodGet, "/-/readyz", nil))

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("upstream context broken", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(&fakeEngine{}, &fakeChecker{err: fmt.Errorf("no session")})

		rec := httptest.NewRecorder()
		srv.handleReadyz(rec, httptest.NewRequest(http.MethodGet, "/-/readyz", nil))

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
