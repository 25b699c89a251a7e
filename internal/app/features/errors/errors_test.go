package errors_test

import (
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	uierrors "github.com/glrs/lighthouse/internal/app/features/errors"
	"github.com/glrs/lighthouse/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogServerError_HidesCause(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	el := uierrors.NewErrorLogger(zap.New(core))

	req := testutil.NewAuthenticatedRequest("GET", "/api/checkins", testutil.TestUser{ID: "u1", Role: "pir"})
	rec := testutil.NewRecorder()
	el.LogServerError(rec, req, "list check-ins failed", stderrors.New("connection reset"), "")

	rec.AssertStatus(t, http.StatusInternalServerError)
	rec.AssertContains(t, "internal error")
	if got := rec.Body.String(); strings.Contains(got, "connection reset") {
		t.Errorf("cause leaked to client: %s", got)
	}

	entries := logs.FilterMessage("list check-ins failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["user_id"] != "u1" || ctx["path"] != "/api/checkins" {
		t.Errorf("log context: %v", ctx)
	}
}

func TestLogBadRequest(t *testing.T) {
	el := uierrors.NewErrorLogger(zap.NewNop())
	rec := testutil.NewRecorder()
	el.LogBadRequest(rec, httptest.NewRequest("POST", "/", nil), "decode failed", nil, "invalid JSON")
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "invalid JSON")
}

func TestLogForbidden(t *testing.T) {
	el := uierrors.NewErrorLogger(zap.NewNop())
	rec := testutil.NewRecorder()
	el.LogForbidden(rec, httptest.NewRequest("GET", "/", nil), "coach outside caseload")
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestFallbackHandlers(t *testing.T) {
	h := uierrors.NewHandler()

	rec := testutil.NewRecorder()
	h.NotFound(rec, httptest.NewRequest("GET", "/nope", nil))
	rec.AssertStatus(t, http.StatusNotFound)

	rec = testutil.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest("DELETE", "/health", nil))
	rec.AssertStatus(t, http.StatusMethodNotAllowed)
}
