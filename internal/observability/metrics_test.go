package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	return rr.Body.String()
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/api/v1/groups/{groupID}")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/groups/abc", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}

	body := scrape(t, metrics)
	if !strings.Contains(body, `settleup_http_requests_total{code="418",route="/api/v1/groups/{groupID}"} 1`) {
		t.Fatalf("expected metrics to record request, got: %s", body)
	}
	if !strings.Contains(body, `settleup_http_request_duration_seconds_bucket{route="/api/v1/groups/{groupID}"`) {
		t.Fatalf("expected duration histogram to be present, got: %s", body)
	}
}

func TestLedgerMetrics(t *testing.T) {
	metrics := NewMetrics()

	metrics.ShareResolution(OutcomeResolved, "")
	metrics.ShareResolution(OutcomeResolved, "")
	metrics.ShareResolution(OutcomeRejected, "PERCENTAGE_SUM_MISMATCH")
	metrics.SettlementPlan(2)

	if got := testutil.ToFloat64(metrics.shareResolutions.WithLabelValues(OutcomeResolved, "none")); got != 2 {
		t.Errorf("resolved count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.shareResolutions.WithLabelValues(OutcomeRejected, "PERCENTAGE_SUM_MISMATCH")); got != 1 {
		t.Errorf("rejected count = %v, want 1", got)
	}

	body := scrape(t, metrics)
	if !strings.Contains(body, "settleup_settlement_transfers_count 1") {
		t.Fatalf("expected settlement histogram sample, got: %s", body)
	}
}

func TestNilMetrics(t *testing.T) {
	var metrics *Metrics

	// Recording on nil metrics is a no-op.
	metrics.ShareResolution(OutcomeResolved, "")
	metrics.SettlementPlan(1)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	if metrics.Middleware(next) == nil {
		t.Fatal("expected middleware to return next handler")
	}

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}
