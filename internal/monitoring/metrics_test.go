package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInitIdempotentAndExposed(t *testing.T) {
	Init()
	Init()
	ClientAggregations.WithLabelValues("list", "ok").Inc()

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "client_aggregations_total") {
		t.Fatalf("expected client_aggregations_total in exposition")
	}
}

func TestCounterValue(t *testing.T) {
	before := testutil.ToFloat64(ClientCacheLookups.WithLabelValues("hit"))
	ClientCacheLookups.WithLabelValues("hit").Inc()
	if got := testutil.ToFloat64(ClientCacheLookups.WithLabelValues("hit")); got != before+1 {
		t.Fatalf("expected %v got %v", before+1, got)
	}
}
