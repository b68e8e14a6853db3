package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordHTTPRequest_IncrementsCounterWithLabels はリクエストカウンタが
// ラベル付きで増加することを検証する。
func TestRecordHTTPRequest_IncrementsCounterWithLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest(http.MethodGet, "/tasks", 200, 10*time.Millisecond)
	c.RecordHTTPRequest(http.MethodGet, "/tasks", 200, 20*time.Millisecond)
	c.RecordHTTPRequest(http.MethodPost, "/users", 201, 5*time.Millisecond)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "taskman_http_requests_total" {
			found = true
			if len(mf.GetMetric()) != 2 {
				t.Fatalf("expected 2 label combinations, got %d", len(mf.GetMetric()))
			}
			for _, m := range mf.GetMetric() {
				labels := map[string]string{}
				for _, l := range m.GetLabel() {
					labels[l.GetName()] = l.GetValue()
				}
				switch labels["path"] {
				case "/tasks":
					if m.GetCounter().GetValue() != 2 {
						t.Errorf("/tasks count = %v, want 2", m.GetCounter().GetValue())
					}
					if labels["status"] != "200" {
						t.Errorf("status = %q, want %q", labels["status"], "200")
					}
				case "/users":
					if m.GetCounter().GetValue() != 1 {
						t.Errorf("/users count = %v, want 1", m.GetCounter().GetValue())
					}
					if labels["status"] != "201" {
						t.Errorf("status = %q, want %q", labels["status"], "201")
					}
				default:
					t.Errorf("unexpected path label %q", labels["path"])
				}
			}
		}
	}
	if !found {
		t.Error("taskman_http_requests_total metric not found")
	}
}

// TestRecordHTTPRequest_CountsAuthFailures は401レスポンスが認証失敗カウンタに
// 記録されることを検証する。
func TestRecordHTTPRequest_CountsAuthFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest(http.MethodGet, "/tasks", 401, time.Millisecond)
	c.RecordHTTPRequest(http.MethodGet, "/tasks", 200, time.Millisecond)
	c.RecordHTTPRequest(http.MethodPost, "/users/logout", 401, time.Millisecond)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "taskman_auth_failures_total" {
			found = true
			val := mf.GetMetric()[0].GetCounter().GetValue()
			if val != 2 {
				t.Errorf("auth_failures_total = %v, want 2", val)
			}
		}
	}
	if !found {
		t.Error("taskman_auth_failures_total metric not found")
	}
}

// TestHTTPMiddleware_RecordsRoutePattern はミドルウェアがchiのルートパターンを
// pathラベルに使うことを検証する。
func TestHTTPMiddleware_RecordsRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	r := chi.NewRouter()
	r.Use(c.HTTPMiddleware())
	r.Get("/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/tasks/abc-123", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() != "taskman_http_requests_total" {
			continue
		}
		found = true
		labels := map[string]string{}
		for _, l := range mf.GetMetric()[0].GetLabel() {
			labels[l.GetName()] = l.GetValue()
		}
		if labels["path"] != "/tasks/{id}" {
			t.Errorf("path label = %q, want %q", labels["path"], "/tasks/{id}")
		}
		if labels["status"] != "404" {
			t.Errorf("status label = %q, want %q", labels["status"], "404")
		}
	}
	if !found {
		t.Error("taskman_http_requests_total metric not found")
	}
}

// TestHandler_ReturnsPrometheusFormat はスクレイプハンドラーがPrometheus形式で
// 返すことを検証する。
func TestHandler_ReturnsPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordHTTPRequest(http.MethodGet, "/health", 200, time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	body, err := io.ReadAll(w.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if !strings.Contains(string(body), "taskman_http_requests_total") {
		t.Error("expected taskman_http_requests_total in scrape output")
	}
}
