package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// --- ヘルパー ---

// counterValue は指定された名前のカウンタの値を返す。見つからない場合は-1。
func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() == name {
			var total float64
			for _, m := range mf.GetMetric() {
				total += m.GetCounter().GetValue()
			}
			return total
		}
	}
	return -1
}

// --- テスト ---

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordHTTPRequest_IncrementsCounter はHTTPリクエストカウンタが増加することを検証する。
func TestRecordHTTPRequest_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest(http.MethodGet, "/contacts", http.StatusOK)
	c.RecordHTTPRequest(http.MethodGet, "/contacts", http.StatusOK)
	c.RecordHTTPRequest(http.MethodPost, "/contacts", http.StatusCreated)

	if val := counterValue(t, reg, "contactman_http_requests_total"); val != 3 {
		t.Errorf("http_requests_total = %v, want 3", val)
	}
}

// TestRecordLogin_LabelsByMethod は認証方式別にログインが記録されることを検証する。
func TestRecordLogin_LabelsByMethod(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLogin("password")
	c.RecordLogin("google")
	c.RecordLogin("google")

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() != "contactman_logins_total" {
			continue
		}
		found = true
		if len(mf.GetMetric()) != 2 {
			t.Fatalf("expected 2 labeled series, got %d", len(mf.GetMetric()))
		}
		for _, m := range mf.GetMetric() {
			method := ""
			for _, l := range m.GetLabel() {
				if l.GetName() == "method" {
					method = l.GetValue()
				}
			}
			val := m.GetCounter().GetValue()
			switch method {
			case "password":
				if val != 1 {
					t.Errorf("logins_total{method=password} = %v, want 1", val)
				}
			case "google":
				if val != 2 {
					t.Errorf("logins_total{method=google} = %v, want 2", val)
				}
			default:
				t.Errorf("unexpected method label %q", method)
			}
		}
	}
	if !found {
		t.Error("contactman_logins_total metric not found")
	}
}

// TestRecordRegistration_IncrementsCounter は登録カウンタが増加することを検証する。
func TestRecordRegistration_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRegistration()

	if val := counterValue(t, reg, "contactman_registrations_total"); val != 1 {
		t.Errorf("registrations_total = %v, want 1", val)
	}
}

// TestHTTPMiddleware_RecordsRequestAndLatency はミドルウェアがメトリクスを記録することを検証する。
func TestHTTPMiddleware_RecordsRequestAndLatency(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	mw := c.HTTPMiddleware(func(r *http.Request) string { return "/contacts/{contactID}" })
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/contacts/abc", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	foundRequests := false
	foundLatency := false
	for _, mf := range metrics {
		switch mf.GetName() {
		case "contactman_http_requests_total":
			foundRequests = true
			m := mf.GetMetric()[0]
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["path"] != "/contacts/{contactID}" {
				t.Errorf("path label = %q, want normalized pattern", labels["path"])
			}
			if labels["status_code"] != "404" {
				t.Errorf("status_code label = %q, want 404", labels["status_code"])
			}
		case "contactman_http_latency_seconds":
			foundLatency = true
			if mf.GetMetric()[0].GetHistogram().GetSampleCount() != 1 {
				t.Errorf("latency sample count = %d, want 1", mf.GetMetric()[0].GetHistogram().GetSampleCount())
			}
		}
	}
	if !foundRequests {
		t.Error("contactman_http_requests_total metric not found")
	}
	if !foundLatency {
		t.Error("contactman_http_latency_seconds metric not found")
	}
}

// TestHandler_ServesPrometheusFormat は/metricsがPrometheus形式で応答することを検証する。
func TestHandler_ServesPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordRegistration()

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("failed to scrape metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if !strings.Contains(string(body), "contactman_registrations_total 1") {
		t.Errorf("expected contactman_registrations_total in scrape output:\n%s", body)
	}
}
