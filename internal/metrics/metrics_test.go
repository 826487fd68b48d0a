package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

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

// TestRecordRegistration_IncrementsCounter は登録カウンタが結果ラベル別に
// 増加することを検証する。
func TestRecordRegistration_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRegistration(ResultSuccess)
	c.RecordRegistration(ResultSuccess)
	c.RecordRegistration(ResultConflict)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "skillboost_registrations_total" {
			found = true
			if len(mf.GetMetric()) != 2 {
				t.Fatalf("expected 2 label combinations, got %d", len(mf.GetMetric()))
			}
		}
	}
	if !found {
		t.Error("skillboost_registrations_total metric not found")
	}
}

// TestRecordLogin_IncrementsCounter はログインカウンタがモード・結果ラベル別に
// 増加することを検証する。
func TestRecordLogin_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLogin("credentials", ResultSuccess)
	c.RecordLogin("oauth", ResultAuthFailed)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "skillboost_logins_total" {
			found = true
			if len(mf.GetMetric()) != 2 {
				t.Errorf("expected 2 label combinations, got %d", len(mf.GetMetric()))
			}
		}
	}
	if !found {
		t.Error("skillboost_logins_total metric not found")
	}
}

// TestRecordGuardDecision_MapsToLabels はガード判定がallowed/deniedラベルに
// 対応付けられることを検証する。
func TestRecordGuardDecision_MapsToLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordGuardDecision(true)
	c.RecordGuardDecision(false)
	c.RecordGuardDecision(false)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	for _, mf := range metrics {
		if mf.GetName() != "skillboost_guard_decisions_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() != "decision" {
					continue
				}
				val := m.GetCounter().GetValue()
				switch label.GetValue() {
				case "allowed":
					if val != 1 {
						t.Errorf("allowed = %v, want 1", val)
					}
				case "denied":
					if val != 2 {
						t.Errorf("denied = %v, want 2", val)
					}
				}
			}
		}
		return
	}
	t.Error("skillboost_guard_decisions_total metric not found")
}

// TestRecordHashDuration_ObservesHistogram はハッシュレイテンシがヒストグラムに
// 記録されることを検証する。
func TestRecordHashDuration_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHashDuration(50 * time.Millisecond)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "skillboost_password_hash_seconds" {
			found = true
			if got := mf.GetMetric()[0].GetHistogram().GetSampleCount(); got != 1 {
				t.Errorf("sample count = %d, want 1", got)
			}
		}
	}
	if !found {
		t.Error("skillboost_password_hash_seconds metric not found")
	}
}

// TestHandler_ExposesMetrics は/metricsハンドラーが登録済みメトリクスを
// 出力することを検証する。
func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordHTTPStatus(200)

	handler := Handler(reg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if !strings.Contains(string(body), "skillboost_http_status_total") {
		t.Error("expected skillboost_http_status_total in metrics output")
	}
}
