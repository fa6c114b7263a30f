package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ayushsingh08-ds/Zephra/internal/config"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		Port:                 "0",
		ModelDir:             t.TempDir(),
		StorageMode:          "local",
		ForecastHorizonHours: 24,
		HistoryHours:         72,
		TestSize:             0.2,
		DefaultLocation:      "New York",
		LocalReportsDir:      t.TempDir(),
		MockupMode:           true,
	}

	s, err := NewServer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func doRequest(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
	}
	return body
}

func TestHealthEndpoint(t *testing.T) {
	s := testServer(t)

	rec := doRequest(t, s, http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["status"] != "healthy" {
		t.Errorf("status field = %v", body["status"])
	}
	if body["model_loaded"] != false {
		t.Error("fresh server should report no model")
	}
}

func TestLocationsEndpoint(t *testing.T) {
	s := testServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/locations")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["count"].(float64) != 10 {
		t.Errorf("count = %v, want 10", body["count"])
	}
}

func TestForecastWithoutModel(t *testing.T) {
	s := testServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/forecast")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d, want 503 before any model is trained", rec.Code)
	}
}

func TestForecastUnknownLocation(t *testing.T) {
	s := testServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/forecast?location=atlantis")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestTrainThenForecast(t *testing.T) {
	s := testServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/model/train?hours=400")
	if rec.Code != http.StatusOK {
		t.Fatalf("train status %d: %s", rec.Code, rec.Body.String())
	}
	trainBody := decodeBody(t, rec)
	if trainBody["success"] != true {
		t.Fatalf("training did not report success: %v", trainBody)
	}
	if _, ok := trainBody["metrics"]; !ok {
		t.Error("training response missing metrics")
	}

	rec = doRequest(t, s, http.MethodGet, "/api/forecast")
	if rec.Code != http.StatusOK {
		t.Fatalf("forecast status %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	forecast, ok := body["forecast"].(map[string]interface{})
	if !ok {
		t.Fatalf("forecast missing from response: %v", body)
	}
	if forecast["predicted_aqi"].(float64) < 0 {
		t.Error("negative predicted AQI")
	}
	if forecast["category"] == "" {
		t.Error("forecast missing category")
	}

	rec = doRequest(t, s, http.MethodGet, "/api/forecast/hourly?hours=6")
	if rec.Code != http.StatusOK {
		t.Fatalf("hourly status %d: %s", rec.Code, rec.Body.String())
	}
	hourlyBody := decodeBody(t, rec)
	if hourlyBody["count"].(float64) != 6 {
		t.Errorf("hourly count = %v, want 6", hourlyBody["count"])
	}

	rec = doRequest(t, s, http.MethodGet, "/api/model/info")
	if rec.Code != http.StatusOK {
		t.Fatalf("model info status %d", rec.Code)
	}
	info := decodeBody(t, rec)
	if info["loaded"] != true {
		t.Error("model info should report loaded after training")
	}
}

func TestTrainPersistsAcrossRestart(t *testing.T) {
	s := testServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/model/train?hours=400")
	if rec.Code != http.StatusOK {
		t.Fatalf("train status %d: %s", rec.Code, rec.Body.String())
	}

	// A new server over the same model dir picks the bundle up at startup
	restarted, err := NewServer(context.Background(), s.cfg)
	if err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	defer restarted.Close()

	rec = doRequest(t, restarted, http.MethodGet, "/api/forecast")
	if rec.Code != http.StatusOK {
		t.Fatalf("forecast after restart: status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestValidateEndpoint(t *testing.T) {
	s := testServer(t)

	payload := `{"measurements": [{"timestamp": "2025-10-03T12:00:00Z", "aqi": 55, "pm25": 13.1}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/validate", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["valid"] != true {
		t.Errorf("single measurement should validate: %v", body)
	}
	if body["warning"] == "" {
		t.Error("short history should carry a warning")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := testServer(t)

	if rec := doRequest(t, s, http.MethodPost, "/health"); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /health status %d, want 405", rec.Code)
	}
	if rec := doRequest(t, s, http.MethodGet, "/api/model/train"); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/model/train status %d, want 405", rec.Code)
	}
}
