package endpoints

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/samkari/roadmap-service/utils"
)

func TestStatusEndpoint(t *testing.T) {
	api := &API{}
	srv := httptest.NewServer(api.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code = %d", resp.StatusCode)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if body["service"] != "roadmap-service" {
		t.Errorf("service = %v", body["service"])
	}
	if _, ok := body["metrics"]; !ok {
		t.Error("status report should include metrics")
	}
}

func TestServiceEndpointReflectsHealth(t *testing.T) {
	api := &API{}
	srv := httptest.NewServer(api.Router())
	defer srv.Close()

	utils.SetHealthStatus("OK", "running")
	resp, err := http.Get(srv.URL + "/service")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthy service: code = %d", resp.StatusCode)
	}

	utils.SetHealthStatus("DEGRADED", "redis down")
	resp, err = http.Get(srv.URL + "/service")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("degraded service: code = %d", resp.StatusCode)
	}

	utils.SetHealthStatus("OK", "running")
}

func TestBackupEndpointRequiresPost(t *testing.T) {
	api := &API{}
	srv := httptest.NewServer(api.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/backup")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/backup: code = %d", resp.StatusCode)
	}
}
