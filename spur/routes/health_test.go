package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AasheeshLikePanner/spur/spur/controllers"
)

func TestHealthRoutes(t *testing.T) {
	srv := httptest.NewServer(HealthRoutes(controllers.NewHealthController()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}
