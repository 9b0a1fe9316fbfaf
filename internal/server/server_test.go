package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
)

// TestServer_RunsAndMetrics builds the full router with a sqlmock-backed DB,
// lists runs, then checks the request shows up on /metrics.
func TestServer_RunsAndMetrics(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM task_runs`).
		WithArgs("", 50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "task", "source", "status", "started_at", "finished_at", "error"}).
			AddRow(1, "adb_list.py", "tick", "succeeded", time.Now(), time.Now(), ""))

	srv := httptest.NewServer(NewRouter(Deps{DB: db, Log: zerolog.Nop(), RatePerMinute: 600}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/runs")
	if err != nil {
		t.Fatalf("GET /runs: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "adb_list.py") {
		t.Fatalf("GET /runs: %d %s", resp.StatusCode, body)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), `http_requests_total{method="GET",path="/runs",status="200"}`) {
		t.Errorf("expected /runs request in metrics")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestServer_WithoutDatabase(t *testing.T) {
	srv := httptest.NewServer(NewRouter(Deps{Log: zerolog.Nop()}))
	defer srv.Close()

	for path, want := range map[string]int{
		"/health":      http.StatusOK,
		"/schedule":    http.StatusOK,
		"/runs":        http.StatusServiceUnavailable,
		"/contracts":   http.StatusServiceUnavailable,
		"/contracts/1": http.StatusServiceUnavailable,
	} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != want {
			t.Errorf("GET %s: got %d, want %d", path, resp.StatusCode, want)
		}
	}
}
