package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"realty-analyzer/llm"
	"realty-analyzer/models"
	"realty-analyzer/services"
	"realty-analyzer/storage"
	"realty-analyzer/utils"
)

func newTestServer(t *testing.T, gen llm.Generator) *httptest.Server {
	t.Helper()
	logger := utils.NewDiscardLogger()
	ds := storage.NewDataset([]models.Record{
		{Location: "Pune", Year: 2020, FlatTotal: 10, FlatRate: 5000, Extra: map[string]any{"city": "Pune"}},
		{Location: "Pune", Year: 2021, FlatTotal: 20, FlatRate: 6000, Extra: map[string]any{"city": "Pune"}},
		{Location: "Wakad", Year: 2020, FlatTotal: 5, FlatRate: 7000, Extra: map[string]any{"city": "Pune"}},
	})
	summarizer := services.NewSummarizer(gen, 100, time.Second, logger)
	h := NewHandler(services.NewAnalyzer(ds, summarizer, logger), logger)
	srv := httptest.NewServer(NewRouter(h, logger))
	t.Cleanup(srv.Close)
	return srv
}

type payload struct {
	Summary string              `json:"summary"`
	Chart   []models.ChartPoint `json:"chart"`
	Table   []map[string]any    `json:"table"`
	Error   string              `json:"error"`
}

func get(t *testing.T, srv *httptest.Server, path, query string) (int, payload, map[string]json.RawMessage) {
	t.Helper()
	resp, err := http.Get(srv.URL + path + "?query=" + url.QueryEscape(query))
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	b, _ := json.Marshal(raw)
	var p payload
	_ = json.Unmarshal(b, &p)
	return resp.StatusCode, p, raw
}

func TestAnalyzeEndpointSuccess(t *testing.T) {
	srv := newTestServer(t, nil)

	status, p, raw := get(t, srv, "/api/analyze/", "Analyze pune")
	if status != http.StatusOK {
		t.Fatalf("status: got %d, want 200", status)
	}
	if _, hasErr := raw["error"]; hasErr {
		t.Error("success payload must not carry an error key")
	}
	if p.Summary != "Pune has an average flat price of ₹5500 and total 30 units sold." {
		t.Errorf("summary: got %q", p.Summary)
	}
	if len(p.Chart) != 2 || p.Chart[0].Value != 5000 || p.Chart[1].Value != 6000 {
		t.Errorf("chart: got %+v", p.Chart)
	}
	if len(p.Table) != 2 {
		t.Fatalf("table: got %d rows, want 2", len(p.Table))
	}
	row := p.Table[0]
	if row["final_location"] != "Pune" || row["year"] != float64(2020) || row["city"] != "Pune" {
		t.Errorf("table row: got %v", row)
	}
	if strings.Contains(string(raw["chart"]), `"area"`) {
		t.Error("analyze chart must not carry area tags")
	}
}

func TestAnalyzeEndpointCompare(t *testing.T) {
	srv := newTestServer(t, nil)

	status, p, raw := get(t, srv, "/api/analyze", "Compare Pune and Wakad")
	if status != http.StatusOK {
		t.Fatalf("status: got %d, want 200", status)
	}
	if string(raw["table"]) != "[]" {
		t.Errorf("table: got %s, want []", raw["table"])
	}
	if len(p.Chart) != 3 || p.Chart[0].Area != "Pune" || p.Chart[2].Area != "Wakad" {
		t.Errorf("chart: got %+v", p.Chart)
	}
}

func TestAnalyzeEndpointErrors(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		query  string
		status int
		msg    string
	}{
		{"hello", http.StatusBadRequest, "Query must start with 'Analyze' or 'Compare'."},
		{"Compare Pune", http.StatusBadRequest, "Use format: Compare Area1 and Area2"},
		{"Compare Pune and Aundh", http.StatusNotFound, "Area(s) not found: aundh"},
		{"Analyze Aundh", http.StatusNotFound, "No data found for aundh"},
	}

	for _, tt := range tests {
		status, p, raw := get(t, srv, "/api/analyze/", tt.query)
		if status != tt.status || p.Error != tt.msg {
			t.Errorf("%q: got %d %q, want %d %q", tt.query, status, p.Error, tt.status, tt.msg)
		}
		if len(raw) != 1 {
			t.Errorf("%q: error payload should only carry error, got keys %v", tt.query, raw)
		}
	}
}

func TestAnalyzeEndpointLLMFailureStillSucceeds(t *testing.T) {
	gen := llm.GeneratorFunc(func(context.Context, string, int) (string, error) {
		return "", errors.New("upstream 503")
	})
	srv := newTestServer(t, gen)

	status, p, _ := get(t, srv, "/api/analyze/", "analyze wakad")
	if status != http.StatusOK {
		t.Fatalf("status: got %d, want 200", status)
	}
	want := "Wakad has an average flat price of ₹7000 and total 5 units sold. (LLM error: upstream 503)"
	if p.Summary != want {
		t.Errorf("summary: got %q, want %q", p.Summary, want)
	}
}

func TestExportEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/analyze/export/?query=" + url.QueryEscape("Analyze Pune"))
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type: got %q", ct)
	}
	buf := new(strings.Builder)
	_, _ = io.Copy(buf, resp.Body)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || lines[0] != "final_location,year,flat_total,flat_weighted_average_rate,city" {
		t.Errorf("csv: got %q", buf.String())
	}
}

func TestExportEndpointError(t *testing.T) {
	srv := newTestServer(t, nil)
	status, p, _ := get(t, srv, "/api/analyze/export/", "Analyze Nowhere")
	if status != http.StatusNotFound || p.Error != "No data found for nowhere" {
		t.Errorf("got %d %q", status, p.Error)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, nil)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/analyze/", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing Access-Control-Allow-Origin")
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if body["status"] != "ok" || body["records"] != float64(3) {
		t.Errorf("healthz: got %v", body)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("metrics status: got %d", resp.StatusCode)
	}
}

func TestRecoverMiddleware(t *testing.T) {
	h := Recover(utils.NewDiscardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analyze/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error":"Server error: boom"`) {
		t.Errorf("body: got %s", rec.Body.String())
	}
}

func TestExportEndpointDoesNotGenerateSummary(t *testing.T) {
	var calls atomic.Int32
	gen := llm.GeneratorFunc(func(context.Context, string, int) (string, error) {
		calls.Add(1)
		return "generated", nil
	})
	srv := newTestServer(t, gen)

	resp, err := http.Get(srv.URL + "/api/analyze/export/?query=" + url.QueryEscape("Analyze Pune"))
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if n := calls.Load(); n != 0 {
		t.Errorf("generator calls: got %d, want 0", n)
	}
}
