package server

import (
	"cand/internal/global"
	"cand/internal/metrics"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSetupListener_RoutingAndHTML(t *testing.T) {
	ctx := context.Background()

	server, err := SetupListener(
		ctx,
		global.DefaultMetricPort,
		mockDataSearcher(nil),
		mockDiscoverer(nil),
		mockAggSearcher(metrics.Metric{}, nil),
	)
	if err != nil {
		t.Fatalf("SetupListener error: %v", err)
	}

	ts := httptest.NewServer(server.Handler)
	defer ts.Close()

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		checkHTML  bool
	}{
		{"root GET returns HTML with replacements", http.MethodGet, "/", http.StatusOK, true},
		{"root POST rejected", http.MethodPost, "/", http.StatusMethodNotAllowed, false},
		{"data GET", http.MethodGet, global.DataPath, http.StatusOK, false},
		{"data incorrect method", http.MethodPost, global.DataPath, http.StatusMethodNotAllowed, false},
		{"discover incorrect method", http.MethodPatch, global.DiscoveryPath, http.StatusMethodNotAllowed, false},
		{"aggregation incorrect method", http.MethodDelete, global.AggregationPath, http.StatusMethodNotAllowed, false},
		{"unknown path", http.MethodGet, "/unknown", http.StatusNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, ts.URL+tt.path, nil)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("http request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status=%d want=%d", resp.StatusCode, tt.wantStatus)
			}

			if tt.checkHTML {
				body, _ := io.ReadAll(resp.Body)
				html := string(body)

				for _, ph := range []string{"{LISTEN_ADDR}", "{LISTEN_PORT}", "{DATA_PATH}", "{DISCOVER_PATH}", "{AGGREGATION_PATH}", "{VERSION}"} {
					if strings.Contains(html, ph) {
						t.Fatalf("HTML placeholder not replaced: %s", ph)
					}
				}
				if !strings.Contains(html, global.ProgVersion) {
					t.Errorf("expected version in help page")
				}
			}
		})
	}
}

func TestHTTPLogWriter(t *testing.T) {
	writer := httpLogWriter{ctx: context.Background()}
	n, err := writer.Write([]byte("http: TLS handshake error\n"))
	if err != nil || n != 26 {
		t.Fatalf("expected 26 bytes written without error, got %d %v", n, err)
	}
}
