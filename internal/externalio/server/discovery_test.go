package server

import (
	"cand/internal/global"
	"cand/internal/metrics"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandleDiscovery(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		query      string
		results    []metrics.Metric
		wantStatus int
		wantError  bool
	}{
		{
			name:       "empty results returns JSON error",
			query:      "",
			results:    nil,
			wantStatus: http.StatusOK,
			wantError:  true,
		},
		{
			name:       "valid results name only",
			query:      "?name=frames",
			results:    []metrics.Metric{{Name: "frames_total"}},
			wantStatus: http.StatusOK,
		},
		{
			name:  "valid results with namespace",
			query: "Capture/Sink/?name=flushes",
			results: []metrics.Metric{
				{Name: "flushes_total", Namespace: []string{"Capture", "Sink"}},
			},
			wantStatus: http.StatusOK,
		},
		{
			name:  "valid results with type",
			query: "Capture/?type=Counter",
			results: []metrics.Metric{
				{Name: "frames_total", Namespace: []string{"Capture"}, Type: metrics.Counter},
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid metric type",
			query:      "?type=histogram",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, global.DiscoveryPath+tt.query, nil)

			handleDiscovery(ctx, mockDiscoverer(tt.results), rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status=%d want=%d", rr.Code, tt.wantStatus)
			}

			if tt.wantError {
				var je Jerror
				if err := json.NewDecoder(rr.Body).Decode(&je); err != nil {
					t.Fatalf("failed decoding JSON error: %v", err)
				}
				if je.Msg == "" {
					t.Fatal("expected non-empty error message")
				}
			}
		})
	}
}
