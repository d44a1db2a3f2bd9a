package server

import (
	"cand/internal/global"
	"cand/internal/metrics"
	"context"
	"net/http"
	"strings"
)

// Handles metric search to discover metrics (returns no actual data, only sample metric per individual metric)
func handleDiscovery(baseCtx context.Context, discover Discoverer, serverResponder http.ResponseWriter, clientRequest *http.Request) {
	reqNamespace := pathNamespace(clientRequest, global.DiscoveryPath)

	reqName := clientRequest.FormValue("name")
	reqDescription := clientRequest.FormValue("description")
	reqUnit := clientRequest.FormValue("unit")

	reqType := metrics.MetricType(strings.ToLower(clientRequest.FormValue("type")))
	switch reqType {
	case "", metrics.Counter, metrics.Gauge, metrics.Summary:
	default:
		serverResponder.WriteHeader(http.StatusBadRequest)
		return
	}

	rawResults := discover(reqName, reqDescription, reqNamespace, reqUnit, reqType)

	var results []metrics.JMetric
	for _, rawResult := range rawResults {
		results = append(results, rawResult.Convert())
	}

	if len(results) == 0 {
		jResp(baseCtx, serverResponder, Jerror{Msg: "Search returned no results"})
	} else {
		jResp(baseCtx, serverResponder, results)
	}
}
