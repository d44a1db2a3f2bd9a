package metrics

import (
	"cand/internal/global"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Query prefix match against a stored namespace. Empty query matches all.
func matchesNamespace(metricNS, queryNS []string) (matches bool) {
	// "/data/Capture/" splits into a trailing empty element
	for len(queryNS) > 0 && queryNS[len(queryNS)-1] == "" {
		queryNS = queryNS[:len(queryNS)-1]
	}
	if len(metricNS) < len(queryNS) {
		return
	}
	matches = slices.Equal(metricNS[:len(queryNS)], queryNS)
	return
}

// Time slice keys inside [start,end], oldest first. Zero bounds are open.
func (registry *Registry) slicesBetween(start, end time.Time) (timestamps []time.Time) {
	for ts := range registry.metrics {
		if !start.IsZero() && ts.Before(start) {
			continue
		}
		if !end.IsZero() && ts.After(end) {
			continue
		}
		timestamps = append(timestamps, ts)
	}
	slices.SortFunc(timestamps, func(a, b time.Time) int { return a.Compare(b) })
	return
}

// Returns all metrics with the exact name (empty for any) under the namespace prefix, oldest first
func (registry *Registry) Search(name string, namespacePrefix []string, start, end time.Time) (results []Metric) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	for _, ts := range registry.slicesBetween(start, end) {
		var batch []Metric
		for nsStr, metricsMap := range registry.metrics[ts] {
			if !matchesNamespace(strings.Split(nsStr, "/"), namespacePrefix) {
				continue
			}
			for metricName, metric := range metricsMap {
				if name == "" || metricName == name {
					batch = append(batch, metric)
				}
			}
		}
		sort.Slice(batch, func(i, j int) bool { return sortKey(batch[i]) < sortKey(batch[j]) })
		results = append(results, batch...)
	}
	return
}

// Lists one valueless sample per distinct metric matching the filters.
// Name and description are substring filters, unit and type exact.
func (registry *Registry) Discover(name, description string, namespacePrefix []string, unit string, metricType MetricType) (results []Metric) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	keep := func(metric Metric) bool {
		switch {
		case name != "" && !strings.Contains(metric.Name, name):
			return false
		case description != "" && !strings.Contains(metric.Description, description):
			return false
		case unit != "" && metric.Value.Unit != unit:
			return false
		case metricType != "" && metric.Type != metricType:
			return false
		}
		return true
	}

	found := make(map[string]Metric)
	for _, nsMap := range registry.metrics {
		for nsStr, metricsMap := range nsMap {
			if !matchesNamespace(strings.Split(nsStr, "/"), namespacePrefix) {
				continue
			}
			for _, metric := range metricsMap {
				if !keep(metric) {
					continue
				}
				key := sortKey(metric) + "|" + string(metric.Type) + "|" + metric.Value.Unit
				found[key] = Metric{
					Name:        metric.Name,
					Description: metric.Description,
					Namespace:   metric.Namespace,
					Type:        metric.Type,
					Value:       MetricValue{Unit: metric.Value.Unit},
				}
			}
		}
	}

	results = make([]Metric, 0, len(found))
	for _, metric := range found {
		results = append(results, metric)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Name != results[j].Name {
			return results[i].Name < results[j].Name
		}
		return strings.Join(results[i].Namespace, "/") < strings.Join(results[j].Namespace, "/")
	})
	return
}

// Reduces every matching sample in the window to a single value (sum, min, max, avg)
func (registry *Registry) Aggregate(aggType, name string, namespacePrefix []string, start, end time.Time) (result Metric, err error) {
	if name == "" {
		err = fmt.Errorf("metric name is required for aggregation")
		return
	}

	samples := registry.Search(name, namespacePrefix, start, end)
	if len(samples) == 0 {
		err = fmt.Errorf("no metrics named %q in requested window", name)
		return
	}

	var values []float64
	for _, sample := range samples {
		value, ok := toFloat(sample.Value.Raw)
		if !ok {
			err = fmt.Errorf("metric %q has non-numeric value %v", name, sample.Value.Raw)
			return
		}
		values = append(values, value)
	}

	var total float64
	for _, value := range values {
		total += value
	}

	var out float64
	switch aggType {
	case global.MetricSum:
		out = total
	case global.MetricMin:
		out = slices.Min(values)
	case global.MetricMax:
		out = slices.Max(values)
	case global.MetricAvg:
		out = total / float64(len(values))
	default:
		err = fmt.Errorf("unknown aggregation type %q", aggType)
		return
	}

	last := samples[len(samples)-1]
	result = Metric{
		Name:        last.Name,
		Description: aggType + " of " + last.Description,
		Namespace:   namespacePrefix,
		Type:        Summary,
		Timestamp:   last.Timestamp,
		Value: MetricValue{
			Raw:      out,
			Unit:     last.Value.Unit,
			Interval: end.Sub(start),
		},
	}
	return
}

func sortKey(metric Metric) string {
	return strings.Join(metric.Namespace, "/") + "|" + metric.Name
}

func toFloat(raw any) (value float64, ok bool) {
	ok = true
	switch v := raw.(type) {
	case uint64:
		value = float64(v)
	case uint32:
		value = float64(v)
	case int64:
		value = float64(v)
	case int:
		value = float64(v)
	case float64:
		value = v
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			ok = false
			return
		}
		value = parsed
	default:
		ok = false
	}
	return
}
