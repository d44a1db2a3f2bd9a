package sink

import (
	"cand/internal/metrics"
	"time"
)

func (writer *Writer) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	// Read and clear
	records := writer.Metrics.Records.Swap(0)
	bytes := writer.Metrics.Bytes.Swap(0)
	flushes := writer.Metrics.Flushes.Swap(0)
	periodic := writer.Metrics.Periodic.Swap(0)
	syncNs := writer.Metrics.SyncNs.Swap(0)
	syncMaxNs := writer.Metrics.SyncMaxNs.Swap(0)

	recordTime := time.Now()

	collection = []metrics.Metric{
		{
			Name:        "records_written",
			Description: "Records appended to the output log in the interval",
			Namespace:   writer.Namespace,
			Value: metrics.MetricValue{
				Raw:      records,
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
		{
			Name:        "bytes_written",
			Description: "Bytes appended to the output log in the interval",
			Namespace:   writer.Namespace,
			Value: metrics.MetricValue{
				Raw:      bytes,
				Unit:     "bytes",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
		{
			Name:        "flushes_total",
			Description: "Buffer flushes in the interval",
			Namespace:   writer.Namespace,
			Value: metrics.MetricValue{
				Raw:      flushes,
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
		{
			Name:        "periodic_flushes_total",
			Description: "Flushes triggered by the record time gap in the interval",
			Namespace:   writer.Namespace,
			Value: metrics.MetricValue{
				Raw:      periodic,
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
		{
			Name:        "sync_time_sum_ns",
			Description: "Time spent in fsync in the interval",
			Namespace:   writer.Namespace,
			Value: metrics.MetricValue{
				Raw:      syncNs,
				Unit:     "ns",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
		{
			Name:        "sync_time_max_ns",
			Description: "Slowest single fsync in the interval",
			Namespace:   writer.Namespace,
			Value: metrics.MetricValue{
				Raw:      syncMaxNs,
				Unit:     "ns",
				Interval: interval,
			},
			Type:      metrics.Summary,
			Timestamp: recordTime,
		},
	}
	return
}
