package capture

import (
	"cand/internal/metrics"
	"time"
)

// Reads and clears interval counters. Lifetime totals are reported as gauges.
func (instance *Instance) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	busyNs := instance.Metrics.BusyNs.Swap(0)
	frames := instance.Metrics.Frames.Swap(0)
	dataRecords := instance.Metrics.DataRecords.Swap(0)
	dropRecords := instance.Metrics.DropRecords.Swap(0)
	dropped := instance.Metrics.DroppedFrames.Swap(0)
	fallback := instance.Metrics.FallbackStamp.Swap(0)
	maxNs := instance.Metrics.MaxNs.Swap(0)

	recordTime := time.Now()

	var busyPct float64
	if interval > 0 {
		busyPct = (float64(busyNs) / float64(interval.Nanoseconds())) * 100
	}
	var avgNs uint64
	if frames > 0 {
		avgNs = busyNs / frames
	}

	metric := func(name, description, unit string, metricType metrics.MetricType, raw any) metrics.Metric {
		return metrics.Metric{
			Name:        name,
			Description: description,
			Namespace:   instance.Namespace,
			Value: metrics.MetricValue{
				Raw:      raw,
				Unit:     unit,
				Interval: interval,
			},
			Type:      metricType,
			Timestamp: recordTime,
		}
	}

	collection = []metrics.Metric{
		metric("busy_time_percent", "Time spent handling deliveries in the interval", "%", metrics.Summary, busyPct),
		metric("frames_total", "Frames received from the socket in the interval", "count", metrics.Counter, frames),
		metric("data_records_total", "Data records written in the interval", "count", metrics.Counter, dataRecords),
		metric("drop_records_total", "Loss markers written in the interval", "count", metrics.Counter, dropRecords),
		metric("dropped_frames_total", "Frames the kernel reported dropped in the interval", "count", metrics.Counter, dropped),
		metric("host_clock_stamps_total", "Frames stamped from the host clock for lack of a kernel timestamp", "count", metrics.Counter, fallback),
		metric("handle_time_avg_ns", "Average time from receive to written records", "ns", metrics.Summary, avgNs),
		metric("handle_time_max_ns", "Maximum (seen) time from receive to written records", "ns", metrics.Summary, maxNs),
		metric("session_frames", "Frames received since the session started", "count", metrics.Gauge, instance.Totals.Frames.Load()),
		metric("session_dropped_frames", "Frames dropped since the session started", "count", metrics.Gauge, instance.Totals.DroppedFrames.Load()),
	}
	return
}
