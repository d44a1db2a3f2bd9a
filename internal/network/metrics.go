package network

import (
	"cand/internal/metrics"
	"time"
)

func (sock *Socket) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	// Read and clear
	deliveries := sock.Metrics.Deliveries.Swap(0)
	noTimestamp := sock.Metrics.NoTimestamp.Swap(0)
	truncated := sock.Metrics.Truncated.Swap(0)

	recordTime := time.Now()

	collection = []metrics.Metric{
		{
			Name:        "deliveries_total",
			Description: "Frames received from the kernel in the interval",
			Namespace:   sock.Namespace,
			Value:       metrics.MetricValue{Raw: deliveries, Unit: "count", Interval: interval},
			Type:        metrics.Counter,
			Timestamp:   recordTime,
		},
		{
			Name:        "missing_timestamps_total",
			Description: "Frames delivered without a kernel receive timestamp in the interval",
			Namespace:   sock.Namespace,
			Value:       metrics.MetricValue{Raw: noTimestamp, Unit: "count", Interval: interval},
			Type:        metrics.Counter,
			Timestamp:   recordTime,
		},
		{
			Name:        "truncated_total",
			Description: "Deliveries with truncated frame or control data in the interval",
			Namespace:   sock.Namespace,
			Value:       metrics.MetricValue{Raw: truncated, Unit: "count", Interval: interval},
			Type:        metrics.Counter,
			Timestamp:   recordTime,
		},
		{
			Name:        "kernel_drop_counter",
			Description: "Last cumulative receive queue overflow counter reported by the kernel",
			Namespace:   sock.Namespace,
			Value:       metrics.MetricValue{Raw: sock.Metrics.DropCounter.Load(), Unit: "count", Interval: interval},
			Type:        metrics.Gauge,
			Timestamp:   recordTime,
		},
		{
			Name:        "receive_buffer_bytes",
			Description: "Effective kernel receive buffer size",
			Namespace:   sock.Namespace,
			Value:       metrics.MetricValue{Raw: sock.Metrics.ReceiveBuffer.Load(), Unit: "bytes", Interval: interval},
			Type:        metrics.Gauge,
			Timestamp:   recordTime,
		},
	}
	return
}
