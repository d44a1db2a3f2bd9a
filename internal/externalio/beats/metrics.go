package beats

import (
	"cand/internal/metrics"
	"time"
)

func (alerter *Alerter) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	if alerter == nil {
		return
	}

	// Read and clear
	sent := alerter.Metrics.Sent.Swap(0)
	failed := alerter.Metrics.Failed.Swap(0)
	overflow := alerter.Metrics.Overflow.Swap(0)

	recordTime := time.Now()

	collection = []metrics.Metric{
		{
			Name:        "alerts_sent",
			Description: "Loss alerts accepted by the beats server in the interval",
			Namespace:   alerter.Namespace,
			Value:       metrics.MetricValue{Raw: sent, Unit: "count", Interval: interval},
			Type:        metrics.Counter,
			Timestamp:   recordTime,
		},
		{
			Name:        "alerts_failed",
			Description: "Loss alerts that failed to send in the interval",
			Namespace:   alerter.Namespace,
			Value:       metrics.MetricValue{Raw: failed, Unit: "count", Interval: interval},
			Type:        metrics.Counter,
			Timestamp:   recordTime,
		},
		{
			Name:        "alerts_discarded",
			Description: "Loss alerts discarded because the send queue was full in the interval",
			Namespace:   alerter.Namespace,
			Value:       metrics.MetricValue{Raw: overflow, Unit: "count", Interval: interval},
			Type:        metrics.Counter,
			Timestamp:   recordTime,
		},
	}
	return
}
