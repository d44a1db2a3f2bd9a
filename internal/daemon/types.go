package daemon

import (
	"cand/internal/capture"
	"cand/internal/externalio/beats"
	"cand/internal/global"
	"cand/internal/metrics"
	"cand/internal/sink"
	"context"
	"net/http"
	"sync"
	"time"
)

type JSONConfig struct {
	Interface string `json:"interface"`
	Output    struct {
		Directory   string `json:"directory"`
		SyncOnFlush *bool  `json:"syncOnFlush,omitempty"`
	} `json:"output"`
	Socket struct {
		ReceiveBufferSize int          `json:"receiveBufferSize,omitempty"`
		Filters           []JSONFilter `json:"filters,omitempty"`
		UseEBPF           bool         `json:"useEBPF,omitempty"`
	} `json:"socket"`
	Metrics struct {
		Interval          string `json:"interval,omitempty"`
		MaxAge            string `json:"maxAge,omitempty"`
		EnableQueryServer bool   `json:"enableQueryServer"`
		QueryServerPort   int    `json:"queryServerPort,omitempty"`
	} `json:"metrics"`
	Alerts struct {
		BeatsAddress string `json:"beatsAddress,omitempty"`
	} `json:"alerts"`
}

// Hex can_id and mask ("0x123", "7FF"). An empty mask matches the id exactly, flags included.
type JSONFilter struct {
	ID   string `json:"id"`
	Mask string `json:"mask,omitempty"`
}

type Config struct {
	// Capture
	Interface         string
	OutputDirectory   string
	SyncOnFlush       bool
	ReceiveBufferSize int
	Filters           []global.CANFilter
	UseEBPF           bool

	// Outputs
	BeatsEndpoint string

	// Metrics
	MetricQueryServerEnabled bool
	MetricQueryServerPort    int
	MetricCollectionInterval time.Duration
	MetricMaxAge             time.Duration
}

// Source the daemon captures from (network.Socket in production)
type frameSource interface {
	capture.Source
	Close() (err error)
	CollectMetrics(interval time.Duration) (collection []metrics.Metric)
}

// Anything reporting interval metrics into the registry
type Collector interface {
	CollectMetrics(interval time.Duration) (collection []metrics.Metric)
}

type Gatherer struct {
	Interval   time.Duration     // Polling interval to gather metrics at
	Retention  time.Duration     // Maximum time to maintain metrics for
	Registry   *metrics.Registry // Storage for metric data
	collectors []Collector
}

type Daemon struct {
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc

	wg           sync.WaitGroup
	shutdownOnce sync.Once
	captureDone  chan struct{}
	shutdownDone chan struct{}
	runErr       error
	lossNotice   chan struct{} // wakes the status notifier after a loss marker

	// Replaced in tests
	shutdownTimeout time.Duration
	openSource      func(ctx context.Context, cfg Config) (frameSource, error)
	now             func() time.Time

	Source       frameSource
	Sink         *sink.Writer
	Capture      *capture.Instance
	Alerter      *beats.Alerter
	Gatherer     *Gatherer
	MetricServer *http.Server
}
