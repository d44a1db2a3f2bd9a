package beats

import (
	"sync"
	"sync/atomic"
)

// Subset of the lumberjack sync client used here
type sender interface {
	Send(data []interface{}) (n int, err error)
	Close() (err error)
}

// One persisted loss marker waiting to be sent
type lossEvent struct {
	recordTimestamp uint32 // record clock (ms)
	delta           uint32
	total           uint64
	wallTime        string
}

// Ships kernel loss notifications to a Beats/Logstash endpoint off the capture path
type Alerter struct {
	Namespace []string
	endpoint  string
	iface     string
	sink      sender
	dial      func() (sender, error)
	queue     chan lossEvent
	wg        sync.WaitGroup
	Metrics   MetricStorage
}

type MetricStorage struct {
	Sent     atomic.Uint64 // alerts accepted by the endpoint
	Failed   atomic.Uint64 // alerts that could not be sent
	Overflow atomic.Uint64 // alerts discarded because the queue was full
	Pending  atomic.Uint64 // alerts queued or in flight
}
