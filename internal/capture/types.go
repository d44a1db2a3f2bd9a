package capture

import (
	"cand/pkg/record"
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// Most records a single delivery can produce (start marker, loss marker, data)
const maxRecordsPerDelivery int = 3

var (
	ErrReceive = errors.New("receive failed")
	ErrWrite   = errors.New("write failed")
)

// One bus frame as delivered by the socket
type Frame struct {
	ID   uint32 // raw can_id including EFF/RTR/ERR flags
	Len  uint8  // data length code
	Data [8]byte
}

// One receive call: a frame plus whatever ancillary metadata came with it
type Delivery struct {
	Frame        Frame
	Timestamp    record.Timeval
	HasTimestamp bool
	DropCount    uint32 // cumulative kernel queue overflow counter
	HasDropCount bool
	Ifindex      int // receiving interface (useful when bound to all interfaces)
}

// Blocking frame source
type Source interface {
	Receive() (delivery Delivery, err error)
}

// Record sink
type RecordWriter interface {
	WriteRecord(rec record.Record) (err error)
}

// Notified after a loss marker has been persisted. Must not block.
type LossObserver interface {
	ObserveLoss(ctx context.Context, rec record.Record, totalDropped uint64)
}

// Per-session intake state, owned by the capture loop
type Session struct {
	started       bool
	haveTimestamp bool
	lastTimestamp record.Timeval
	lastDropCount uint32
	clock         func() time.Time
	FallbackCount uint64 // deliveries stamped from the host clock
}

type Instance struct {
	Namespace []string
	source    Source
	sink      RecordWriter
	session   *Session
	observers []LossObserver
	Metrics   MetricStorage // interval counters, reset on collection
	Totals    Totals        // lifetime counters
}

type MetricStorage struct {
	BusyNs        atomic.Uint64 // sum of ns spent handling deliveries
	Frames        atomic.Uint64 // frames received
	DataRecords   atomic.Uint64 // data records written
	DropRecords   atomic.Uint64 // loss markers written
	DroppedFrames atomic.Uint64 // frames lost in the kernel (sum of loss deltas)
	FallbackStamp atomic.Uint64 // deliveries stamped from the host clock
	MaxNs         atomic.Uint64 // max observed handling duration
}

// Lifetime counters not reset by metric collection
type Totals struct {
	Frames        atomic.Uint64
	DroppedFrames atomic.Uint64
}
