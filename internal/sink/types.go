package sink

import (
	"bufio"
	"hash"
	"io"
	"os"
	"sync/atomic"
)

// Default buffered bytes between flushes (256 records)
const bufferSize int = 4096

type Options struct {
	SyncOnFlush bool // fsync after every flush (durable once flushed)
}

// Implemented by *os.File
type syncer interface {
	Sync() (err error)
}

// Append-only record log writer. Owned by the capture loop, not safe for concurrent writes.
type Writer struct {
	Namespace     []string
	path          string   // empty when not file backed
	file          *os.File // nil when not file backed
	dest          io.Writer
	out           *bufio.Writer
	digest        hash.Hash
	syncOnFlush   bool
	watermark     int64 // record second of the last flush
	haveWatermark bool
	scratch       []byte
	closed        bool
	Metrics       MetricStorage
}

type MetricStorage struct {
	Records   atomic.Uint64 // records written
	Bytes     atomic.Uint64 // bytes written
	Flushes   atomic.Uint64 // buffer drains (any reason)
	Periodic  atomic.Uint64 // flushes due to the record time gap
	SyncNs    atomic.Uint64 // time spent in fsync
	SyncMaxNs atomic.Uint64 // slowest single fsync
}
