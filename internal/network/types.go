package network

import (
	"cand/internal/global"
	"os"
	"sync/atomic"
	"syscall"
)

type Options struct {
	ReceiveBufferSize int                // bytes, 0 kernel default, global.AutoReceiveBuffer sizes from system memory
	Filters           []global.CANFilter // empty receives everything
	UseEBPF           bool               // try an eBPF socket filter before CAN_RAW_FILTER
}

// Raw SocketCAN capture socket
type Socket struct {
	Namespace []string
	Interface string // interface name or global.AnyInterface
	Ifindex   int    // 0 when bound to all interfaces
	fd        int
	file      *os.File
	raw       syscall.RawConn
	frameBuf  []byte
	oobBuf    []byte
	closed    atomic.Bool
	Metrics   MetricStorage
}

type MetricStorage struct {
	Deliveries    atomic.Uint64 // frames returned from Receive
	NoTimestamp   atomic.Uint64 // deliveries without SO_TIMESTAMP data
	Truncated     atomic.Uint64 // deliveries with MSG_TRUNC/MSG_CTRUNC set
	DropCounter   atomic.Uint64 // last SO_RXQ_OVFL sample
	ReceiveBuffer atomic.Uint64 // effective kernel receive buffer (bytes)
}

// Ancillary data of one recvmsg call
type controlData struct {
	sec, usec    int64
	hasTimestamp bool
	dropCount    uint32
	hasDropCount bool
}
