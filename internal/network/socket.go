// SocketCAN raw socket delivering one frame plus kernel receive metadata per call
package network

import (
	"cand/internal/capture"
	"cand/internal/ebpf"
	"cand/internal/global"
	"cand/internal/logctx"
	"cand/pkg/record"
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// Creates a CAN_RAW socket bound to ifname (global.AnyInterface for all interfaces).
// Timestamp, overflow counter, buffer and filter options are best effort and only warn.
func Open(ctx context.Context, namespace []string, ifname string, opts Options) (sock *Socket, err error) {
	ctx = logctx.AppendCtxTag(ctx, global.NSSocket)

	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW|unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK, unix.CAN_RAW)
	if err != nil {
		err = fmt.Errorf("failed to create CAN socket: %v", err)
		return
	}
	var fileOwned bool
	defer func() {
		if err != nil && !fileOwned {
			_ = unix.Close(fd)
		}
	}()

	var ifindex int
	if ifname != global.AnyInterface {
		ifindex, err = interfaceIndex(fd, ifname)
		if err != nil {
			return
		}
	}

	err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_TIMESTAMP, 1)
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"Failed enabling SO_TIMESTAMP, frames will reuse the last known time: %v\n", err)
		err = nil
	}
	err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RXQ_OVFL, 1)
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"Failed enabling SO_RXQ_OVFL, kernel drops will not be recorded: %v\n", err)
		err = nil
	}

	var rcvbuf int
	if opts.ReceiveBufferSize != 0 {
		rcvbuf, err = setReceiveBuffer(fd, opts.ReceiveBufferSize)
		if err != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
				"Failed setting receive buffer size: %v\n", err)
			err = nil
		} else {
			logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
				"Kernel receive buffer is %d bytes\n", rcvbuf)
		}
	}

	if len(opts.Filters) > 0 {
		installFilters(ctx, fd, opts)
	}

	err = unix.Bind(fd, &unix.SockaddrCAN{Ifindex: ifindex})
	if err != nil {
		err = fmt.Errorf("failed to bind CAN socket to %s: %v", ifname, err)
		return
	}

	// Registering the non-blocking fd with the runtime poller lets Close interrupt Receive
	file := os.NewFile(uintptr(fd), "can:"+ifname)
	fileOwned = true
	raw, err := file.SyscallConn()
	if err != nil {
		_ = file.Close()
		err = fmt.Errorf("failed to access socket: %v", err)
		return
	}

	sock = &Socket{
		Namespace: append(append([]string(nil), namespace...), global.NSSocket),
		Interface: ifname,
		Ifindex:   ifindex,
		fd:        fd,
		file:      file,
		raw:       raw,
		frameBuf:  make([]byte, global.CANFrameSize),
		oobBuf:    make([]byte, controlBufferSize()),
	}
	sock.Metrics.ReceiveBuffer.Store(uint64(rcvbuf))

	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
		"Listening on CAN interface %s (ifindex %d)\n", ifname, ifindex)
	return
}

// SIOCGIFINDEX lookup on the CAN socket itself
func interfaceIndex(fd int, ifname string) (ifindex int, err error) {
	ifr, err := unix.NewIfreq(ifname)
	if err != nil {
		err = fmt.Errorf("invalid interface name %q: %v", ifname, err)
		return
	}
	err = unix.IoctlIfreq(fd, unix.SIOCGIFINDEX, ifr)
	if err != nil {
		err = fmt.Errorf("failed to find CAN interface %s: %v", ifname, err)
		return
	}
	ifindex = int(ifr.Uint32())
	return
}

// eBPF program first when requested, CAN_RAW_FILTER otherwise or on failure
func installFilters(ctx context.Context, fd int, opts Options) {
	ctx = logctx.AppendCtxTag(ctx, global.NSFilter)

	if opts.UseEBPF {
		err := ebpf.AttachFilter(fd, opts.Filters)
		if err == nil {
			logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
				"Attached eBPF id filter with %d rules\n", len(opts.Filters))
			return
		}
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"eBPF filter unavailable, falling back to CAN_RAW_FILTER: %v\n", err)
	}

	filters := make([]unix.CanFilter, 0, len(opts.Filters))
	for _, rule := range opts.Filters {
		filters = append(filters, unix.CanFilter{Id: rule.ID, Mask: rule.Mask})
	}
	err := unix.SetsockoptCanRawFilter(fd, unix.SOL_CAN_RAW, unix.CAN_RAW_FILTER, filters)
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"Failed installing CAN_RAW_FILTER, receiving all frames: %v\n", err)
		return
	}
	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"Installed CAN_RAW_FILTER with %d rules\n", len(filters))
}

// Blocks for one frame. Returns an error wrapping net.ErrClosed after Close.
func (sock *Socket) Receive() (delivery capture.Delivery, err error) {
	var n, oobn, flags int
	var from unix.Sockaddr
	var recvErr error

	err = sock.raw.Read(func(fd uintptr) (done bool) {
		n, oobn, flags, from, recvErr = unix.Recvmsg(int(fd), sock.frameBuf, sock.oobBuf, 0)
		done = recvErr != unix.EAGAIN
		return
	})
	if err == nil {
		err = recvErr
	}
	if err != nil {
		if sock.closed.Load() || errors.Is(err, os.ErrClosed) {
			err = fmt.Errorf("receive on closed socket: %w", net.ErrClosed)
			return
		}
		err = fmt.Errorf("recvmsg: %v", err)
		return
	}

	if flags&(unix.MSG_TRUNC|unix.MSG_CTRUNC) != 0 {
		sock.Metrics.Truncated.Add(1)
	}

	delivery.Frame, err = decodeFrame(sock.frameBuf[:n])
	if err != nil {
		return
	}

	ctrl := parseControl(sock.oobBuf[:oobn])
	if ctrl.hasTimestamp {
		delivery.Timestamp = record.Timeval{Sec: ctrl.sec, Usec: ctrl.usec}
		delivery.HasTimestamp = true
	} else {
		sock.Metrics.NoTimestamp.Add(1)
	}
	if ctrl.hasDropCount {
		delivery.DropCount = ctrl.dropCount
		delivery.HasDropCount = true
		sock.Metrics.DropCounter.Store(uint64(ctrl.dropCount))
	}

	delivery.Ifindex = sock.Ifindex
	if addr, ok := from.(*unix.SockaddrCAN); ok {
		delivery.Ifindex = addr.Ifindex
	}

	sock.Metrics.Deliveries.Add(1)
	return
}

// Closes the socket, unblocking any pending Receive
func (sock *Socket) Close() (err error) {
	if sock.closed.Swap(true) {
		return
	}
	err = sock.file.Close()
	return
}
