package network

import (
	"cand/internal/global"
	"fmt"

	"github.com/pbnjay/memory"
	"golang.org/x/sys/unix"
)

// Picks the receive buffer size for a requested value. Auto uses 1/1024 of system memory
// clamped to the configured bounds.
func resolveReceiveBuffer(requested int, totalMemory uint64) (size int) {
	if requested != global.AutoReceiveBuffer {
		size = requested
		return
	}

	size = int(totalMemory / 1024)
	if size < global.MinAutoReceiveBytes {
		size = global.MinAutoReceiveBytes
	}
	if size > global.MaxAutoReceiveBytes {
		size = global.MaxAutoReceiveBytes
	}
	return
}

// Sets SO_RCVBUFFORCE (ignores rmem_max, needs CAP_NET_ADMIN) falling back to SO_RCVBUF.
// Returns the effective size reported by the kernel.
func setReceiveBuffer(fd int, requested int) (effective int, err error) {
	size := resolveReceiveBuffer(requested, memory.TotalMemory())
	if size <= 0 {
		effective, err = unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF)
		return
	}

	err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUFFORCE, size)
	if err != nil {
		forceErr := err
		err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, size)
		if err != nil {
			err = fmt.Errorf("SO_RCVBUFFORCE: %v, SO_RCVBUF: %v", forceErr, err)
			return
		}
	}

	effective, err = unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF)
	if err != nil {
		err = fmt.Errorf("failed reading back receive buffer size: %v", err)
		return
	}
	return
}
