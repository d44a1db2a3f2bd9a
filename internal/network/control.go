package network

import (
	"cand/internal/capture"
	"cand/internal/global"
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

var sizeofTimeval = int(unsafe.Sizeof(unix.Timeval{}))

// Control buffer large enough for one timeval and one overflow counter
func controlBufferSize() (size int) {
	size = unix.CmsgSpace(sizeofTimeval) + unix.CmsgSpace(4)
	return
}

// Extracts SO_TIMESTAMP and SO_RXQ_OVFL values. Unknown, malformed or short messages are ignored.
func parseControl(oob []byte) (ctrl controlData) {
	if len(oob) == 0 {
		return
	}

	msgs, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return
	}

	for _, msg := range msgs {
		if msg.Header.Level != unix.SOL_SOCKET {
			continue
		}
		data := msg.Data

		switch msg.Header.Type {
		case unix.SCM_TIMESTAMP:
			switch {
			case len(data) >= 16:
				ctrl.sec = int64(binary.NativeEndian.Uint64(data[0:8]))
				ctrl.usec = int64(binary.NativeEndian.Uint64(data[8:16]))
				ctrl.hasTimestamp = true
			case len(data) >= 8:
				// 32 bit time_t
				ctrl.sec = int64(int32(binary.NativeEndian.Uint32(data[0:4])))
				ctrl.usec = int64(int32(binary.NativeEndian.Uint32(data[4:8])))
				ctrl.hasTimestamp = true
			}
		case unix.SO_RXQ_OVFL:
			if len(data) >= 4 {
				ctrl.dropCount = binary.NativeEndian.Uint32(data[0:4])
				ctrl.hasDropCount = true
			}
		}
	}
	return
}

// Decodes struct can_frame (host byte order id, dlc at byte 4, data at 8..15).
// Payload bytes past the dlc are zeroed.
func decodeFrame(buf []byte) (frame capture.Frame, err error) {
	if len(buf) < global.CANFrameSize {
		err = fmt.Errorf("incomplete CAN frame: %d of %d bytes", len(buf), global.CANFrameSize)
		return
	}

	frame.ID = binary.NativeEndian.Uint32(buf[0:4])
	frame.Len = buf[4]
	if frame.Len > 8 {
		frame.Len = 8
	}
	copy(frame.Data[:frame.Len], buf[8:8+int(frame.Len)])
	return
}
