package network

import (
	"cand/internal/global"
	"encoding/binary"
	"testing"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Builds one control message the way the kernel lays it out
func cmsg(level, typ int, data []byte) []byte {
	buf := make([]byte, unix.CmsgSpace(len(data)))
	header := (*unix.Cmsghdr)(unsafe.Pointer(&buf[0]))
	header.Level = int32(level)
	header.Type = int32(typ)
	header.SetLen(unix.CmsgLen(len(data)))
	copy(buf[unix.CmsgLen(0):], data)
	return buf
}

func timevalBytes(sec, usec int64) []byte {
	if sizeofTimeval == 16 {
		buf := make([]byte, 16)
		binary.NativeEndian.PutUint64(buf[0:8], uint64(sec))
		binary.NativeEndian.PutUint64(buf[8:16], uint64(usec))
		return buf
	}
	buf := make([]byte, 8)
	binary.NativeEndian.PutUint32(buf[0:4], uint32(sec))
	binary.NativeEndian.PutUint32(buf[4:8], uint32(usec))
	return buf
}

func counterBytes(count uint32) []byte {
	buf := make([]byte, 4)
	binary.NativeEndian.PutUint32(buf, count)
	return buf
}

func TestParseControl(t *testing.T) {
	timestamp := cmsg(unix.SOL_SOCKET, unix.SCM_TIMESTAMP, timevalBytes(1700000000, 123456))
	overflow := cmsg(unix.SOL_SOCKET, unix.SO_RXQ_OVFL, counterBytes(42))

	tests := []struct {
		name string
		oob  []byte
		want controlData
	}{
		{"empty", nil, controlData{}},
		{"timestamp only", timestamp, controlData{sec: 1700000000, usec: 123456, hasTimestamp: true}},
		{"counter only", overflow, controlData{dropCount: 42, hasDropCount: true}},
		{
			"both",
			append(append([]byte(nil), timestamp...), overflow...),
			controlData{sec: 1700000000, usec: 123456, hasTimestamp: true, dropCount: 42, hasDropCount: true},
		},
		{"foreign level ignored", cmsg(unix.SOL_CAN_RAW, unix.SO_RXQ_OVFL, counterBytes(9)), controlData{}},
		{"unknown type ignored", cmsg(unix.SOL_SOCKET, unix.SO_MARK, counterBytes(9)), controlData{}},
		{"short counter ignored", cmsg(unix.SOL_SOCKET, unix.SO_RXQ_OVFL, []byte{1, 2}), controlData{}},
		{"garbage ignored", []byte{1, 2, 3}, controlData{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseControl(tt.oob)
			if got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestControlBufferFitsBoth(t *testing.T) {
	timestamp := cmsg(unix.SOL_SOCKET, unix.SCM_TIMESTAMP, timevalBytes(1, 2))
	overflow := cmsg(unix.SOL_SOCKET, unix.SO_RXQ_OVFL, counterBytes(3))
	if len(timestamp)+len(overflow) > controlBufferSize() {
		t.Fatalf("control buffer %d too small for %d bytes", controlBufferSize(), len(timestamp)+len(overflow))
	}
}

func rawFrame(id uint32, dlc uint8, data []byte) []byte {
	buf := make([]byte, global.CANFrameSize)
	binary.NativeEndian.PutUint32(buf[0:4], id)
	buf[4] = dlc
	copy(buf[8:], data)
	return buf
}

func TestDecodeFrame(t *testing.T) {
	tests := []struct {
		name     string
		buf      []byte
		wantErr  bool
		wantID   uint32
		wantLen  uint8
		wantData [8]byte
	}{
		{"standard full", rawFrame(0x123, 8, []byte{1, 2, 3, 4, 5, 6, 7, 8}), false, 0x123, 8, [8]byte{1, 2, 3, 4, 5, 6, 7, 8}},
		{"extended flag kept", rawFrame(0x80012345, 2, []byte{0xAA, 0xBB}), false, 0x80012345, 2, [8]byte{0xAA, 0xBB}},
		{"bytes past dlc zeroed", rawFrame(0x10, 1, []byte{9, 9, 9, 9}), false, 0x10, 1, [8]byte{9}},
		{"oversized dlc clamped", rawFrame(0x10, 15, []byte{1, 2, 3, 4, 5, 6, 7, 8}), false, 0x10, 8, [8]byte{1, 2, 3, 4, 5, 6, 7, 8}},
		{"short frame", make([]byte, 12), true, 0, 0, [8]byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := decodeFrame(tt.buf)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if frame.ID != tt.wantID || frame.Len != tt.wantLen || frame.Data != tt.wantData {
				t.Fatalf("expected id=0x%X len=%d data=% X, got id=0x%X len=%d data=% X",
					tt.wantID, tt.wantLen, tt.wantData, frame.ID, frame.Len, frame.Data)
			}
		})
	}
}

func TestResolveReceiveBuffer(t *testing.T) {
	const gib = 1 << 30

	tests := []struct {
		name      string
		requested int
		total     uint64
		want      int
	}{
		{"explicit kept", 1 << 20, 16 * gib, 1 << 20},
		{"auto scaled", global.AutoReceiveBuffer, 2 * gib, 2 * 1024 * 1024},
		{"auto small host", global.AutoReceiveBuffer, 64 << 20, global.MinAutoReceiveBytes},
		{"auto unknown memory", global.AutoReceiveBuffer, 0, global.MinAutoReceiveBytes},
		{"auto large host", global.AutoReceiveBuffer, 64 * gib, global.MaxAutoReceiveBytes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveReceiveBuffer(tt.requested, tt.total)
			if got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}
