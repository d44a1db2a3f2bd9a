package record

import "errors"

const (
	// Record wire field lengths
	Size          int = 16
	lenTimestamp  int = 4
	lenEventID    int = 4
	PayloadLen    int = 8
	payloadOffset int = lenTimestamp + lenEventID

	// Reserved event identifiers for synthesized marker records.
	// Raw SocketCAN identifiers never take these values: standard ids stop at 0x7FF and
	// extended ids always carry the EFF flag in bit 31.
	IDStartTime uint32 = 0x8000 // payload: first receive timeval
	IDDrop      uint32 = 0x8001 // payload: newly dropped frame count

	// SocketCAN can_id flag bits and masks
	FlagEFF     uint32 = 0x80000000
	FlagRTR     uint32 = 0x40000000
	FlagERR     uint32 = 0x20000000
	MaskStdID   uint32 = 0x000007FF
	MaskExtID   uint32 = 0x1FFFFFFF
	msPerSecond int64  = 1000
	usPerMs     int64  = 1000
)

var (
	ErrReservedID  = errors.New("identifier collides with reserved marker range")
	ErrShortRecord = errors.New("record shorter than 16 bytes")
)
