package record

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Parses one 16 byte record, kind is derived from the reserved identifiers
func Decode(data []byte) (rec Record, err error) {
	if len(data) < Size {
		err = fmt.Errorf("%w: got %d bytes", ErrShortRecord, len(data))
		return
	}

	rec.Timestamp = binary.LittleEndian.Uint32(data[0:lenTimestamp])
	rec.ID = binary.LittleEndian.Uint32(data[lenTimestamp:payloadOffset])
	copy(rec.Payload[:], data[payloadOffset:Size])

	switch rec.ID {
	case IDStartTime:
		rec.Kind = KindStartTime
	case IDDrop:
		rec.Kind = KindDrop
	default:
		rec.Kind = KindData
	}
	return
}

func (rec *Record) UnmarshalBinary(data []byte) (err error) {
	*rec, err = Decode(data)
	return
}

// Frame count carried by a DROP record (zero for other kinds)
func (rec Record) DropCount() (count uint32) {
	if rec.Kind != KindDrop {
		return
	}
	count = binary.LittleEndian.Uint32(rec.Payload[0:4])
	return
}

// Wall clock session start carried by a START_TIME record (zero for other kinds)
func (rec Record) StartTime() (start time.Time) {
	if rec.Kind != KindStartTime {
		return
	}
	sec := binary.LittleEndian.Uint32(rec.Payload[0:4])
	usec := binary.LittleEndian.Uint32(rec.Payload[4:8])
	start = time.Unix(int64(sec), int64(usec)*int64(time.Microsecond))
	return
}
