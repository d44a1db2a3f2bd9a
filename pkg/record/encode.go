// Fixed width binary log record (16 bytes, little-endian)
//
//	0..3   timestamp_ms (uint32)
//	4..7   event_id     (uint32)
//	8..15  payload      (8 bytes, meaning depends on event_id)
package record

import (
	"encoding/binary"
	"fmt"
)

// Creates a data record for a received bus frame
func NewData(timestamp uint32, canID uint32, data [8]byte) (rec Record, err error) {
	if IsReserved(canID) {
		err = fmt.Errorf("frame id 0x%X: %w", canID, ErrReservedID)
		return
	}
	rec = Record{
		Kind:      KindData,
		Timestamp: timestamp,
		ID:        canID,
		Payload:   data,
	}
	return
}

// Creates the session start marker. Payload holds the seconds and microseconds of the
// first receive time as two uint32 values.
func NewStartTime(tv Timeval) (rec Record) {
	rec = Record{
		Kind:      KindStartTime,
		Timestamp: tv.Millis(),
		ID:        IDStartTime,
	}
	binary.LittleEndian.PutUint32(rec.Payload[0:4], uint32(tv.Sec))
	binary.LittleEndian.PutUint32(rec.Payload[4:8], uint32(tv.Usec))
	return
}

// Creates a loss marker carrying the number of frames dropped since the previous marker
func NewDrop(timestamp uint32, delta uint32) (rec Record) {
	rec = Record{
		Kind:      KindDrop,
		Timestamp: timestamp,
		ID:        IDDrop,
	}
	binary.LittleEndian.PutUint32(rec.Payload[0:4], delta)
	return
}

func IsReserved(id uint32) (reserved bool) {
	reserved = id == IDStartTime || id == IDDrop
	return
}

// Appends the 16 byte encoding of the record to dst
func (rec Record) AppendBinary(dst []byte) (out []byte, err error) {
	if rec.Kind == KindData && IsReserved(rec.ID) {
		err = fmt.Errorf("data record id 0x%X: %w", rec.ID, ErrReservedID)
		return
	}
	if rec.Kind != KindData && rec.ID != rec.Kind.markerID() {
		err = fmt.Errorf("%s record carries id 0x%X, expected 0x%X", rec.Kind, rec.ID, rec.Kind.markerID())
		return
	}

	out = binary.LittleEndian.AppendUint32(dst, rec.Timestamp)
	out = binary.LittleEndian.AppendUint32(out, rec.ID)
	out = append(out, rec.Payload[:]...)
	return
}

func (rec Record) MarshalBinary() (data []byte, err error) {
	data, err = rec.AppendBinary(make([]byte, 0, Size))
	return
}

func (kind Kind) markerID() (id uint32) {
	switch kind {
	case KindStartTime:
		id = IDStartTime
	case KindDrop:
		id = IDDrop
	}
	return
}
