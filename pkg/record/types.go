package record

import "time"

// Record variant, every kind serializes to the same 16 byte shape
type Kind uint8

const (
	KindData Kind = iota
	KindStartTime
	KindDrop
)

// One persisted log entry
type Record struct {
	Kind      Kind
	Timestamp uint32 // milliseconds, truncated to 32 bits
	ID        uint32 // raw can_id or reserved marker id
	Payload   [8]byte
}

// Kernel receive time (struct timeval)
type Timeval struct {
	Sec  int64
	Usec int64
}

func (kind Kind) String() (name string) {
	switch kind {
	case KindData:
		name = "DATA"
	case KindStartTime:
		name = "START_TIME"
	case KindDrop:
		name = "DROP"
	default:
		name = "UNKNOWN"
	}
	return
}

// Converts a timeval to the record timestamp (wraps after ~49.7 days of epoch time)
func (tv Timeval) Millis() (ms uint32) {
	ms = uint32(tv.Usec/usPerMs + tv.Sec*msPerSecond)
	return
}

func (tv Timeval) Time() (t time.Time) {
	t = time.Unix(tv.Sec, tv.Usec*int64(time.Microsecond))
	return
}

func TimevalFromTime(t time.Time) (tv Timeval) {
	tv.Sec = t.Unix()
	tv.Usec = int64(t.Nanosecond()) / int64(time.Microsecond)
	return
}
