package record

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		rec      Record
		wantKind Kind
		wantErr  error
	}{
		{
			name:     "standard id",
			rec:      Record{Kind: KindData, Timestamp: 1000, ID: 0x123, Payload: [8]byte{1, 2, 3, 4, 5, 6, 7, 8}},
			wantKind: KindData,
		},
		{
			name:     "extended id with EFF flag",
			rec:      Record{Kind: KindData, Timestamp: 0xFFFFFFFF, ID: FlagEFF | 0x8000, Payload: [8]byte{0xAA}},
			wantKind: KindData,
		},
		{
			name:     "id just below reserved range",
			rec:      Record{Kind: KindData, Timestamp: 5, ID: 0x7FFF},
			wantKind: KindData,
		},
		{
			name:     "id just above reserved range",
			rec:      Record{Kind: KindData, Timestamp: 5, ID: 0x8002},
			wantKind: KindData,
		},
		{
			name:     "start marker",
			rec:      NewStartTime(Timeval{Sec: 1, Usec: 500000}),
			wantKind: KindStartTime,
		},
		{
			name:     "drop marker",
			rec:      NewDrop(1200, 5),
			wantKind: KindDrop,
		},
		{
			name:    "data record with reserved start id",
			rec:     Record{Kind: KindData, ID: IDStartTime},
			wantErr: ErrReservedID,
		},
		{
			name:    "data record with reserved drop id",
			rec:     Record{Kind: KindData, ID: IDDrop},
			wantErr: ErrReservedID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.rec.MarshalBinary()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(data) != Size {
				t.Fatalf("expected %d bytes, got %d", Size, len(data))
			}

			var decoded Record
			err = decoded.UnmarshalBinary(data)
			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}
			if decoded.Kind != tt.wantKind {
				t.Errorf("expected kind %s, got %s", tt.wantKind, decoded.Kind)
			}
			if decoded.Timestamp != tt.rec.Timestamp || decoded.ID != tt.rec.ID || decoded.Payload != tt.rec.Payload {
				t.Errorf("round trip mismatch: sent %+v, got %+v", tt.rec, decoded)
			}
		})
	}
}

func TestWireLayout(t *testing.T) {
	rec := NewDrop(0x01020304, 7)
	data, err := rec.MarshalBinary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []byte{
		0x04, 0x03, 0x02, 0x01, // timestamp
		0x01, 0x80, 0x00, 0x00, // id 0x8001
		0x07, 0x00, 0x00, 0x00, // count
		0x00, 0x00, 0x00, 0x00,
	}
	if !bytes.Equal(data, want) {
		t.Fatalf("expected bytes %x, got %x", want, data)
	}
}

func TestNewData(t *testing.T) {
	_, err := NewData(1, IDDrop, [8]byte{})
	if !errors.Is(err, ErrReservedID) {
		t.Fatalf("expected reserved id error, got %v", err)
	}

	rec, err := NewData(1, 0x7FF, [8]byte{9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Kind != KindData || rec.Payload[0] != 9 {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestMarkerPayloads(t *testing.T) {
	tv := Timeval{Sec: 1700000000, Usec: 123456}
	start := NewStartTime(tv)
	if start.Timestamp != tv.Millis() {
		t.Errorf("expected timestamp %d, got %d", tv.Millis(), start.Timestamp)
	}
	if got := start.StartTime(); !got.Equal(time.Unix(1700000000, 123456000)) {
		t.Errorf("unexpected start time %v", got)
	}
	if start.DropCount() != 0 {
		t.Errorf("start marker should not report a drop count")
	}

	drop := NewDrop(10, 42)
	if drop.DropCount() != 42 {
		t.Errorf("expected drop count 42, got %d", drop.DropCount())
	}
	if !drop.StartTime().IsZero() {
		t.Errorf("drop marker should not report a start time")
	}

	_, err := Record{Kind: KindDrop, ID: IDStartTime}.MarshalBinary()
	if err == nil {
		t.Errorf("expected error for marker with mismatched id")
	}
}

func TestTimevalMillis(t *testing.T) {
	tests := []struct {
		name string
		tv   Timeval
		want uint32
	}{
		{name: "zero", tv: Timeval{}, want: 0},
		{name: "sub millisecond truncated", tv: Timeval{Sec: 1, Usec: 999}, want: 1000},
		{name: "mixed", tv: Timeval{Sec: 3, Usec: 400999}, want: 3400},
		{name: "wraps at 2^32 ms", tv: Timeval{Sec: 4294967, Usec: 296000}, want: 0},
		{name: "just after wrap", tv: Timeval{Sec: 4294967, Usec: 297000}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tv.Millis(); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestDecodeShort(t *testing.T) {
	_, err := Decode(make([]byte, Size-1))
	if !errors.Is(err, ErrShortRecord) {
		t.Fatalf("expected short record error, got %v", err)
	}
}
