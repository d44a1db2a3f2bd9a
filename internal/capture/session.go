package capture

import (
	"cand/pkg/record"
	"fmt"
	"time"
)

// Creates intake state for a new output file. clock stamps deliveries until the kernel
// supplies its first timestamp (nil uses time.Now).
func NewSession(clock func() time.Time) (new *Session) {
	if clock == nil {
		clock = time.Now
	}
	new = &Session{clock: clock}
	return
}

// Turns one delivery into its records, appended to out in write order:
// START_TIME (first delivery only), DROP (counter advanced), DATA (always).
func (session *Session) Observe(delivery Delivery, out []record.Record) (records []record.Record, err error) {
	records = out

	if delivery.HasTimestamp {
		session.lastTimestamp = delivery.Timestamp
		session.haveTimestamp = true
	} else if !session.haveTimestamp {
		// No kernel time seen yet: stamp from the host clock so START_TIME stays first
		session.lastTimestamp = record.TimevalFromTime(session.clock())
		session.FallbackCount++
	}
	timestamp := session.lastTimestamp.Millis()

	// Validate first so a rejected frame leaves marker state untouched
	data, err := record.NewData(timestamp, delivery.Frame.ID, delivery.Frame.Data)
	if err != nil {
		err = fmt.Errorf("rejecting frame: %w", err)
		return
	}

	if !session.started {
		records = append(records, record.NewStartTime(session.lastTimestamp))
		session.started = true
	}

	if delivery.HasDropCount && delivery.DropCount != session.lastDropCount {
		delta := delivery.DropCount - session.lastDropCount // modular, survives counter wrap
		records = append(records, record.NewDrop(timestamp, delta))
		session.lastDropCount = delivery.DropCount
	}

	records = append(records, data)
	return
}

// Counter baseline used for the next loss computation
func (session *Session) LastDropCount() (count uint32) {
	count = session.lastDropCount
	return
}

func (session *Session) Started() (started bool) {
	started = session.started
	return
}
