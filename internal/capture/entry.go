// Single threaded capture loop: blocking receive, then synchronous encode, write and flush
package capture

import (
	"cand/internal/atomics"
	"cand/internal/global"
	"cand/internal/logctx"
	"cand/pkg/record"
	"context"
	"fmt"
	"time"
)

// Creates new capture loop instance
func New(namespace []string, source Source, sink RecordWriter, session *Session, observers ...LossObserver) (new *Instance) {
	if session == nil {
		session = NewSession(nil)
	}
	new = &Instance{
		Namespace: append(append([]string(nil), namespace...), global.NSCapture),
		source:    source,
		sink:      sink,
		session:   session,
		observers: observers,
	}
	return
}

// Runs until the source or sink fails. Returns nil when the source failure follows
// cancellation of ctx (shutdown closes the socket to unblock the receive).
func (instance *Instance) Run(ctx context.Context) (err error) {
	ctx = logctx.AppendCtxTag(ctx, global.NSCapture)

	var batch [maxRecordsPerDelivery]record.Record
	for {
		if ctx.Err() != nil {
			return
		}

		// Blocking until a frame arrives or the socket is closed
		delivery, recvErr := instance.source.Receive()
		start := time.Now()
		if recvErr != nil {
			if ctx.Err() != nil {
				logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "Receive interrupted by shutdown\n")
				return
			}
			err = fmt.Errorf("%w: %v", ErrReceive, recvErr)
			return
		}
		instance.Metrics.Frames.Add(1)
		instance.Totals.Frames.Add(1)

		fallbacksBefore := instance.session.FallbackCount
		records, obsErr := instance.session.Observe(delivery, batch[:0])
		if obsErr != nil {
			err = obsErr
			return
		}
		if instance.session.FallbackCount != fallbacksBefore {
			instance.Metrics.FallbackStamp.Add(1)
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
				"No kernel receive timestamp available yet, stamping frame from host clock\n")
		}

		for _, rec := range records {
			err = instance.sink.WriteRecord(rec)
			if err != nil {
				err = fmt.Errorf("%w: %s record: %v", ErrWrite, rec.Kind, err)
				return
			}
			instance.account(ctx, rec, delivery)
		}

		durNs := uint64(time.Since(start).Nanoseconds())
		instance.Metrics.BusyNs.Add(durNs)
		atomics.StoreMax(&instance.Metrics.MaxNs, durNs)
	}
}

// Updates counters and notifies loss observers once a record is written
func (instance *Instance) account(ctx context.Context, rec record.Record, delivery Delivery) {
	switch rec.Kind {
	case record.KindStartTime:
		logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
			"Session start marker written (first receive at %s)\n", rec.StartTime().UTC().Format(time.RFC3339Nano))
	case record.KindDrop:
		delta := uint64(rec.DropCount())
		instance.Metrics.DropRecords.Add(1)
		instance.Metrics.DroppedFrames.Add(delta)
		total := instance.Totals.DroppedFrames.Add(delta)
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"Kernel receive queue dropped %d frames (%d total this session)\n", delta, total)
		for _, observer := range instance.observers {
			observer.ObserveLoss(ctx, rec, total)
		}
	case record.KindData:
		instance.Metrics.DataRecords.Add(1)
		logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog,
			"Frame id=0x%08X len=%d ifindex=%d ts=%d\n", rec.ID, delivery.Frame.Len, delivery.Ifindex, rec.Timestamp)
		logctx.LogEvent(ctx, global.VerbosityFullData, global.InfoLog,
			"Frame id=0x%08X data=% X\n", rec.ID, rec.Payload[:])
	}
}
