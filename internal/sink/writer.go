// Durable record sink with a bounded-latency flush policy and running BLAKE2b digest
package sink

import (
	"bufio"
	"cand/internal/atomics"
	"cand/internal/global"
	"cand/pkg/record"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Output file path for a session started at now (local time)
func FileName(dir string, now time.Time) (path string) {
	name := global.OutputFilePrefix + now.Format(global.OutputTimeLayout) + global.OutputFileSuffix
	path = filepath.Join(dir, name)
	return
}

// Creates the session file in dir. Refuses to touch an existing file.
func Open(namespace []string, dir string, now time.Time, opts Options) (writer *Writer, err error) {
	path := FileName(dir, now)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY|os.O_APPEND, 0640)
	if err != nil {
		err = fmt.Errorf("failed to create output file: %v", err)
		return
	}

	writer, err = New(namespace, file, opts)
	if err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return
	}
	writer.file = file
	writer.path = path
	return
}

// Wraps any destination. Sync is used on flush when dest supports it and opts request it.
func New(namespace []string, dest io.Writer, opts Options) (writer *Writer, err error) {
	digest, err := blake2b.New512(nil)
	if err != nil {
		err = fmt.Errorf("failed to create digest: %v", err)
		return
	}

	writer = &Writer{
		Namespace:   append(append([]string(nil), namespace...), global.NSSink),
		dest:        dest,
		out:         bufio.NewWriterSize(dest, bufferSize),
		digest:      digest,
		syncOnFlush: opts.SyncOnFlush,
		scratch:     make([]byte, 0, record.Size),
	}
	return
}

// Path of the backing file, empty when not file backed
func (writer *Writer) Path() (path string) {
	path = writer.path
	return
}

// Appends one record then applies the flush policy:
// DROP flushes now, START_TIME only sets the watermark, anything else flushes once
// its second is more than the flush gap past the watermark (or behind it after a wrap).
func (writer *Writer) WriteRecord(rec record.Record) (err error) {
	if writer.closed {
		err = fmt.Errorf("write to closed sink")
		return
	}

	encoded, err := rec.AppendBinary(writer.scratch[:0])
	if err != nil {
		return
	}

	n, err := writer.out.Write(encoded)
	if err != nil {
		err = fmt.Errorf("failed buffering record: %v", err)
		return
	}
	writer.digest.Write(encoded) // never fails
	writer.Metrics.Records.Add(1)
	writer.Metrics.Bytes.Add(uint64(n))

	second := int64(rec.Timestamp / 1000)

	switch rec.Kind {
	case record.KindDrop:
		err = writer.flushAt(second)
	case record.KindStartTime:
		writer.watermark = second
		writer.haveWatermark = true
	default:
		if !writer.haveWatermark {
			writer.watermark = second
			writer.haveWatermark = true
			return
		}
		gap := second - writer.watermark
		if gap > global.PeriodicFlushGapSec || gap < 0 {
			writer.Metrics.Periodic.Add(1)
			err = writer.flushAt(second)
		}
	}
	return
}

func (writer *Writer) flushAt(second int64) (err error) {
	err = writer.Flush()
	if err != nil {
		return
	}
	writer.watermark = second
	writer.haveWatermark = true
	return
}

// Drains buffered records to the destination (and to disk when sync is enabled)
func (writer *Writer) Flush() (err error) {
	err = writer.out.Flush()
	if err != nil {
		err = fmt.Errorf("failed flushing records: %v", err)
		return
	}
	writer.Metrics.Flushes.Add(1)

	if !writer.syncOnFlush {
		return
	}
	dest, ok := writer.dest.(syncer)
	if !ok {
		return
	}
	start := time.Now()
	err = dest.Sync()
	syncNs := uint64(time.Since(start).Nanoseconds())
	writer.Metrics.SyncNs.Add(syncNs)
	atomics.StoreMax(&writer.Metrics.SyncMaxNs, syncNs)
	if err != nil {
		err = fmt.Errorf("failed syncing records: %v", err)
		return
	}
	return
}

// Hex BLAKE2b-512 of every byte written so far
func (writer *Writer) Digest() (sum string) {
	sum = hex.EncodeToString(writer.digest.Sum(nil))
	return
}

// Flushes and closes the backing file, then writes the b2sum compatible digest sidecar.
// Safe to call more than once.
func (writer *Writer) Close() (err error) {
	if writer.closed {
		return
	}
	writer.closed = true

	err = writer.Flush()
	if writer.file == nil {
		return
	}

	closeErr := writer.file.Close()
	if err == nil && closeErr != nil {
		err = fmt.Errorf("failed closing output file: %v", closeErr)
	}
	if err != nil {
		return
	}

	line := writer.Digest() + "  " + filepath.Base(writer.path) + "\n"
	err = os.WriteFile(writer.path+global.DigestFileSuffix, []byte(line), 0640)
	if err != nil {
		err = fmt.Errorf("failed writing digest file: %v", err)
		return
	}
	return
}
