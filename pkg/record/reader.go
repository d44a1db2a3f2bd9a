package record

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	gzipMagic = []byte{0x1F, 0x8B}
)

// Sequential record reader over a plain, zstd or gzip compressed log stream
type Reader struct {
	src     io.Reader
	closers []func() error
	buf     [Size]byte
	Offset  int64 // byte offset of the next record in the uncompressed stream
}

// Wraps an io.Reader, transparently decompressing archived logs
func NewReader(input io.Reader) (reader *Reader, err error) {
	buffered := bufio.NewReader(input)
	reader = &Reader{src: buffered}

	magic, peekErr := buffered.Peek(len(zstdMagic))
	if peekErr != nil && !errors.Is(peekErr, io.EOF) {
		err = fmt.Errorf("failed to read log header: %v", peekErr)
		reader = nil
		return
	}

	switch {
	case bytes.HasPrefix(magic, zstdMagic):
		var decoder *zstd.Decoder
		decoder, err = zstd.NewReader(buffered)
		if err != nil {
			err = fmt.Errorf("failed to open zstd stream: %v", err)
			reader = nil
			return
		}
		reader.src = decoder
		reader.closers = append(reader.closers, func() error { decoder.Close(); return nil })
	case bytes.HasPrefix(magic, gzipMagic):
		var decoder *gzip.Reader
		decoder, err = gzip.NewReader(buffered)
		if err != nil {
			err = fmt.Errorf("failed to open gzip stream: %v", err)
			reader = nil
			return
		}
		reader.src = decoder
		reader.closers = append(reader.closers, decoder.Close)
	}
	return
}

// Opens a log file from disk
func OpenLog(path string) (reader *Reader, err error) {
	file, err := os.Open(path)
	if err != nil {
		err = fmt.Errorf("failed to open log file: %v", err)
		return
	}

	reader, err = NewReader(file)
	if err != nil {
		file.Close()
		return
	}
	reader.closers = append(reader.closers, file.Close)
	return
}

// Returns the next record, io.EOF after the last complete one
func (reader *Reader) Next() (rec Record, err error) {
	_, err = io.ReadFull(reader.src, reader.buf[:])
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			err = fmt.Errorf("truncated record at offset %d: %w", reader.Offset, ErrShortRecord)
		}
		return
	}

	rec, err = Decode(reader.buf[:])
	if err != nil {
		return
	}
	reader.Offset += int64(Size)
	return
}

// Releases decompressors and the underlying file (inner first)
func (reader *Reader) Close() (err error) {
	for _, closeFn := range reader.closers {
		closeErr := closeFn()
		if closeErr != nil && err == nil {
			err = closeErr
		}
	}
	reader.closers = nil
	return
}
