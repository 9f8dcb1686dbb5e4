package replay

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/zeusync/corridor/pkg/generic"
)

var lineBuffers = generic.NewResettingPool(func() *bytes.Buffer { return new(bytes.Buffer) }, (*bytes.Buffer).Reset)

var _ Recorder = (*Writer)(nil)

// Writer appends records to a zstd stream.
type Writer struct {
	mu     sync.Mutex
	enc    *zstd.Encoder
	w      *bufio.Writer
	closer io.Closer
	count  uint64
}

// NewWriter writes h and returns a Writer for tick records. Closing the
// Writer does not close out.
func NewWriter(out io.Writer, h Header) (*Writer, error) {
	enc, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, err
	}
	w := &Writer{enc: enc, w: bufio.NewWriterSize(enc, 64*1024)}
	if h.Version == 0 {
		h.Version = FormatVersion
	}
	if err := w.writeLine(envelope{Header: &h}); err != nil {
		_ = enc.Close()
		return nil, err
	}
	return w, nil
}

// Create writes a recording to path, creating parent directories.
func Create(path string, h Header) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(f, h)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

func (w *Writer) Record(rec TickRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.enc == nil {
		return fmt.Errorf("replay writer is closed")
	}
	if err := w.writeLine(envelope{Tick: &rec}); err != nil {
		return err
	}
	w.count++
	return nil
}

// Count is the number of tick records written.
func (w *Writer) Count() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// writeLine encodes v as one JSON line.
func (w *Writer) writeLine(v envelope) error {
	buf := lineBuffers.Get()
	defer lineBuffers.Put(buf)
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		return err
	}
	_, err := w.w.Write(buf.Bytes())
	return err
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.enc == nil {
		return nil
	}
	err := w.w.Flush()
	if cerr := w.enc.Close(); err == nil {
		err = cerr
	}
	w.enc = nil
	w.w = nil
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
		w.closer = nil
	}
	return err
}
