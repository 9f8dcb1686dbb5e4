package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// Reader yields the tick records of a recording in order.
type Reader struct {
	dec     *zstd.Decoder
	scanner *bufio.Scanner
	header  Header
	closer  io.Closer
}

func NewReader(in io.Reader) (*Reader, error) {
	dec, err := zstd.NewReader(in)
	if err != nil {
		return nil, err
	}
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	r := &Reader{dec: dec, scanner: sc}
	env, err := r.next()
	if err != nil {
		dec.Close()
		if err == io.EOF {
			return nil, fmt.Errorf("%w: missing header", ErrBadFormat)
		}
		return nil, fmt.Errorf("%w: %w", ErrBadFormat, err)
	}
	if env.Header == nil {
		dec.Close()
		return nil, fmt.Errorf("%w: first record is not a header", ErrBadFormat)
	}
	if env.Header.Version != FormatVersion {
		dec.Close()
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadFormat, env.Header.Version)
	}
	r.header = *env.Header
	return r, nil
}

// Open reads the recording at path.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

func (r *Reader) Header() Header {
	return r.header
}

// Next returns io.EOF after the last record.
func (r *Reader) Next() (TickRecord, error) {
	env, err := r.next()
	if err != nil {
		return TickRecord{}, err
	}
	if env.Tick == nil {
		return TickRecord{}, fmt.Errorf("%w: expected tick record", ErrBadFormat)
	}
	return *env.Tick, nil
}

func (r *Reader) next() (envelope, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return envelope{}, err
		}
		return envelope{}, io.EOF
	}
	var env envelope
	if err := json.Unmarshal(r.scanner.Bytes(), &env); err != nil {
		return envelope{}, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	return env, nil
}

func (r *Reader) Close() error {
	r.dec.Close()
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
