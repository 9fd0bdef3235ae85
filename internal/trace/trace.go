// Package trace records per-tick simulation statistics as zstd-compressed
// JSON lines. The first line is a Header; every following line is a Tick.
package trace

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

// Header describes the run a trace belongs to.
type Header struct {
	RunID   string    `json:"run_id"`
	Sim     string    `json:"sim"`
	Width   int       `json:"width"`
	Height  int       `json:"height"`
	Seed    int64     `json:"seed"`
	Started time.Time `json:"started"`
	// Params holds free-form run settings such as flush limit or tree depth.
	Params map[string]string `json:"params,omitempty"`
}

// Tick is one line of statistics.
type Tick struct {
	Frame     uint64 `json:"frame"`
	Active    int    `json:"active"`
	Particles int    `json:"particles"`
	Flushed   int    `json:"flushed"`
	Pending   int    `json:"pending"`
	StepNanos int64  `json:"step_ns"`
}

// Writer appends ticks to a compressed trace. It is safe for concurrent use.
type Writer struct {
	mu     sync.Mutex
	closer io.Closer
	enc    *zstd.Encoder
	w      *bufio.Writer
	runID  string
}

// Create opens path for writing, creating parent directories as needed.
func Create(path string, h Header) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
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

// NewWriter starts a trace on dst and writes the header. An empty RunID is
// filled with a fresh UUID; a zero Started time with the current time.
func NewWriter(dst io.Writer, h Header) (*Writer, error) {
	if h.RunID == "" {
		h.RunID = uuid.NewString()
	}
	if h.Started.IsZero() {
		h.Started = time.Now().UTC()
	}
	enc, err := zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, err
	}
	w := &Writer{enc: enc, w: bufio.NewWriterSize(enc, 64*1024), runID: h.RunID}
	if err := w.writeLine(h); err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("trace header: %w", err)
	}
	return w, nil
}

// RunID returns the identifier stamped into the header.
func (w *Writer) RunID() string { return w.runID }

// WriteTick appends one tick line.
func (w *Writer) WriteTick(t Tick) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.enc == nil {
		return errors.New("trace: write after close")
	}
	return w.writeLine(t)
}

func (w *Writer) writeLine(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Close flushes buffered lines and finishes the zstd frame. It also closes the
// underlying file when the writer was made by Create.
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
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
		w.closer = nil
	}
	return err
}

// Read decodes a whole trace.
func Read(r io.Reader) (Header, []Tick, error) {
	var h Header
	dec, err := zstd.NewReader(r)
	if err != nil {
		return h, nil, err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return h, nil, err
		}
		return h, nil, errors.New("trace: missing header")
	}
	if err := json.Unmarshal(sc.Bytes(), &h); err != nil {
		return h, nil, fmt.Errorf("trace header: %w", err)
	}
	var ticks []Tick
	for sc.Scan() {
		var t Tick
		if err := json.Unmarshal(sc.Bytes(), &t); err != nil {
			return h, ticks, fmt.Errorf("trace line %d: %w", len(ticks)+2, err)
		}
		ticks = append(ticks, t)
	}
	return h, ticks, sc.Err()
}
