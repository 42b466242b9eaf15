// Package debug implements the tracker's diagnostic sink: an
// hourly-rotated, zstd-compressed JSONL writer for the BFM debugger
// callback and for vertex-space/group-space warnings, plus a
// uuid-based operation id that ties one enter/exit bracket's trace
// lines together.
package debug

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Entry is one trace line.
type Entry struct {
	Time        time.Time `json:"time"`
	OperationID string    `json:"operation_id,omitempty"`
	Op          string    `json:"op,omitempty"`
	Kind        string    `json:"kind"` // "enter", "exit", "debug", "warning"
	Message     string    `json:"message,omitempty"`
}

// TraceWriter is a JSONL-over-zstd writer, rotated once per UTC hour,
// adapted from the teacher's persistence log writer for this module's
// own diagnostic trace rather than game-tick events. Unlike the
// teacher's writer, entries tagged with an operation id are held in
// memory until the bracket they belong to closes: a vertexspace
// (§4.5) or groupspace (§4.7) Enter/Exit pair produces one contiguous
// run of lines on disk even if Debug/Warning calls land on it out of
// order. A bracket that never reaches its "exit" entry stays in memory
// until Close, which flushes it.
type TraceWriter struct {
	baseDir string
	prefix  string

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
	pending map[string][]Entry
}

// NewTraceWriter opens a writer rooted at baseDir; files are named
// "<prefix>-YYYY-MM-DD-HH.jsonl.zst".
func NewTraceWriter(baseDir, prefix string) *TraceWriter {
	return &TraceWriter{baseDir: baseDir, prefix: prefix, pending: map[string][]Entry{}}
}

// Write appends one trace entry. Entries with no OperationID (the
// sink has no bracket open) are written through immediately; entries
// tagged with an OperationID are buffered under that id until an
// entry of Kind "exit" for the same id arrives, at which point the
// whole bracket is flushed to disk in order.
func (w *TraceWriter) Write(e Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if e.OperationID == "" {
		return w.flushLocked([]Entry{e})
	}

	w.pending[e.OperationID] = append(w.pending[e.OperationID], e)
	if e.Kind != "exit" {
		return nil
	}
	bracket := w.pending[e.OperationID]
	delete(w.pending, e.OperationID)
	return w.flushLocked(bracket)
}

func (w *TraceWriter) flushLocked(entries []Entry) error {
	hour := time.Now().UTC().Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	for _, e := range entries {
		b, err := json.Marshal(e)
		if err != nil {
			return err
		}
		if _, err := w.w.Write(b); err != nil {
			return err
		}
		if err := w.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.w.Flush()
}

func (w *TraceWriter) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	dir := filepath.Dir(w.pathForHour(hour))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.pathForHour(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 64*1024)
	w.curHour = hour
	return nil
}

func (w *TraceWriter) closeLocked() error {
	var err error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	return err
}

// Close flushes any brackets still pending (never reached an "exit"
// entry, typically because the operation panicked) and closes the
// current rotation file, if any.
func (w *TraceWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, bracket := range w.pending {
		delete(w.pending, id)
		if err := w.flushLocked(bracket); err != nil {
			return err
		}
	}
	return w.closeLocked()
}

func (w *TraceWriter) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}
