package debug

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
)

func TestTraceWriterWritesCompressedJSONL(t *testing.T) {
	dir := t.TempDir()
	w := NewTraceWriter(dir, "trace")
	defer w.Close()

	if err := w.Write(Entry{Time: time.Now().UTC(), Op: "addvertex", Kind: "enter"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Write(Entry{Time: time.Now().UTC(), Op: "addvertex", Kind: "exit"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "trace-*.jsonl.zst"))
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected exactly one rotation file, got %v", matches)
	}

	f, err := os.Open(matches[0])
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd.NewReader: %v", err)
	}
	defer dec.Close()

	scanner := bufio.NewScanner(dec.IOReadCloser())
	var lines int
	for scanner.Scan() {
		lines++
	}
	if lines != 2 {
		t.Fatalf("decoded %d lines, want 2", lines)
	}
}

// TestTraceWriterBuffersUntilBracketCloses exercises the
// per-operation-id buffering: entries tagged with an OperationID stay
// in memory, not on disk, until an "exit" entry for the same id
// arrives.
func TestTraceWriterBuffersUntilBracketCloses(t *testing.T) {
	dir := t.TempDir()
	w := NewTraceWriter(dir, "trace")
	defer w.Close()

	opID := "op-1"
	if err := w.Write(Entry{Time: time.Now().UTC(), OperationID: opID, Op: "addvertex", Kind: "enter"}); err != nil {
		t.Fatalf("Write enter: %v", err)
	}
	if err := w.Write(Entry{Time: time.Now().UTC(), OperationID: opID, Kind: "debug", Message: "probing"}); err != nil {
		t.Fatalf("Write debug: %v", err)
	}

	if matches, _ := filepath.Glob(filepath.Join(dir, "trace-*.jsonl.zst")); len(matches) != 0 {
		t.Fatalf("expected no rotation file before the bracket's exit, got %v", matches)
	}

	if err := w.Write(Entry{Time: time.Now().UTC(), OperationID: opID, Op: "addvertex", Kind: "exit"}); err != nil {
		t.Fatalf("Write exit: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "trace-*.jsonl.zst"))
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected exactly one rotation file after the exit, got %v", matches)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(matches[0])
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd.NewReader: %v", err)
	}
	defer dec.Close()

	scanner := bufio.NewScanner(dec.IOReadCloser())
	var lines int
	for scanner.Scan() {
		lines++
	}
	if lines != 3 {
		t.Fatalf("decoded %d lines, want 3 (enter, debug, exit)", lines)
	}
}

// TestTraceWriterClosesPendingBracketOnClose covers a bracket that
// never sees an exit entry (the caller panicked between Enter and
// Exit): Close must still flush it rather than silently dropping it.
func TestTraceWriterClosesPendingBracketOnClose(t *testing.T) {
	dir := t.TempDir()
	w := NewTraceWriter(dir, "trace")

	if err := w.Write(Entry{Time: time.Now().UTC(), OperationID: "op-2", Op: "addvertex", Kind: "enter"}); err != nil {
		t.Fatalf("Write enter: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "trace-*.jsonl.zst"))
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected the never-exited bracket to be flushed on Close, got %v", matches)
	}
}
