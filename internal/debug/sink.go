package debug

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// NewOperationID allocates a correlation id for one enter/exit
// bracket, the way the pack's orchestrate runner stamps each run with
// uuid.New().String().
func NewOperationID() string { return uuid.New().String() }

// Sink adapts a TraceWriter into the enter/exit/debugger/warning hook
// shapes that vertexspace.Callbacks, groupspace.Callbacks, and
// bfm.Callbacks expect, tagging every line written during one
// bracket with the same operation id.
type Sink struct {
	w *TraceWriter

	mu   sync.Mutex
	opID string
}

// NewSink wraps w. w may be nil, in which case Sink's methods are
// no-ops beyond tracking the current operation id.
func NewSink(w *TraceWriter) *Sink {
	return &Sink{w: w}
}

// OperationID reports the id of the bracket currently open, or "" if
// none is open.
func (s *Sink) OperationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opID
}

// Enter opens a new operation id and records the enter line. Suitable
// for direct assignment to a Callbacks.Enter field.
func (s *Sink) Enter(op string) {
	s.mu.Lock()
	s.opID = NewOperationID()
	opID := s.opID
	s.mu.Unlock()
	s.write(opID, op, "enter", "")
}

// Exit records the exit line and clears the current operation id.
// Suitable for direct assignment to a Callbacks.Exit field.
func (s *Sink) Exit(op string) {
	s.mu.Lock()
	opID := s.opID
	s.opID = ""
	s.mu.Unlock()
	s.write(opID, op, "exit", "")
}

// Debug records a debugger trace line. Suitable for direct assignment
// to bfm.Callbacks.Debugger.
func (s *Sink) Debug(msg string) {
	s.write(s.OperationID(), "", "debug", msg)
}

// Warning records a partition-inconsistency warning. Suitable for
// direct assignment to a Callbacks.Warning field.
func (s *Sink) Warning(msg string) {
	s.write(s.OperationID(), "", "warning", msg)
}

// Close flushes and closes the underlying writer, if any.
func (s *Sink) Close() error {
	if s.w == nil {
		return nil
	}
	return s.w.Close()
}

func (s *Sink) write(opID, op, kind, msg string) {
	if s.w == nil {
		return
	}
	_ = s.w.Write(Entry{
		Time:        time.Now().UTC(),
		OperationID: opID,
		Op:          op,
		Kind:        kind,
		Message:     msg,
	})
}
