// Package tracker wires this module's connectivity trackers together
// from a loaded configuration: it is the one place that builds a real
// debug.Sink, assigns it to a voxel.Successor's Debugger and to both
// vertexspace.Callbacks and groupspace.Callbacks' Enter/Exit/Warning
// hooks, and threads config.Tracker's limits into vertexspace.Options
// and groupspace.Config. Everything else in this module only ever
// sees the generic bfm/vertexspace/groupspace types; Tracker is the
// concrete binding for the voxel domain.
package tracker

import (
	"fmt"

	"voxelgraph/internal/config"
	"voxelgraph/internal/debug"
	"voxelgraph/internal/graph/groupspace"
	"voxelgraph/internal/graph/vertexspace"
	"voxelgraph/internal/graph/voxel"
)

// Tracker bundles the unbounded vertex-space tracker (§4.5) and the
// bounded group-space tracker plus its rope graph (§4.7) around one
// shared voxel.Successor, plus the diagnostic sink both report
// through.
type Tracker struct {
	VertexSpace *vertexspace.VertexSpace[voxel.Vertex, voxel.Hash]
	GroupSpace  *groupspace.GroupSpace[voxel.Vertex, voxel.Hash]

	sink *debug.Sink
}

// New builds a Tracker from cfg, assigning successor.Debugger to the
// constructed sink (or leaving it nil if cfg.Debug.Enabled is false)
// and threading cfg.GroupLimit/cfg.VertexLimit into the two spaces'
// construction options.
func New(cfg config.Tracker, successor *voxel.Successor) (*Tracker, error) {
	if successor == nil {
		return nil, fmt.Errorf("tracker: successor must not be nil")
	}

	var sink *debug.Sink
	if cfg.Debug.Enabled {
		if cfg.Debug.Dir == "" {
			return nil, fmt.Errorf("tracker: debug.dir must be set when debug.enabled is true")
		}
		prefix := cfg.Debug.Prefix
		if prefix == "" {
			prefix = "voxelgraph"
		}
		sink = debug.NewSink(debug.NewTraceWriter(cfg.Debug.Dir, prefix))
		successor.Debugger = sink.Debug
	}

	var vertexLimit *int
	if cfg.VertexLimit > 0 {
		limit := cfg.VertexLimit
		vertexLimit = &limit
	}

	vs := vertexspace.New[voxel.Vertex, voxel.Hash](
		successor.Of,
		vertexspace.Callbacks[voxel.Vertex, voxel.Hash]{
			Enter:    sinkEnter(sink),
			Exit:     sinkExit(sink),
			Warning:  sinkWarning(sink),
			Debugger: sinkDebugger(sink),
		},
		vertexspace.Options{VertexLimit: vertexLimit},
	)

	gs := groupspace.New[voxel.Vertex, voxel.Hash](groupspace.Config[voxel.Vertex, voxel.Hash]{
		GroupLimit: cfg.GroupLimit,
		Successor:  successor.Of,
		Callbacks: groupspace.Callbacks[voxel.Vertex, voxel.Hash]{
			Enter:    sinkEnter(sink),
			Exit:     sinkExit(sink),
			Warning:  sinkWarning(sink),
			Debugger: sinkDebugger(sink),
		},
	})

	return &Tracker{VertexSpace: vs, GroupSpace: gs, sink: sink}, nil
}

// Close flushes and closes the underlying trace file, if debugging was
// enabled. Safe to call on a Tracker built with debug disabled.
func (t *Tracker) Close() error {
	if t.sink == nil {
		return nil
	}
	return t.sink.Close()
}

func sinkEnter(s *debug.Sink) func(string) {
	if s == nil {
		return nil
	}
	return s.Enter
}

func sinkExit(s *debug.Sink) func(string) {
	if s == nil {
		return nil
	}
	return s.Exit
}

func sinkWarning(s *debug.Sink) func(string) {
	if s == nil {
		return nil
	}
	return s.Warning
}

func sinkDebugger(s *debug.Sink) func(string) {
	if s == nil {
		return nil
	}
	return s.Debug
}
