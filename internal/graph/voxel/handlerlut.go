package voxel

import (
	"errors"
	"fmt"
)

// Handler is a key's registered handler: it computes a result from
// the query data, or declines with ErrNoData, or fails with any
// other error (mapped to ErrHookFail by the LUT).
type Handler[D any, R any] func(data D) (R, error)

// HandlerLUT is a generic key -> handler table with uniqueness
// checks and the uniform error codes of §4.2. NeighbourSetLUT and
// FilterLUT are both thin instantiations of this type.
type HandlerLUT[D any, K comparable, R any] struct {
	getKey    func(D) K
	label     string
	subLabels []string
	handlers  map[K]Handler[D, R]
}

// NewHandlerLUT constructs a LUT. getkey extracts the lookup key from
// the query data; label (and optional subLabels) identify the table
// in error messages and debug traces.
func NewHandlerLUT[D any, K comparable, R any](getKey func(D) K, label string, subLabels ...string) *HandlerLUT[D, K, R] {
	if getKey == nil {
		panic("voxel: NewHandlerLUT requires a non-nil getkey")
	}
	return &HandlerLUT[D, K, R]{
		getKey:    getKey,
		label:     label,
		subLabels: subLabels,
		handlers:  map[K]Handler[D, R]{},
	}
}

// Register binds handler to key. It fails with ErrDuplicate if key is
// already bound, and with ErrArgsExpectedFunc if handler is nil.
func (l *HandlerLUT[D, K, R]) Register(key K, handler Handler[D, R]) error {
	if handler == nil {
		return fmt.Errorf("%s: %w", l.label, ErrArgsExpectedFunc)
	}
	if _, exists := l.handlers[key]; exists {
		return fmt.Errorf("%s: %w: %v", l.label, ErrDuplicate, key)
	}
	l.handlers[key] = handler
	return nil
}

// Query resolves data's key, looks up its handler, and runs it. A
// missing handler and a handler that declines with ErrNoData both
// surface as ErrNoData (the composability signal); any other handler
// error surfaces as ErrHookFail (the bug signal), with the handler's
// own error still wrapped alongside it. A handler that
// panics is not recovered here: the panic propagates to the caller
// of the enclosing public operation, as a precondition violation
// must.
func (l *HandlerLUT[D, K, R]) Query(data D) (R, error) {
	var zero R
	key := l.getKey(data)
	handler, ok := l.handlers[key]
	if !ok {
		return zero, fmt.Errorf("%s %v: %w", l.label, key, ErrNoData)
	}
	result, err := handler(data)
	if err == nil {
		return result, nil
	}
	if errors.Is(err, ErrNoData) {
		return zero, err
	}
	return zero, fmt.Errorf("%s %v: %w: %w", l.label, key, ErrHookFail, err)
}

// Keys reports the currently registered keys. Exposed for debug
// tooling only.
func (l *HandlerLUT[D, K, R]) Keys() []K {
	out := make([]K, 0, len(l.handlers))
	for k := range l.handlers {
		out = append(out, k)
	}
	return out
}
