package voxel

import "errors"

// Wire-level error taxonomy (spec §6, §7). These are checked with
// errors.Is, not compared directly, so wrapping with %w anywhere in
// the chain still works.
var (
	// ErrNoData signals a composable absence: no handler registered
	// for a key, or a handler explicitly declining to produce data.
	// It flows through nested LUTs unchanged.
	ErrNoData = errors.New("voxel: ENODATA")
	// ErrHookFail signals handler misbehaviour: a registered handler
	// returned an error that wasn't itself ErrNoData.
	ErrHookFail = errors.New("voxel: EHOOKFAIL")
	// ErrDuplicate signals an attempted re-registration of a key
	// already bound in a handler LUT.
	ErrDuplicate = errors.New("voxel: ERR_DUPLICATE")
	// ErrArgsExpectedFunc signals a registration call made with a nil
	// handler.
	ErrArgsExpectedFunc = errors.New("voxel: ERR_ARGS_EXPECTED_T_FUNC")
)
