package pipelinepb

import "errors"

// Error kinds per the error-handling design: names are indicative, the
// sentinels are what callers actually match against with errors.Is.
var (
	// ErrNotFound: a referenced asset, version, template, type, or URI
	// handler does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict: duplicate explicit version_id at publish, a stale state
	// transition, or a bad asset_path_id foreign key at publish.
	ErrConflict = errors.New("conflict")
	// ErrCycle: names a dependency-graph cycle. No write path in this
	// module checks for cycles, so none returns it.
	ErrCycle = errors.New("dependency cycle")
	// ErrUriNotSupported: no resolver handler accepts a URI.
	ErrUriNotSupported = errors.New("uri not supported")
	// ErrDataNotYetAvailable: a field accessor was called before the
	// version's data reached AVAILABLE.
	ErrDataNotYetAvailable = errors.New("data not yet available")
	// ErrSchedulerUnavailable: the scheduler interface cannot reach its
	// backend.
	ErrSchedulerUnavailable = errors.New("scheduler unavailable")
)
