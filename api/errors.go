// File: api/errors.go
// Package api defines the shared error taxonomy, contracts, and value
// types used across xskframe's datapath packages (umem, xsk, worker,
// datapath, kernel). Adapted from the teacher's api/errors.go
// (github.com/momentics/hioload-ws): same structured-error shape,
// generalized to the configuration/resource/ring-invariant error
// classes named in the specification's error taxonomy.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import "fmt"

// Sentinel configuration errors. Raised during Init; the caller should
// print a diagnostic and exit non-zero.
var (
	ErrUnknownInterface = fmt.Errorf("unknown interface")
	ErrBadFrameSize     = fmt.Errorf("frame size must be a power of two unless unaligned chunks are enabled")
	ErrBadWorkerCount   = fmt.Errorf("worker count must be >= 1")
	ErrBadCopyMode      = fmt.Errorf("unknown interface bind mode")
	ErrBadBatchSize     = fmt.Errorf("batch size must be in [1,255]")
)

// Sentinel resource-allocation errors. Fatal: the caller must invoke
// Cleanup and exit.
var (
	ErrFailedAlloc  = fmt.Errorf("failed to allocate UMEM pool")
	ErrFailedMap    = fmt.Errorf("failed to mmap ring memory")
	ErrSocketCreate = fmt.Errorf("failed to create packet socket")
	ErrUmemCreate   = fmt.Errorf("failed to register UMEM with kernel")
)

// Sentinel ring-invariant violations. These indicate pool accounting
// has diverged from reality; the implementation aborts rather than
// attempts recovery.
var (
	ErrShortReserveOnFreshRing = fmt.Errorf("short reserve on freshly created ring")
	ErrNegativeReserve         = fmt.Errorf("negative ring reserve")
)

// ErrInsufficientCPUs is returned by StartWorkers when the calling
// thread's CPU affinity mask has fewer eligible CPUs than configured
// workers.
var ErrInsufficientCPUs = fmt.Errorf("insufficient CPUs to pin all workers")

// ErrAlreadyRunning / ErrNotRunning guard the orchestrator lifecycle.
var (
	ErrAlreadyRunning = fmt.Errorf("datapath already running")
	ErrNotRunning     = fmt.Errorf("datapath not running")
)

// ErrNotSupported is returned by an external collaborator
// (FilterLoader implementations) for an operation that has no
// implementation on the current platform or build.
var ErrNotSupported = fmt.Errorf("operation not supported")

// ErrorCode classifies a DatapathError for programmatic handling.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeConfiguration
	ErrCodeResourceAllocation
	ErrCodeRingInvariant
	ErrCodeInternal
)

// DatapathError is a structured error carrying a code, a human
// message, and free-form context (e.g. worker/interface indices) for
// logging. It wraps an underlying sentinel error so callers can still
// use errors.Is against the package-level sentinels above.
type DatapathError struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Err     error
}

func (e *DatapathError) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// Unwrap exposes the wrapped sentinel for errors.Is/errors.As.
func (e *DatapathError) Unwrap() error { return e.Err }

// NewError builds a DatapathError wrapping a sentinel.
func NewError(code ErrorCode, err error) *DatapathError {
	return &DatapathError{Code: code, Message: err.Error(), Err: err, Context: make(map[string]any)}
}

// WithContext attaches a key/value pair for diagnostics and returns
// the same error for chaining.
func (e *DatapathError) WithContext(key string, value any) *DatapathError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// FatalError carries the source location of a fatal abort, mirroring
// the original xsknf.c's __exit_with_error(error, file, func, line)
// so the CLI can print the same "file:func:line errno/\"message\""
// diagnostic line the specification requires on stderr before exit.
type FatalError struct {
	File  string
	Func  string
	Line  int
	Errno error
	Inner error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s:%s:%d: %v", e.File, e.Func, e.Line, e.Errno)
}

func (e *FatalError) Unwrap() error { return e.Inner }
