package hwcompose

import "errors"

// InvalidFD is the sentinel descriptor carried by a fence that no longer
// (or never did) reference a kernel sync object.
const InvalidFD = -1

// ErrFenceInvalid is returned when an operation needs a live fence but
// the handle has already been closed or transferred.
var ErrFenceInvalid = errors.New("hwcompose: fence handle is invalid")

// Fence is an owning handle to a kernel sync fence descriptor.
//
// Descriptors follow POSIX file-descriptor semantics: small non-negative
// integers that must be closed exactly once. Fence makes the
// close-exactly-once discipline structural: ownership moves with the
// handle, Take transfers the descriptor out and invalidates the handle,
// and Close is a no-op on an already-invalid handle. A nil or invalid
// Fence means "no fence / already signaled" and must never block a
// waiter.
type Fence struct {
	fd     int
	closer func(int) error
}

// NewFence wraps a raw sync descriptor in an owning handle. closer is
// invoked exactly once to release the descriptor; sync device
// implementations bind it to their own close routine. A negative fd
// yields an invalid handle.
func NewFence(fd int, closer func(int) error) *Fence {
	if fd < 0 {
		return nil
	}
	return &Fence{fd: fd, closer: closer}
}

// Valid reports whether f currently owns a live descriptor. Valid is
// nil-safe; a nil fence is invalid.
func (f *Fence) Valid() bool {
	return f != nil && f.fd >= 0
}

// FD returns the underlying descriptor without transferring ownership.
// Use only for status queries; the caller must not close the result.
// Returns InvalidFD for an invalid handle.
func (f *Fence) FD() int {
	if !f.Valid() {
		return InvalidFD
	}
	return f.fd
}

// Take transfers the descriptor out of f, invalidating the handle. The
// caller assumes responsibility for closing the returned descriptor.
// Returns InvalidFD if the handle is already invalid.
func (f *Fence) Take() int {
	if !f.Valid() {
		return InvalidFD
	}
	fd := f.fd
	f.fd = InvalidFD
	f.closer = nil
	return fd
}

// Close releases the descriptor. Closing a nil, invalid, or already
// closed fence is a no-op, so double close cannot occur.
func (f *Fence) Close() error {
	if !f.Valid() {
		return nil
	}
	fd := f.fd
	closer := f.closer
	f.fd = InvalidFD
	f.closer = nil
	if closer == nil {
		return nil
	}
	return closer(fd)
}
