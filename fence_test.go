package hwcompose

import (
	"errors"
	"testing"
)

// countingCloser records descriptor closes for leak/double-close checks.
type countingCloser struct {
	closed []int
	err    error
}

func (c *countingCloser) close(fd int) error {
	c.closed = append(c.closed, fd)
	return c.err
}

func TestFenceCloseExactlyOnce(t *testing.T) {
	cc := &countingCloser{}
	f := NewFence(7, cc.close)

	if !f.Valid() {
		t.Fatalf("Valid() = false for fresh fence")
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if f.Valid() {
		t.Errorf("Valid() = true after Close")
	}
	// Second close must be a no-op.
	if err := f.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
	if len(cc.closed) != 1 || cc.closed[0] != 7 {
		t.Errorf("closer calls = %v, want [7]", cc.closed)
	}
}

func TestFenceTakeTransfersOwnership(t *testing.T) {
	cc := &countingCloser{}
	f := NewFence(9, cc.close)

	if fd := f.Take(); fd != 9 {
		t.Fatalf("Take() = %d, want 9", fd)
	}
	if f.Valid() {
		t.Errorf("Valid() = true after Take")
	}
	if fd := f.Take(); fd != InvalidFD {
		t.Errorf("second Take() = %d, want InvalidFD", fd)
	}
	if err := f.Close(); err != nil {
		t.Errorf("Close after Take = %v", err)
	}
	if len(cc.closed) != 0 {
		t.Errorf("closer ran despite transfer: %v", cc.closed)
	}
}

func TestFenceNilSafety(t *testing.T) {
	var f *Fence
	if f.Valid() {
		t.Errorf("nil fence Valid() = true")
	}
	if f.FD() != InvalidFD {
		t.Errorf("nil fence FD() = %d", f.FD())
	}
	if f.Take() != InvalidFD {
		t.Errorf("nil fence Take() != InvalidFD")
	}
	if err := f.Close(); err != nil {
		t.Errorf("nil fence Close() = %v", err)
	}
}

func TestFenceNegativeFD(t *testing.T) {
	if f := NewFence(-1, nil); f != nil {
		t.Errorf("NewFence(-1) = %v, want nil", f)
	}
}

func TestFenceCloseError(t *testing.T) {
	want := errors.New("boom")
	f := NewFence(3, func(int) error { return want })
	if err := f.Close(); !errors.Is(err, want) {
		t.Errorf("Close() = %v, want %v", err, want)
	}
	// The handle is invalid regardless of the closer error.
	if f.Valid() {
		t.Errorf("Valid() = true after failed Close")
	}
}
