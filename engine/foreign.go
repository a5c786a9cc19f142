package engine

import "unsafe"

// noCopy makes go vet's copylocks check flag copies of the embedding struct.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// ForeignString is a NUL-terminated buffer allocated by the engine.
// It must be released through the engine's allocator, which Release does.
// Always handle it by pointer; the buffer has exactly one owner.
type ForeignString struct {
	_     noCopy
	ptr   unsafe.Pointer
	owner *Engine
	n     int
}

func newForeignString(ptr unsafe.Pointer, owner *Engine) *ForeignString {
	fs := &ForeignString{
		ptr:   ptr,
		owner: owner,
		n:     cStringLen(ptr),
	}
	owner.track(fs)
	return fs
}

// Bytes returns a read-only view of the buffer without the terminating NUL.
// The view aliases engine memory and is valid only until Release.
// It returns nil after Release.
func (s *ForeignString) Bytes() []byte {
	if s.ptr == nil {
		return nil
	}
	return unsafe.Slice((*byte)(s.ptr), s.n)
}

// Len returns the buffer length without the terminating NUL.
func (s *ForeignString) Len() int {
	if s.ptr == nil {
		return 0
	}
	return s.n
}

// Released reports whether the buffer has been freed.
func (s *ForeignString) Released() bool {
	return s.ptr == nil
}

// Release frees the buffer through the engine's allocator.
// Only the first call frees; later calls are no-ops.
func (s *ForeignString) Release() {
	if s.ptr == nil {
		return
	}

	ptr := s.ptr
	s.ptr = nil
	s.n = 0

	owner := s.owner
	s.owner = nil
	owner.untrack(s)
	owner.free(ptr)
}

// cStringLen returns the length of the NUL-terminated string at p.
func cStringLen(p unsafe.Pointer) int {
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	return n
}

// CStringView returns the NUL-terminated string at p as a byte view without
// the terminator. It does not copy; the view is valid while p's memory is.
// A nil p yields nil.
func CStringView(p unsafe.Pointer) []byte {
	if p == nil {
		return nil
	}
	return unsafe.Slice((*byte)(p), cStringLen(p))
}
