// C string marshaling. Every buffer produced here is owned by the safe
// layer; the invariant is that a buffer outlives any raw pointer derived
// from it, including pointer arrays over a set of buffers.

package webrtc

import (
	"fmt"
	"strings"
	"unsafe"
)

// cString converts s into an owned NUL-terminated buffer. An embedded
// NUL byte cannot be represented at the C boundary and fails with
// ErrInvalidText before any native call is made.
func cString(s string) ([]byte, error) {
	if strings.IndexByte(s, 0) >= 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidText, s)
	}
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	return buf, nil
}

// cStrings converts each input into an owned NUL-terminated buffer.
func cStrings(ss []string) ([][]byte, error) {
	bufs := make([][]byte, len(ss))
	for i, s := range ss {
		buf, err := cString(s)
		if err != nil {
			return nil, err
		}
		bufs[i] = buf
	}
	return bufs, nil
}

// cStringPtr returns the raw pointer for an owned buffer, or 0 for an
// unset (nil) buffer.
func cStringPtr(buf []byte) uintptr {
	if len(buf) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&buf[0]))
}

// cStringArray derives a pointer array over a set of owned buffers. The
// array must be re-derived whenever the backing buffers may have been
// replaced; callers never cache it across mutation.
func cStringArray(bufs [][]byte) []uintptr {
	ptrs := make([]uintptr, len(bufs))
	for i, buf := range bufs {
		ptrs[i] = cStringPtr(buf)
	}
	return ptrs
}

// goStringFromPtr copies a NUL-terminated C string into a Go string.
// The native side retains ownership of the pointed-to memory.
func goStringFromPtr(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	p := unsafe.Pointer(ptr)
	var length int
	for *(*byte)(unsafe.Pointer(uintptr(p) + uintptr(length))) != 0 {
		length++
	}
	if length == 0 {
		return ""
	}
	return string(unsafe.Slice((*byte)(p), length))
}
