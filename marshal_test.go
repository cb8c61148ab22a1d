package webrtc

import (
	"errors"
	"testing"
	"unsafe"
)

func TestCStringRoundTrip(t *testing.T) {
	tests := []string{
		"",
		"stun:example.com",
		"credential with spaces",
		"unicode: héllo wörld",
	}
	for _, input := range tests {
		buf, err := cString(input)
		if err != nil {
			t.Fatalf("cString(%q): %v", input, err)
		}
		if len(buf) != len(input)+1 {
			t.Fatalf("cString(%q): got %d bytes, want %d", input, len(buf), len(input)+1)
		}
		if buf[len(buf)-1] != 0 {
			t.Fatalf("cString(%q): missing NUL terminator", input)
		}
		if got := goStringFromPtr(uintptr(unsafe.Pointer(&buf[0]))); got != input {
			t.Fatalf("round trip: got %q, want %q", got, input)
		}
	}
}

func TestCStringEmbeddedNUL(t *testing.T) {
	for _, input := range []string{"\x00", "stun:\x00example.com", "trailing\x00"} {
		if _, err := cString(input); !errors.Is(err, ErrInvalidText) {
			t.Fatalf("cString(%q): got %v, want ErrInvalidText", input, err)
		}
	}
}

func TestCStringsFailsOnAnyBadElement(t *testing.T) {
	_, err := cStrings([]string{"ok", "bad\x00", "also ok"})
	if !errors.Is(err, ErrInvalidText) {
		t.Fatalf("got %v, want ErrInvalidText", err)
	}
}

func TestCStringArray(t *testing.T) {
	inputs := []string{"stun:a.example.com", "turn:b.example.com", ""}
	bufs, err := cStrings(inputs)
	if err != nil {
		t.Fatal(err)
	}
	ptrs := cStringArray(bufs)
	if len(ptrs) != len(inputs) {
		t.Fatalf("got %d pointers, want %d", len(ptrs), len(inputs))
	}
	for i, ptr := range ptrs {
		if ptr == 0 {
			t.Fatalf("pointer %d is null", i)
		}
		if got := goStringFromPtr(ptr); got != inputs[i] {
			t.Fatalf("pointer %d: got %q, want %q", i, got, inputs[i])
		}
	}
}

func TestCStringPtrNilBuffer(t *testing.T) {
	if got := cStringPtr(nil); got != 0 {
		t.Fatalf("cStringPtr(nil) = %#x, want 0", got)
	}
}

func TestGoStringFromNullPtr(t *testing.T) {
	if got := goStringFromPtr(0); got != "" {
		t.Fatalf("goStringFromPtr(0) = %q, want empty", got)
	}
}
