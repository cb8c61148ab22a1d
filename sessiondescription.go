package webrtc

import (
	"fmt"
	"runtime"
	"unicode/utf8"
	"unsafe"

	"github.com/pion/sdp/v3"
	pionwebrtc "github.com/pion/webrtc/v4"
)

// SDPType is the session description's role in the offer/answer
// exchange. Discriminants match the native header.
type SDPType int32

const (
	// SDPTypeOffer is the initial proposal in an offer/answer exchange.
	SDPTypeOffer SDPType = 1
	// SDPTypePrAnswer is a provisional, non-final answer.
	SDPTypePrAnswer SDPType = 2
	// SDPTypeAnswer is the definitive choice in the exchange.
	SDPTypeAnswer SDPType = 3
	// SDPTypeRollback rolls back to the previous stable state.
	SDPTypeRollback SDPType = 4
)

func (t SDPType) String() string {
	switch t {
	case SDPTypeOffer:
		return "offer"
	case SDPTypePrAnswer:
		return "pranswer"
	case SDPTypeAnswer:
		return "answer"
	case SDPTypeRollback:
		return "rollback"
	default:
		return "unknown"
	}
}

// Pion maps the type onto pion's SDPType.
func (t SDPType) Pion() pionwebrtc.SDPType {
	switch t {
	case SDPTypeOffer:
		return pionwebrtc.SDPTypeOffer
	case SDPTypePrAnswer:
		return pionwebrtc.SDPTypePranswer
	case SDPTypeAnswer:
		return pionwebrtc.SDPTypeAnswer
	case SDPTypeRollback:
		return pionwebrtc.SDPTypeRollback
	default:
		return pionwebrtc.SDPType(0)
	}
}

// SessionDescription describes one end of the connection: a type
// discriminant plus the SDP text. Values are immutable once constructed.
//
// Two provenances exist: caller-authored descriptions built with
// NewSessionDescription own their text outright; native-returned
// descriptions are copied out of the engine's allocation, which is
// released through rtc_free exactly once before the value is returned.
type SessionDescription struct {
	kind SDPType
	sdp  string
}

// NewSessionDescription builds a caller-authored description. The text
// is validated for the C boundary up front; an embedded NUL byte fails
// with ErrInvalidText.
func NewSessionDescription(kind SDPType, sdpText string) (*SessionDescription, error) {
	if _, err := cString(sdpText); err != nil {
		return nil, err
	}
	return &SessionDescription{kind: kind, sdp: sdpText}, nil
}

// newSessionDescriptionFromNative takes ownership of a native-allocated
// RTCSessionDescription, copies it out, and releases the native
// allocation through rtc_free. Callers must pass each native pointer at
// most once.
func newSessionDescriptionFromNative(ptr uintptr) (*SessionDescription, error) {
	raw := (*rawSessionDescription)(unsafe.Pointer(ptr))
	kind := SDPType(raw.kind)
	sdpText := goStringFromPtr(raw.sdp)
	rtcFree(ptr)

	if !utf8.ValidString(sdpText) {
		return nil, fmt.Errorf("%w: session description", ErrInvalidUTF8)
	}
	return &SessionDescription{kind: kind, sdp: sdpText}, nil
}

// Type returns the description's role in the exchange.
func (d *SessionDescription) Type() SDPType {
	return d.kind
}

// SDP returns the session description text.
func (d *SessionDescription) SDP() string {
	return d.sdp
}

// ParseSDP parses the description text, primarily for validation and
// inspection of the negotiated session.
func (d *SessionDescription) ParseSDP() (*sdp.SessionDescription, error) {
	parsed := &sdp.SessionDescription{}
	if err := parsed.Unmarshal([]byte(d.sdp)); err != nil {
		return nil, fmt.Errorf("parse sdp: %w", err)
	}
	return parsed, nil
}

// Pion converts the description to pion's representation, for use with
// pion-based signaling tooling.
func (d *SessionDescription) Pion() pionwebrtc.SessionDescription {
	return pionwebrtc.SessionDescription{
		Type: d.kind.Pion(),
		SDP:  d.sdp,
	}
}

// FromPion converts a pion session description.
func FromPion(desc pionwebrtc.SessionDescription) (*SessionDescription, error) {
	var kind SDPType
	switch desc.Type {
	case pionwebrtc.SDPTypeOffer:
		kind = SDPTypeOffer
	case pionwebrtc.SDPTypePranswer:
		kind = SDPTypePrAnswer
	case pionwebrtc.SDPTypeAnswer:
		kind = SDPTypeAnswer
	case pionwebrtc.SDPTypeRollback:
		kind = SDPTypeRollback
	default:
		return nil, fmt.Errorf("unsupported sdp type %q", desc.Type)
	}
	return NewSessionDescription(kind, desc.SDP)
}

// descSnapshot is the transient ABI view of a SessionDescription for
// set-description calls. The engine may read the description after the
// entry point returns, so the snapshot stays pinned until the completion
// callback fires.
type descSnapshot struct {
	raw    *rawSessionDescription
	sdpBuf []byte
	pin    runtime.Pinner
}

func (d *SessionDescription) snapshot() (*descSnapshot, error) {
	buf, err := cString(d.sdp)
	if err != nil {
		return nil, err
	}
	snap := &descSnapshot{
		raw:    &rawSessionDescription{kind: int32(d.kind)},
		sdpBuf: buf,
	}
	snap.pin.Pin(snap.raw)
	snap.pin.Pin(&buf[0])
	snap.raw.sdp = uintptr(unsafe.Pointer(&buf[0]))
	return snap, nil
}

func (s *descSnapshot) ptr() uintptr {
	return uintptr(unsafe.Pointer(s.raw))
}

func (s *descSnapshot) release() {
	s.pin.Unpin()
}
