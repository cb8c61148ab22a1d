package webrtc

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/pion/rtp"
	pionwebrtc "github.com/pion/webrtc/v4"
)

// Re-export pion's RTPCodecType for track kinds.
type RTPCodecType = pionwebrtc.RTPCodecType

const (
	RTPCodecTypeAudio = pionwebrtc.RTPCodecTypeAudio
	RTPCodecTypeVideo = pionwebrtc.RTPCodecTypeVideo
)

// FrameCallback receives a copy of each raw frame delivered by the
// engine for a subscribed track.
type FrameCallback func(data []byte)

// MediaStreamTrack is a single audio or video track backed by the
// engine's raw buffer-passing contract. The track owns its native
// descriptor and the string buffers it points into; the descriptor is
// pinned for the track's lifetime because the engine retains the
// pointer once the track is added to a connection or subscribed for
// frames (the ABI has no track-destroy entry point).
type MediaStreamTrack struct {
	id    string
	label string
	kind  RTPCodecType

	idBuf    []byte
	kindBuf  []byte
	labelBuf []byte
	raw      *rawMediaStreamTrack
	pin      runtime.Pinner

	attached  atomic.Bool
	closed    atomic.Bool
	frameOnce sync.Once
	onFrame   atomic.Pointer[FrameCallback]
}

// NewVideoTrack creates a local video track with the given geometry.
func NewVideoTrack(id, label string, width, height uint32, frameRate int) (*MediaStreamTrack, error) {
	return newTrack(RTPCodecTypeVideo, id, label, width, height, frameRate)
}

// NewAudioTrack creates a local audio track.
func NewAudioTrack(id, label string) (*MediaStreamTrack, error) {
	return newTrack(RTPCodecTypeAudio, id, label, 0, 0, 0)
}

func newTrack(kind RTPCodecType, id, label string, width, height uint32, frameRate int) (*MediaStreamTrack, error) {
	if err := loadRTCWrapper(); err != nil {
		return nil, err
	}

	idBuf, err := cString(id)
	if err != nil {
		return nil, err
	}
	labelBuf, err := cString(label)
	if err != nil {
		return nil, err
	}
	kindBuf, err := cString(kind.String())
	if err != nil {
		return nil, err
	}

	track := &MediaStreamTrack{
		id:       id,
		label:    label,
		kind:     kind,
		idBuf:    idBuf,
		kindBuf:  kindBuf,
		labelBuf: labelBuf,
		raw: &rawMediaStreamTrack{
			enabled:    true,
			readyState: true,
			width:      width,
			height:     height,
			frameRate:  int32(frameRate),
		},
	}
	track.pin.Pin(track.raw)
	track.pin.Pin(&idBuf[0])
	track.pin.Pin(&kindBuf[0])
	track.pin.Pin(&labelBuf[0])
	track.raw.id = uintptr(unsafe.Pointer(&idBuf[0]))
	track.raw.kind = uintptr(unsafe.Pointer(&kindBuf[0]))
	track.raw.label = uintptr(unsafe.Pointer(&labelBuf[0]))
	return track, nil
}

func (t *MediaStreamTrack) ID() string    { return t.id }
func (t *MediaStreamTrack) Label() string { return t.label }

// Kind returns the track kind (audio or video) - compatible with pion.
func (t *MediaStreamTrack) Kind() RTPCodecType { return t.kind }

// Enabled reports whether the track renders its source stream.
func (t *MediaStreamTrack) Enabled() bool { return t.raw.enabled }

// SetEnabled toggles rendering of the source stream. The engine reads
// the flag from the shared descriptor.
func (t *MediaStreamTrack) SetEnabled(enabled bool) { t.raw.enabled = enabled }

// Muted reports whether the track is unable to provide media data.
func (t *MediaStreamTrack) Muted() bool { return t.raw.muted }

// Remote reports whether the track is sourced by the remote peer.
func (t *MediaStreamTrack) Remote() bool { return t.raw.remote }

func (t *MediaStreamTrack) ptr() uintptr {
	return uintptr(unsafe.Pointer(t.raw))
}

// attach marks the track as referenced by a connection.
func (t *MediaStreamTrack) attach() error {
	if t.closed.Load() {
		return errors.New("track is closed")
	}
	t.attached.Store(true)
	return nil
}

// WriteFrame hands a raw media frame to the engine. The buffer only has
// to survive the call; the engine copies it.
func (t *MediaStreamTrack) WriteFrame(data []byte) error {
	if t.closed.Load() {
		return errors.New("track is closed")
	}
	if len(data) == 0 {
		return errors.New("empty frame")
	}

	frame := &rawFrame{
		buf:    uintptr(unsafe.Pointer(&data[0])),
		length: uint64(len(data)),
	}
	mediaStreamTrackWriteFrame(t.ptr(), uintptr(unsafe.Pointer(frame)))
	runtime.KeepAlive(frame)
	runtime.KeepAlive(data)
	return nil
}

// WriteRTP writes an RTP packet's payload through the raw frame
// contract, for feeding a track from pion-based RTP plumbing.
func (t *MediaStreamTrack) WriteRTP(packet *rtp.Packet) error {
	return t.WriteFrame(packet.Payload)
}

// OnFrame subscribes f to frames produced by the engine for this track.
// The native subscription is installed once per track and permanently
// consumes a callback slot; subsequent calls swap the handler.
func (t *MediaStreamTrack) OnFrame(f FrameCallback) error {
	if t.closed.Load() {
		return errors.New("track is closed")
	}
	t.onFrame.Store(&f)
	t.frameOnce.Do(func() {
		t.attached.Store(true)
		// MediaStreamTrackFrame arrives by value: two register-sized
		// words (buf, len) at the C calling convention.
		cb := purego.NewCallback(func(buf, length uintptr) {
			t.handleFrame(buf, length)
		})
		mediaStreamTrackOnFrame(t.ptr(), cb)
	})
	return nil
}

// handleFrame runs on an engine thread. The frame buffer is only valid
// for the duration of the callback, so it is copied out before
// dispatch.
func (t *MediaStreamTrack) handleFrame(buf, length uintptr) {
	defer func() {
		if r := recover(); r != nil {
			log().Errorf("frame handler panic: %v", r)
		}
	}()

	if buf == 0 || length == 0 || t.raw.muted || !t.raw.enabled {
		return
	}
	data := make([]byte, length)
	copy(data, unsafe.Slice((*byte)(unsafe.Pointer(buf)), length))

	if f := t.onFrame.Load(); f != nil {
		(*f)(data)
	}
}

// Close ends the track. A track still referenced by the engine (added
// to a connection or subscribed for frames) keeps its descriptor pinned;
// the ABI provides no way to revoke it.
func (t *MediaStreamTrack) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	t.raw.readyState = false
	if !t.attached.Load() {
		t.pin.Unpin()
	}
	return nil
}
