package webrtc

import (
	"errors"
	"sync/atomic"
	"testing"
	"unsafe"

	"github.com/pion/rtp"
)

func TestNewVideoTrackDescriptor(t *testing.T) {
	stubNativeLibrary(t)

	track, err := NewVideoTrack("cam-1", "front camera", 1280, 720, 30)
	if err != nil {
		t.Fatal(err)
	}
	defer track.Close()

	raw := (*rawMediaStreamTrack)(unsafe.Pointer(track.ptr()))
	if got := goStringFromPtr(raw.id); got != "cam-1" {
		t.Fatalf("id = %q", got)
	}
	if got := goStringFromPtr(raw.kind); got != "video" {
		t.Fatalf("kind = %q", got)
	}
	if got := goStringFromPtr(raw.label); got != "front camera" {
		t.Fatalf("label = %q", got)
	}
	if raw.width != 1280 || raw.height != 720 || raw.frameRate != 30 {
		t.Fatalf("geometry = %dx%d@%d", raw.width, raw.height, raw.frameRate)
	}
	if !raw.enabled || !raw.readyState || raw.muted || raw.remote {
		t.Fatalf("flags = %+v", raw)
	}
}

func TestNewAudioTrackKind(t *testing.T) {
	stubNativeLibrary(t)

	track, err := NewAudioTrack("mic-1", "microphone")
	if err != nil {
		t.Fatal(err)
	}
	defer track.Close()

	if track.Kind() != RTPCodecTypeAudio {
		t.Fatalf("kind = %s", track.Kind())
	}
	raw := (*rawMediaStreamTrack)(unsafe.Pointer(track.ptr()))
	if got := goStringFromPtr(raw.kind); got != "audio" {
		t.Fatalf("raw kind = %q", got)
	}
}

func TestTrackRejectsEmbeddedNUL(t *testing.T) {
	stubNativeLibrary(t)

	if _, err := NewVideoTrack("id\x00", "label", 0, 0, 0); !errors.Is(err, ErrInvalidText) {
		t.Fatalf("got %v, want ErrInvalidText", err)
	}
}

func TestWriteFrame(t *testing.T) {
	stubNativeLibrary(t)

	var gotTrack uintptr
	var gotData []byte
	mediaStreamTrackWriteFrame = func(trackPtr, framePtr uintptr) {
		gotTrack = trackPtr
		frame := (*rawFrame)(unsafe.Pointer(framePtr))
		gotData = make([]byte, frame.length)
		copy(gotData, unsafe.Slice((*byte)(unsafe.Pointer(frame.buf)), frame.length))
	}

	track, err := NewVideoTrack("cam-1", "camera", 640, 480, 30)
	if err != nil {
		t.Fatal(err)
	}
	defer track.Close()

	payload := []byte{0x01, 0x02, 0x03, 0x04}
	if err := track.WriteFrame(payload); err != nil {
		t.Fatal(err)
	}
	if gotTrack != track.ptr() {
		t.Fatal("frame written against the wrong track")
	}
	if string(gotData) != string(payload) {
		t.Fatalf("data = %v, want %v", gotData, payload)
	}

	if err := track.WriteFrame(nil); err == nil {
		t.Fatal("empty frame must be rejected")
	}
}

func TestWriteRTP(t *testing.T) {
	stubNativeLibrary(t)

	var gotData []byte
	mediaStreamTrackWriteFrame = func(_, framePtr uintptr) {
		frame := (*rawFrame)(unsafe.Pointer(framePtr))
		gotData = make([]byte, frame.length)
		copy(gotData, unsafe.Slice((*byte)(unsafe.Pointer(frame.buf)), frame.length))
	}

	track, err := NewAudioTrack("mic-1", "microphone")
	if err != nil {
		t.Fatal(err)
	}
	defer track.Close()

	packet := &rtp.Packet{Payload: []byte{0xaa, 0xbb}}
	if err := track.WriteRTP(packet); err != nil {
		t.Fatal(err)
	}
	if len(gotData) != 2 || gotData[0] != 0xaa {
		t.Fatalf("data = %v", gotData)
	}
}

func TestOnFrameDispatch(t *testing.T) {
	stubNativeLibrary(t)

	var subscribed atomic.Int32
	mediaStreamTrackOnFrame = func(trackPtr, cb uintptr) { subscribed.Add(1) }

	track, err := NewVideoTrack("cam-1", "camera", 640, 480, 30)
	if err != nil {
		t.Fatal(err)
	}
	defer track.Close()

	frames := make(chan []byte, 1)
	if err := track.OnFrame(func(data []byte) { frames <- data }); err != nil {
		t.Fatal(err)
	}
	// Swapping the handler must not resubscribe natively.
	if err := track.OnFrame(func(data []byte) { frames <- data }); err != nil {
		t.Fatal(err)
	}
	if got := subscribed.Load(); got != 1 {
		t.Fatalf("native subscription installed %d times, want 1", got)
	}

	buf := []byte{0x10, 0x20, 0x30}
	track.handleFrame(uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	got := <-frames
	if string(got) != string(buf) {
		t.Fatalf("frame = %v, want %v", got, buf)
	}
	// The dispatched frame is a copy, not a view of native memory.
	buf[0] = 0xff
	if got[0] != 0x10 {
		t.Fatal("frame must be copied out of the callback buffer")
	}
}

func TestOnFrameRespectsEnabled(t *testing.T) {
	stubNativeLibrary(t)

	track, err := NewVideoTrack("cam-1", "camera", 640, 480, 30)
	if err != nil {
		t.Fatal(err)
	}
	defer track.Close()

	frames := make(chan []byte, 1)
	if err := track.OnFrame(func(data []byte) { frames <- data }); err != nil {
		t.Fatal(err)
	}

	track.SetEnabled(false)
	buf := []byte{0x01}
	track.handleFrame(uintptr(unsafe.Pointer(&buf[0])), 1)
	select {
	case <-frames:
		t.Fatal("disabled track must drop frames")
	default:
	}
}

func TestAddTrack(t *testing.T) {
	stubNativeLibrary(t)

	var gotPeer, gotTrack uintptr
	rtcAddTrack = func(peer, track uintptr) {
		gotPeer = peer
		gotTrack = track
	}

	pc, err := NewPeerConnection(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer pc.Close()

	track, err := NewVideoTrack("cam-1", "camera", 640, 480, 30)
	if err != nil {
		t.Fatal(err)
	}
	if err := pc.AddTrack(track); err != nil {
		t.Fatal(err)
	}
	if gotPeer != 1 || gotTrack != track.ptr() {
		t.Fatalf("rtc_add_track(%#x, %#x)", gotPeer, gotTrack)
	}

	// A closed track cannot be attached.
	ended, err := NewAudioTrack("mic-1", "microphone")
	if err != nil {
		t.Fatal(err)
	}
	if err := ended.Close(); err != nil {
		t.Fatal(err)
	}
	if err := pc.AddTrack(ended); err == nil {
		t.Fatal("adding a closed track must fail")
	}
}

func TestTrackCloseIdempotent(t *testing.T) {
	stubNativeLibrary(t)

	track, err := NewAudioTrack("mic-1", "microphone")
	if err != nil {
		t.Fatal(err)
	}
	if err := track.Close(); err != nil {
		t.Fatal(err)
	}
	if err := track.Close(); err != nil {
		t.Fatal(err)
	}
	if err := track.WriteFrame([]byte{1}); err == nil {
		t.Fatal("write after close must fail")
	}
}
