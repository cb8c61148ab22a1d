package webrtc

import (
	"testing"
	"unsafe"
)

// stubNativeLibrary installs a fake native layer so tests can exercise
// the binding without librtc_wrapper, and restores the previous state
// when the test ends. Individual tests override entry points as needed.
func stubNativeLibrary(t *testing.T) {
	t.Helper()

	prevLoaded := rtcWrapperLoaded
	prevCreate := rtcCreatePeerConnection
	prevAddCandidate := rtcAddICECandidate
	prevWriteFrame := mediaStreamTrackWriteFrame
	prevOnFrame := mediaStreamTrackOnFrame
	prevAddTrack := rtcAddTrack
	prevClose := rtcClose
	prevCreateOffer := rtcCreateOffer
	prevCreateAnswer := rtcCreateAnswer
	prevSetLocal := rtcSetLocalDescription
	prevSetRemote := rtcSetRemoteDescription
	prevOnState := rtcOnConnectionStateChange
	prevOnDataChannel := rtcOnDataChannel
	prevFree := rtcFree

	rtcWrapperLoaded = true
	rtcCreatePeerConnection = func(uintptr) uintptr { return 1 }
	rtcAddICECandidate = func(uintptr, uintptr) {}
	mediaStreamTrackWriteFrame = func(uintptr, uintptr) {}
	mediaStreamTrackOnFrame = func(uintptr, uintptr) {}
	rtcAddTrack = func(uintptr, uintptr) {}
	rtcClose = func(uintptr) {}
	rtcCreateOffer = func(uintptr, uintptr, uintptr) {}
	rtcCreateAnswer = func(uintptr, uintptr, uintptr) {}
	rtcSetLocalDescription = func(uintptr, uintptr, uintptr) {}
	rtcSetRemoteDescription = func(uintptr, uintptr, uintptr) {}
	rtcOnConnectionStateChange = func(uintptr, uintptr) {}
	rtcOnDataChannel = func(uintptr, uintptr) {}
	rtcFree = func(uintptr) {}

	t.Cleanup(func() {
		rtcWrapperLoaded = prevLoaded
		rtcCreatePeerConnection = prevCreate
		rtcAddICECandidate = prevAddCandidate
		mediaStreamTrackWriteFrame = prevWriteFrame
		mediaStreamTrackOnFrame = prevOnFrame
		rtcAddTrack = prevAddTrack
		rtcClose = prevClose
		rtcCreateOffer = prevCreateOffer
		rtcCreateAnswer = prevCreateAnswer
		rtcSetLocalDescription = prevSetLocal
		rtcSetRemoteDescription = prevSetRemote
		rtcOnConnectionStateChange = prevOnState
		rtcOnDataChannel = prevOnDataChannel
		rtcFree = prevFree
	})
}

// fakeNativeDescription builds an RTCSessionDescription in Go memory,
// standing in for a native-allocated result. The test must keep the
// value alive until the binding has copied it out.
type fakeNativeDescription struct {
	raw    *rawSessionDescription
	sdpBuf []byte
}

func newFakeNativeDescription(kind SDPType, sdpText string) *fakeNativeDescription {
	buf := append([]byte(sdpText), 0)
	fake := &fakeNativeDescription{
		raw:    &rawSessionDescription{kind: int32(kind)},
		sdpBuf: buf,
	}
	fake.raw.sdp = uintptr(unsafe.Pointer(&buf[0]))
	return fake
}

func (d *fakeNativeDescription) ptr() uintptr {
	return uintptr(unsafe.Pointer(d.raw))
}
