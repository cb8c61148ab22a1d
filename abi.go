// Raw ABI layer: struct layouts matching librtc_wrapper's C header
// bit-for-bit. Field order, widths and padding are part of the binary
// contract; nothing here performs ownership or validity checks, and
// nothing here is exported.
//
// Pointer slots are uintptr. A null optional is a genuine zero slot, not
// a sentinel object. Optional enum fields use 0 as "unset" (the header's
// discriminants start at 1); the candidate pool size uses a set/value
// pair instead. The per-field convention follows the header, it is not
// uniform.
//
// Enum discriminants are declared next to their exported types
// (BundlePolicy, ICETransportPolicy, RTCPMuxPolicy, SDPType,
// ConnectionState) and start at 1 as the header dictates.

package webrtc

// rawICEServer mirrors RTCIceServer.
type rawICEServer struct {
	credential uintptr // const char*, null when unset
	urls       uintptr // const char* const*, null when unset
	urlsLen    int32
	_          [4]byte
	username   uintptr // const char*, null when unset
}

// rawConfiguration mirrors RTCPeerConnectionConfigure.
type rawConfiguration struct {
	bundlePolicy       int32 // 0 = unset
	iceTransportPolicy int32 // 0 = unset
	peerIdentity       uintptr
	rtcpMuxPolicy      int32 // 0 = unset
	_                  [4]byte
	iceServers         uintptr // const RTCIceServer*, null when unset
	iceServersLen      int32
	poolSizeSet        int32 // poolSize is meaningful only when nonzero
	poolSize           int32
	_                  [4]byte
}

// rawICECandidate mirrors RTCIceCandidate.
type rawICECandidate struct {
	candidate     uintptr
	sdpMid        uintptr
	sdpMLineIndex int32
	_             [4]byte
}

// rawMediaStreamTrack mirrors MediaStreamTrack.
type rawMediaStreamTrack struct {
	enabled    bool
	_          [7]byte
	id         uintptr
	kind       uintptr // "audio" or "video"
	label      uintptr
	muted      bool
	readyState bool
	remote     bool
	_          [1]byte
	width      uint32
	height     uint32
	frameRate  int32
}

// rawFrame mirrors MediaStreamTrackFrame. Passed by value to the frame
// callback, which at the C calling convention is two register-sized
// arguments (buf, len).
type rawFrame struct {
	buf    uintptr
	length uint64
}

// rawSessionDescription mirrors RTCSessionDescription.
type rawSessionDescription struct {
	kind int32 // SDPType discriminant
	_    [4]byte
	sdp  uintptr
}

// rawDataChannel mirrors RTCDataChannel. Delivered by value to the
// data-channel callback as two register-sized arguments (id, label).
type rawDataChannel struct {
	id    uintptr
	label uintptr
}
