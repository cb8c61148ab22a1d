package webrtc

import (
	"runtime"
	"unsafe"

	pionwebrtc "github.com/pion/webrtc/v4"
)

// ICECandidate describes one potential network path, taken directly
// from the SDP "candidate" attribute. An empty Candidate string is the
// end-of-candidates marker.
type ICECandidate struct {
	Candidate     string
	SDPMid        string
	SDPMLineIndex int
}

// EndOfCandidates returns the explicit end-of-candidates marker,
// signalling that all remote candidates have been delivered.
func EndOfCandidates() *ICECandidate {
	return &ICECandidate{}
}

// FromICECandidateInit converts a pion candidate, as carried by
// browser-compatible signaling payloads.
func FromICECandidateInit(init pionwebrtc.ICECandidateInit) *ICECandidate {
	candidate := &ICECandidate{Candidate: init.Candidate}
	if init.SDPMid != nil {
		candidate.SDPMid = *init.SDPMid
	}
	if init.SDPMLineIndex != nil {
		candidate.SDPMLineIndex = int(*init.SDPMLineIndex)
	}
	return candidate
}

// Init converts the candidate to pion's signaling representation.
func (c *ICECandidate) Init() pionwebrtc.ICECandidateInit {
	mid := c.SDPMid
	index := uint16(c.SDPMLineIndex)
	return pionwebrtc.ICECandidateInit{
		Candidate:     c.Candidate,
		SDPMid:        &mid,
		SDPMLineIndex: &index,
	}
}

// candidateSnapshot is the transient ABI view of an ICECandidate; it
// only has to survive the rtc_add_ice_candidate call that consumes it.
type candidateSnapshot struct {
	raw          *rawICECandidate
	candidateBuf []byte
	midBuf       []byte
	pin          runtime.Pinner
}

func (c *ICECandidate) snapshot() (*candidateSnapshot, error) {
	candidateBuf, err := cString(c.Candidate)
	if err != nil {
		return nil, err
	}
	midBuf, err := cString(c.SDPMid)
	if err != nil {
		return nil, err
	}

	snap := &candidateSnapshot{
		raw: &rawICECandidate{
			sdpMLineIndex: int32(c.SDPMLineIndex),
		},
		candidateBuf: candidateBuf,
		midBuf:       midBuf,
	}
	snap.pin.Pin(snap.raw)
	snap.pin.Pin(&candidateBuf[0])
	snap.pin.Pin(&midBuf[0])
	snap.raw.candidate = uintptr(unsafe.Pointer(&candidateBuf[0]))
	snap.raw.sdpMid = uintptr(unsafe.Pointer(&midBuf[0]))
	return snap, nil
}

func (s *candidateSnapshot) ptr() uintptr {
	return uintptr(unsafe.Pointer(s.raw))
}

func (s *candidateSnapshot) release() {
	s.pin.Unpin()
}
