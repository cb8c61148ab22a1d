package webrtc

import (
	"context"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/ebitengine/purego"
)

// PeerConnection owns an opaque native connection handle together with
// the pinned configuration snapshot backing it; the engine does not copy
// the configuration eagerly, so the snapshot lives as long as the
// handle. The handle is invalidated by Close and never reusable.
//
// A PeerConnection assumes a single logical owner. Mutating operations
// and Close must not race from multiple callers without external
// serialization.
type PeerConnection struct {
	mu     sync.Mutex
	handle uintptr
	closed bool

	config *Configuration
	snap   *configSnapshot
	tracks []*MediaStreamTrack

	stateOnce     sync.Once
	dcOnce        sync.Once
	onState       atomic.Pointer[func(ConnectionState)]
	onDataChannel atomic.Pointer[func(DataChannel)]
}

// NewPeerConnection creates a connection from the configuration. A nil
// configuration uses the engine's defaults (every optional field unset).
// The configuration builders must not be mutated while the connection is
// alive.
func NewPeerConnection(config *Configuration) (*PeerConnection, error) {
	if err := loadRTCWrapper(); err != nil {
		return nil, err
	}
	if config == nil {
		config = &Configuration{}
	}

	snap := config.snapshot()
	handle := rtcCreatePeerConnection(snap.ptr())
	if handle == 0 {
		snap.release()
		return nil, ErrConnectionCreationFailed
	}

	return &PeerConnection{
		handle: handle,
		config: config,
		snap:   snap,
	}, nil
}

// guard returns the native handle, or ErrUseAfterClose once the
// connection has been closed.
func (pc *PeerConnection) guard() (uintptr, error) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.closed {
		return 0, ErrUseAfterClose
	}
	return pc.handle, nil
}

// CreateOffer prepares an SDP offer operation. The native entry point is
// not invoked until the operation is first driven with Await or Done.
func (pc *PeerConnection) CreateOffer() (*DescriptionOperation, error) {
	handle, err := pc.guard()
	if err != nil {
		return nil, err
	}
	return newDescriptionOperation(handle, kindOffer), nil
}

// CreateAnswer prepares an SDP answer operation for a previously applied
// remote offer.
func (pc *PeerConnection) CreateAnswer() (*DescriptionOperation, error) {
	handle, err := pc.guard()
	if err != nil {
		return nil, err
	}
	return newDescriptionOperation(handle, kindAnswer), nil
}

// SetLocalDescription applies desc as the local end's description and
// waits for the engine to acknowledge it.
func (pc *PeerConnection) SetLocalDescription(ctx context.Context, desc *SessionDescription) error {
	handle, err := pc.guard()
	if err != nil {
		return err
	}
	snap, err := desc.snapshot()
	if err != nil {
		return err
	}
	return runSetDescription(ctx, snap, func(d, cb uintptr) {
		rtcSetLocalDescription(handle, d, cb)
	})
}

// SetRemoteDescription applies desc as the remote peer's current offer
// or answer and waits for the engine to acknowledge it.
func (pc *PeerConnection) SetRemoteDescription(ctx context.Context, desc *SessionDescription) error {
	handle, err := pc.guard()
	if err != nil {
		return err
	}
	snap, err := desc.snapshot()
	if err != nil {
		return err
	}
	return runSetDescription(ctx, snap, func(d, cb uintptr) {
		rtcSetRemoteDescription(handle, d, cb)
	})
}

// AddICECandidate delivers a remote candidate to the engine's ICE agent.
// A nil candidate is the end-of-candidates indicator (see
// EndOfCandidates for the equivalent with an empty candidate string).
// Marshaling failures are returned before any native call.
func (pc *PeerConnection) AddICECandidate(candidate *ICECandidate) error {
	handle, err := pc.guard()
	if err != nil {
		return err
	}
	if candidate == nil {
		rtcAddICECandidate(handle, 0)
		return nil
	}

	snap, err := candidate.snapshot()
	if err != nil {
		return err
	}
	// The engine copies the candidate during the call; the snapshot only
	// has to survive it.
	rtcAddICECandidate(handle, snap.ptr())
	snap.release()
	return nil
}

// AddTrack adds a media track to the set transmitted to the remote peer.
// The track's descriptor stays pinned while attached; the track must not
// be closed before the connection.
func (pc *PeerConnection) AddTrack(track *MediaStreamTrack) error {
	handle, err := pc.guard()
	if err != nil {
		return err
	}
	if err := track.attach(); err != nil {
		return err
	}
	rtcAddTrack(handle, track.ptr())

	pc.mu.Lock()
	pc.tracks = append(pc.tracks, track)
	pc.mu.Unlock()
	return nil
}

// OnConnectionStateChange registers f for aggregate connection state
// transitions. The native subscription is installed once per connection;
// subsequent calls swap the handler.
func (pc *PeerConnection) OnConnectionStateChange(f func(ConnectionState)) error {
	handle, err := pc.guard()
	if err != nil {
		return err
	}
	pc.onState.Store(&f)
	pc.stateOnce.Do(func() {
		// The state callback has no context argument; a per-connection
		// closure routes it. Callback slots are never released.
		cb := purego.NewCallback(func(state uintptr) {
			pc.handleConnectionState(state)
		})
		rtcOnConnectionStateChange(handle, cb)
	})
	return nil
}

func (pc *PeerConnection) handleConnectionState(state uintptr) {
	defer func() {
		if r := recover(); r != nil {
			log().Errorf("connection state handler panic: %v", r)
		}
	}()

	s := ConnectionState(int32(state))
	log().Tracef("connection state: %s", s)
	if f := pc.onState.Load(); f != nil {
		(*f)(s)
	}
}

// OnDataChannel registers f for data channels opened by the remote
// peer. The native subscription is installed once per connection;
// subsequent calls swap the handler.
func (pc *PeerConnection) OnDataChannel(f func(DataChannel)) error {
	handle, err := pc.guard()
	if err != nil {
		return err
	}
	pc.onDataChannel.Store(&f)
	pc.dcOnce.Do(func() {
		// RTCDataChannel arrives by value: two pointer-sized words at
		// the C calling convention.
		cb := purego.NewCallback(func(id, label uintptr) {
			pc.handleDataChannel(id, label)
		})
		rtcOnDataChannel(handle, cb)
	})
	return nil
}

func (pc *PeerConnection) handleDataChannel(id, label uintptr) {
	defer func() {
		if r := recover(); r != nil {
			log().Errorf("data channel handler panic: %v", r)
		}
	}()

	channel := DataChannel{
		ID:    goStringFromPtr(id),
		Label: goStringFromPtr(label),
	}
	if !utf8.ValidString(channel.ID) || !utf8.ValidString(channel.Label) {
		log().Warnf("data channel with non-UTF-8 id or label")
	}
	if f := pc.onDataChannel.Load(); f != nil {
		(*f)(channel)
	}
}

// Close terminates the connection's ICE agent and releases the native
// handle. Close is idempotent; every other operation on a closed
// connection fails with ErrUseAfterClose. Close must not race in-flight
// operations from other callers.
func (pc *PeerConnection) Close() error {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.closed {
		return nil
	}
	pc.closed = true

	rtcClose(pc.handle)
	pc.handle = 0
	// The engine no longer references the configuration once closed.
	pc.snap.release()
	pc.snap = nil
	return nil
}
