package webrtc

import (
	"runtime"
	"unsafe"
)

// BundlePolicy controls how media is bundled onto transports when the
// remote peer is not BUNDLE-aware. Discriminants match the native header.
type BundlePolicy int32

const (
	// BundlePolicyBalanced creates one transport per content type.
	BundlePolicyBalanced BundlePolicy = 1
	// BundlePolicyMaxCompat creates one transport per media track plus a
	// separate one for data channels.
	BundlePolicyMaxCompat BundlePolicy = 2
	// BundlePolicyMaxBundle creates a single transport for everything.
	BundlePolicyMaxBundle BundlePolicy = 3
)

func (p BundlePolicy) String() string {
	switch p {
	case BundlePolicyBalanced:
		return "balanced"
	case BundlePolicyMaxCompat:
		return "max-compat"
	case BundlePolicyMaxBundle:
		return "max-bundle"
	default:
		return "unknown"
	}
}

// ICETransportPolicy restricts which ICE candidates are considered.
type ICETransportPolicy int32

const (
	ICETransportPolicyNone ICETransportPolicy = 1
	// ICETransportPolicyRelay considers only relayed candidates (STUN or
	// TURN).
	ICETransportPolicyRelay ICETransportPolicy = 2
	// ICETransportPolicyPublic considers only candidates with public IP
	// addresses.
	ICETransportPolicyPublic ICETransportPolicy = 3
	// ICETransportPolicyAll considers every candidate.
	ICETransportPolicyAll ICETransportPolicy = 4
)

func (p ICETransportPolicy) String() string {
	switch p {
	case ICETransportPolicyNone:
		return "none"
	case ICETransportPolicyRelay:
		return "relay"
	case ICETransportPolicyPublic:
		return "public"
	case ICETransportPolicyAll:
		return "all"
	default:
		return "unknown"
	}
}

// RTCPMuxPolicy controls RTCP candidate gathering.
type RTCPMuxPolicy int32

const (
	// RTCPMuxPolicyNegotiate gathers both RTP and RTCP candidates.
	RTCPMuxPolicyNegotiate RTCPMuxPolicy = 1
	// RTCPMuxPolicyRequire gathers RTP candidates only and multiplexes
	// RTCP atop them.
	RTCPMuxPolicyRequire RTCPMuxPolicy = 2
)

func (p RTCPMuxPolicy) String() string {
	switch p {
	case RTCPMuxPolicyNegotiate:
		return "negotiate"
	case RTCPMuxPolicyRequire:
		return "require"
	default:
		return "unknown"
	}
}

// ICEServer describes one STUN or TURN server. The builder owns the
// NUL-terminated buffers behind every pointer it hands to the native
// layer and must stay alive while a derived snapshot is in use.
type ICEServer struct {
	credential []byte
	username   []byte
	urls       [][]byte
}

// SetCredential sets the TURN login credential.
func (s *ICEServer) SetCredential(credential string) error {
	buf, err := cString(credential)
	if err != nil {
		return err
	}
	s.credential = buf
	return nil
}

// SetUsername sets the TURN login username.
func (s *ICEServer) SetUsername(username string) error {
	buf, err := cString(username)
	if err != nil {
		return err
	}
	s.username = buf
	return nil
}

// SetURLs replaces the server URL list. The backing buffers are replaced
// wholesale; any pointer array previously derived from them is stale and
// is re-derived at snapshot time.
func (s *ICEServer) SetURLs(urls []string) error {
	bufs, err := cStrings(urls)
	if err != nil {
		return err
	}
	s.urls = bufs
	return nil
}

// Configuration collects peer connection options. The zero value means
// all options unset, letting the engine apply its defaults.
type Configuration struct {
	bundlePolicy       BundlePolicy       // 0 = unset
	iceTransportPolicy ICETransportPolicy // 0 = unset
	rtcpMuxPolicy      RTCPMuxPolicy      // 0 = unset
	peerIdentity       []byte
	iceServers         []*ICEServer
	poolSize           uint16
	poolSizeSet        bool
}

func (c *Configuration) SetBundlePolicy(policy BundlePolicy) {
	c.bundlePolicy = policy
}

func (c *Configuration) SetICETransportPolicy(policy ICETransportPolicy) {
	c.iceTransportPolicy = policy
}

func (c *Configuration) SetRTCPMuxPolicy(policy RTCPMuxPolicy) {
	c.rtcpMuxPolicy = policy
}

// SetPeerIdentity sets the target peer identity; the connection will not
// complete unless the remote peer can authenticate with this name.
func (c *Configuration) SetPeerIdentity(identity string) error {
	buf, err := cString(identity)
	if err != nil {
		return err
	}
	c.peerIdentity = buf
	return nil
}

// SetICEServers replaces the ICE server list. The builders are retained;
// they must not be mutated while a connection created from this
// configuration is alive.
func (c *Configuration) SetICEServers(servers []*ICEServer) {
	c.iceServers = servers
}

// SetICECandidatePoolSize sets the prefetched ICE candidate pool size.
func (c *Configuration) SetICECandidatePoolSize(size uint16) {
	c.poolSize = size
	c.poolSizeSet = true
}

// configSnapshot is the transient ABI view of a Configuration. It owns
// the pointer arrays it derives and pins every allocation the native
// side may dereference. The engine retains the configuration pointer for
// the lifetime of the connection handle, so the snapshot is released
// only on close.
type configSnapshot struct {
	raw     *rawConfiguration
	servers []rawICEServer
	urlPtrs [][]uintptr
	pin     runtime.Pinner
}

// pinBuf pins an owned buffer and returns its raw pointer, or 0 for an
// unset buffer.
func (s *configSnapshot) pinBuf(buf []byte) uintptr {
	if len(buf) == 0 {
		return 0
	}
	s.pin.Pin(&buf[0])
	return uintptr(unsafe.Pointer(&buf[0]))
}

// snapshot materializes the raw configuration. Pointer arrays are derived
// fresh from the current backing buffers; nothing is cached across
// builder mutation.
func (c *Configuration) snapshot() *configSnapshot {
	snap := &configSnapshot{
		raw: &rawConfiguration{
			bundlePolicy:       int32(c.bundlePolicy),
			iceTransportPolicy: int32(c.iceTransportPolicy),
			rtcpMuxPolicy:      int32(c.rtcpMuxPolicy),
		},
	}
	snap.pin.Pin(snap.raw)

	snap.raw.peerIdentity = snap.pinBuf(c.peerIdentity)
	if c.poolSizeSet {
		snap.raw.poolSizeSet = 1
		snap.raw.poolSize = int32(c.poolSize)
	}

	if len(c.iceServers) > 0 {
		snap.servers = make([]rawICEServer, len(c.iceServers))
		snap.urlPtrs = make([][]uintptr, len(c.iceServers))
		for i, srv := range c.iceServers {
			snap.servers[i] = rawICEServer{
				credential: snap.pinBuf(srv.credential),
				username:   snap.pinBuf(srv.username),
			}
			if len(srv.urls) > 0 {
				ptrs := make([]uintptr, len(srv.urls))
				for j, url := range srv.urls {
					ptrs[j] = snap.pinBuf(url)
				}
				snap.pin.Pin(&ptrs[0])
				snap.urlPtrs[i] = ptrs
				snap.servers[i].urls = uintptr(unsafe.Pointer(&ptrs[0]))
				snap.servers[i].urlsLen = int32(len(ptrs))
			}
		}
		snap.pin.Pin(&snap.servers[0])
		snap.raw.iceServers = uintptr(unsafe.Pointer(&snap.servers[0]))
		snap.raw.iceServersLen = int32(len(snap.servers))
	}

	return snap
}

func (s *configSnapshot) ptr() uintptr {
	return uintptr(unsafe.Pointer(s.raw))
}

// release unpins the snapshot. Must not be called while the native side
// may still dereference the configuration.
func (s *configSnapshot) release() {
	s.pin.Unpin()
}
