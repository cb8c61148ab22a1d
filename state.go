package webrtc

import pionwebrtc "github.com/pion/webrtc/v4"

// ConnectionState is the aggregate state of the peer connection's
// transports. Discriminants match the native header.
type ConnectionState int32

const (
	// ConnectionStateNew: transports are newly created, none have started
	// connecting.
	ConnectionStateNew ConnectionState = 1
	// ConnectionStateChecking: at least one transport is establishing a
	// connection.
	ConnectionStateChecking ConnectionState = 2
	// ConnectionStateConnected: every transport in use is connected or
	// completed.
	ConnectionStateConnected ConnectionState = 3
	// ConnectionStateDisconnected: at least one transport is disconnected
	// and none have failed.
	ConnectionStateDisconnected ConnectionState = 4
	// ConnectionStateClose: the peer connection is closed.
	ConnectionStateClose ConnectionState = 5
	// ConnectionStateFailed: at least one transport has failed.
	ConnectionStateFailed ConnectionState = 6
)

func (s ConnectionState) String() string {
	switch s {
	case ConnectionStateNew:
		return "new"
	case ConnectionStateChecking:
		return "checking"
	case ConnectionStateConnected:
		return "connected"
	case ConnectionStateDisconnected:
		return "disconnected"
	case ConnectionStateClose:
		return "closed"
	case ConnectionStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Pion maps the state onto pion's PeerConnectionState, for callers
// composing with pion-based tooling.
func (s ConnectionState) Pion() pionwebrtc.PeerConnectionState {
	switch s {
	case ConnectionStateNew:
		return pionwebrtc.PeerConnectionStateNew
	case ConnectionStateChecking:
		return pionwebrtc.PeerConnectionStateConnecting
	case ConnectionStateConnected:
		return pionwebrtc.PeerConnectionStateConnected
	case ConnectionStateDisconnected:
		return pionwebrtc.PeerConnectionStateDisconnected
	case ConnectionStateClose:
		return pionwebrtc.PeerConnectionStateClosed
	case ConnectionStateFailed:
		return pionwebrtc.PeerConnectionStateFailed
	default:
		return pionwebrtc.PeerConnectionStateUnknown
	}
}
