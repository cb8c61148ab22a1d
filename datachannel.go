package webrtc

// DataChannel identifies a bidirectional data channel opened on the
// connection by the remote peer. The strings are copied out of the
// native callback arguments; the value has no further native backing.
type DataChannel struct {
	ID    string
	Label string
}
