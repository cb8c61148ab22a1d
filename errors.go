package webrtc

import "errors"

var (
	// ErrInvalidText reports a string that cannot cross the C boundary
	// because it contains an embedded NUL byte.
	ErrInvalidText = errors.New("text contains embedded NUL byte")

	// ErrConnectionCreationFailed reports that the native engine returned
	// a null peer connection handle.
	ErrConnectionCreationFailed = errors.New("create peer connection failed")

	// ErrNegotiationFailed reports that an asynchronous negotiation step
	// (offer/answer creation or description application) was rejected by
	// the native engine.
	ErrNegotiationFailed = errors.New("negotiation failed")

	// ErrUseAfterClose reports an operation on a closed peer connection.
	ErrUseAfterClose = errors.New("peer connection is closed")

	// ErrInvalidUTF8 reports native-returned text that is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("native string is not valid UTF-8")
)
