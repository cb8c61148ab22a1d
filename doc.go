// Package webrtc provides Go bindings for the native rtc_wrapper WebRTC
// engine (librtc_wrapper), backed by purego.
//
// The package has two layers:
//   - a raw ABI layer (abi.go, library.go) that mirrors librtc_wrapper's
//     C surface bit-for-bit: enums with the header's discriminants, structs
//     with the header's field order, and entry points loaded dynamically
//     at runtime
//   - a safe layer that owns every allocation backing a raw pointer and
//     bridges the engine's callback-driven asynchronous operations into
//     one-shot awaitables
//
// # Architecture
//
//	Configuration/ICEServer -> ABI snapshot -> create_rtc_peer_connection -> PeerConnection
//	PeerConnection.CreateOffer/CreateAnswer -> DescriptionOperation -> Await -> SessionDescription
//	PeerConnection.SetLocalDescription/SetRemoteDescription -> completion callback -> error
//
// The engine runs its own internal threads. Completion callbacks arrive on
// those threads; the bridge hands results back to the awaiting goroutine
// through an atomic slot and a closed channel, so Await is safe to drive
// from any goroutine.
//
// # Native Library
//
// Bindings load librtc_wrapper.so (librtc_wrapper.dylib on macOS) at
// runtime. Set RTC_WRAPPER_LIB_PATH to the library file or
// RTC_SDK_LIB_PATH to the directory containing it; otherwise standard
// locations relative to the executable, the module root, and the system
// library directories are searched.
//
// # Cancellation
//
// The engine exposes no cancellation entry point. Abandoning an in-flight
// operation (context cancellation) leaves its completion context alive
// until the native callback fires; the context is reclaimed at that point.
// This is a deliberate leak-on-cancel trade-off, never a use-after-free.
package webrtc
