package webrtc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/ebitengine/purego"
)

var (
	rtcWrapperOnce    sync.Once
	rtcWrapperHandle  uintptr
	rtcWrapperInitErr error
	rtcWrapperLoaded  bool
)

// librtc_wrapper entry points. All pointer arguments are uintptr; the
// safe layer owns the memory behind every one of them. These are
// package-level variables so tests can install a fake native layer.
var (
	rtcCreatePeerConnection    func(config uintptr) uintptr
	rtcAddICECandidate         func(peer, candidate uintptr)
	mediaStreamTrackWriteFrame func(track, frame uintptr)
	mediaStreamTrackOnFrame    func(track, callback uintptr)
	rtcAddTrack                func(peer, track uintptr)
	rtcClose                   func(peer uintptr)
	rtcCreateOffer             func(peer, ctx, callback uintptr)
	rtcCreateAnswer            func(peer, ctx, callback uintptr)
	rtcSetLocalDescription     func(peer, desc, callback uintptr)
	rtcSetRemoteDescription    func(peer, desc, callback uintptr)
	rtcOnConnectionStateChange func(peer, callback uintptr)
	rtcOnDataChannel           func(peer, callback uintptr)
	rtcFree                    func(desc uintptr)
)

// loadRTCWrapper loads librtc_wrapper.
func loadRTCWrapper() error {
	if rtcWrapperLoaded {
		return nil
	}
	rtcWrapperOnce.Do(func() {
		rtcWrapperInitErr = loadRTCWrapperLib()
		if rtcWrapperInitErr == nil {
			rtcWrapperLoaded = true
		}
	})
	return rtcWrapperInitErr
}

func loadRTCWrapperLib() error {
	paths := getRTCWrapperLibPaths()

	var lastErr error
	for _, path := range paths {
		handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			rtcWrapperHandle = handle
			loadRTCWrapperSymbols()
			return nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return fmt.Errorf("failed to load librtc_wrapper: %w", lastErr)
	}
	return errors.New("librtc_wrapper not found in any standard location")
}

func getRTCWrapperLibPaths() []string {
	var paths []string

	libName := "librtc_wrapper.so"
	if runtime.GOOS == "darwin" {
		libName = "librtc_wrapper.dylib"
	}

	// Environment variable overrides
	if envPath := os.Getenv("RTC_WRAPPER_LIB_PATH"); envPath != "" {
		paths = append(paths, envPath)
	}
	if envPath := os.Getenv("RTC_SDK_LIB_PATH"); envPath != "" {
		paths = append(paths, filepath.Join(envPath, libName))
	}

	// Try to find based on executable location
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, libName),
			filepath.Join(exeDir, "..", "lib", libName),
		)
	}

	// Try module root
	if root := findModuleRoot(); root != "" {
		paths = append(paths, filepath.Join(root, "build", libName))
	}

	// Try the working directory
	if wd, err := os.Getwd(); err == nil {
		paths = append(paths,
			filepath.Join(wd, "build", libName),
			filepath.Join(wd, "..", "build", libName),
		)
	}

	// System paths
	switch runtime.GOOS {
	case "darwin":
		paths = append(paths,
			"librtc_wrapper.dylib",
			"/usr/local/lib/librtc_wrapper.dylib",
			"/opt/homebrew/lib/librtc_wrapper.dylib",
		)
	case "linux":
		paths = append(paths,
			"librtc_wrapper.so",
			"/usr/local/lib/librtc_wrapper.so",
			"/usr/lib/librtc_wrapper.so",
		)
	}

	return paths
}

func loadRTCWrapperSymbols() {
	purego.RegisterLibFunc(&rtcCreatePeerConnection, rtcWrapperHandle, "create_rtc_peer_connection")
	purego.RegisterLibFunc(&rtcAddICECandidate, rtcWrapperHandle, "rtc_add_ice_candidate")
	purego.RegisterLibFunc(&mediaStreamTrackWriteFrame, rtcWrapperHandle, "media_stream_track_write_frame")
	purego.RegisterLibFunc(&mediaStreamTrackOnFrame, rtcWrapperHandle, "media_stream_track_on_frame")
	purego.RegisterLibFunc(&rtcAddTrack, rtcWrapperHandle, "rtc_add_track")
	purego.RegisterLibFunc(&rtcClose, rtcWrapperHandle, "rtc_close")
	purego.RegisterLibFunc(&rtcCreateOffer, rtcWrapperHandle, "rtc_create_offer")
	purego.RegisterLibFunc(&rtcCreateAnswer, rtcWrapperHandle, "rtc_create_answer")
	purego.RegisterLibFunc(&rtcSetLocalDescription, rtcWrapperHandle, "rtc_set_local_description")
	purego.RegisterLibFunc(&rtcSetRemoteDescription, rtcWrapperHandle, "rtc_set_remote_description")
	purego.RegisterLibFunc(&rtcOnConnectionStateChange, rtcWrapperHandle, "rtc_on_connectionstatechange")
	purego.RegisterLibFunc(&rtcOnDataChannel, rtcWrapperHandle, "rtc_on_datachannel")
	purego.RegisterLibFunc(&rtcFree, rtcWrapperHandle, "rtc_free")
}

// IsAvailable reports whether librtc_wrapper could be loaded.
func IsAvailable() bool {
	return loadRTCWrapper() == nil
}

// findModuleRoot walks up the directory tree from the current working
// directory to find the module root (directory containing go.mod).
func findModuleRoot() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
