// Bridge between librtc_wrapper's callback-driven asynchronous entry
// points and one-shot awaitables. Completion callbacks arrive on the
// engine's own threads; the only handoff between them and the awaiting
// goroutine is an atomic pointer slot plus a closed channel.

package webrtc

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/purego"
)

// DescriptionOperation states.
const (
	opIdle int32 = iota
	opStarted
	opDone
)

type descriptionKind int

const (
	kindOffer descriptionKind = iota
	kindAnswer
)

func (k descriptionKind) String() string {
	if k == kindOffer {
		return "offer"
	}
	return "answer"
}

// Pending offer/answer operations, keyed by the opaque context value
// handed to the native entry point. The engine passes the key back to
// the trampoline unchanged; claiming an entry removes it, so each
// context is reclaimed exactly once. Entries abandoned by a cancelled
// Await stay here until the engine's callback claims them.
var (
	pendingMu  sync.Mutex
	pendingOps = make(map[uintptr]*DescriptionOperation)
	pendingKey uintptr
)

var (
	descCallbackOnce sync.Once
	descCallback     uintptr
)

// descriptionCallbackPtr returns the statically-typed trampoline shared
// by every offer/answer operation. Created once; purego callback slots
// are a finite process-wide resource.
func descriptionCallbackPtr() uintptr {
	descCallbackOnce.Do(func() {
		descCallback = purego.NewCallback(descriptionTrampoline)
	})
	return descCallback
}

// descriptionTrampoline is invoked by the engine exactly once per
// operation, on a native thread, with either a native-owned
// RTCSessionDescription pointer or null for failure. It must not unwind
// into native code.
func descriptionTrampoline(desc, key uintptr) {
	defer func() {
		if r := recover(); r != nil {
			log().Errorf("description callback panic: %v", r)
		}
	}()

	pendingMu.Lock()
	op, ok := pendingOps[key]
	if ok {
		delete(pendingOps, key)
	}
	pendingMu.Unlock()
	if !ok {
		// Either the engine invoked a callback twice (a contract
		// violation this layer cannot defend against) or passed back a
		// context it was never given. The entry was already claimed, so
		// no double-free is possible; drop it.
		log().Warnf("completion callback for unknown context %#x", key)
		return
	}

	op.slot.Store(desc)
	op.state.Store(opDone)
	close(op.done)
}

// DescriptionOperation is a single in-flight offer or answer creation.
// The native entry point is invoked at most once, on the first Await (or
// Done) call; the resolved outcome is cached, and driving the operation
// again returns it without a second native invocation.
//
// Abandoning a started operation (context cancellation) leaks its
// registry entry until the engine's callback fires; the engine exposes
// no cancellation entry point.
type DescriptionOperation struct {
	kind descriptionKind
	peer uintptr

	state       atomic.Int32
	startOnce   sync.Once
	resolveOnce sync.Once
	done        chan struct{}
	slot        atomic.Uintptr

	result *SessionDescription
	err    error
}

func newDescriptionOperation(peer uintptr, kind descriptionKind) *DescriptionOperation {
	return &DescriptionOperation{
		kind: kind,
		peer: peer,
		done: make(chan struct{}),
	}
}

// start registers the operation in the pending registry and invokes the
// native entry point. Registration happens first: the callback may fire
// before the entry point returns.
func (op *DescriptionOperation) start() {
	op.startOnce.Do(func() {
		pendingMu.Lock()
		pendingKey++
		key := pendingKey
		pendingOps[key] = op
		pendingMu.Unlock()

		op.state.Store(opStarted)
		cb := descriptionCallbackPtr()
		switch op.kind {
		case kindOffer:
			rtcCreateOffer(op.peer, key, cb)
		case kindAnswer:
			rtcCreateAnswer(op.peer, key, cb)
		}
	})
}

// Done starts the operation if necessary and returns a channel that is
// closed once the native completion callback has fired. The result is
// then available through Await without blocking.
func (op *DescriptionOperation) Done() <-chan struct{} {
	op.start()
	return op.done
}

// Await starts the operation if necessary and blocks until it resolves
// or ctx is done. A non-null native result resolves to an owned
// SessionDescription (the native payload is freed exactly once); a null
// result resolves to ErrNegotiationFailed. Await may be called again
// after resolution and returns the cached outcome.
func (op *DescriptionOperation) Await(ctx context.Context) (*SessionDescription, error) {
	op.start()

	select {
	case <-op.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	op.resolveOnce.Do(func() {
		ptr := op.slot.Load()
		if ptr == 0 {
			op.err = fmt.Errorf("create %s: %w", op.kind, ErrNegotiationFailed)
			return
		}
		op.result, op.err = newSessionDescriptionFromNative(ptr)
	})
	return op.result, op.err
}

// Set-description bridge. The native completion callback for
// rtc_set_local_description / rtc_set_remote_description carries only a
// status code, no context pointer, so completions cannot be routed to a
// specific operation. The binding serializes these calls through a
// single-flight slot instead.
type setDescWaiter struct {
	done chan struct{}
	code atomic.Int32
}

var (
	setDescSem     = make(chan struct{}, 1)
	setDescPending atomic.Pointer[setDescWaiter]

	setDescCallbackOnce sync.Once
	setDescCallback     uintptr
)

func setDescriptionCallbackPtr() uintptr {
	setDescCallbackOnce.Do(func() {
		setDescCallback = purego.NewCallback(setDescriptionTrampoline)
	})
	return setDescCallback
}

func setDescriptionTrampoline(code int32) {
	defer func() {
		if r := recover(); r != nil {
			log().Errorf("set-description callback panic: %v", r)
		}
	}()

	w := setDescPending.Swap(nil)
	if w == nil {
		log().Warnf("set-description completion with no operation in flight")
		return
	}
	w.code.Store(code)
	close(w.done)
}

// runSetDescription performs one serialized set-description call. The
// description snapshot stays pinned until the completion callback fires;
// on cancellation the slot and the snapshot are released by a watcher
// once the engine eventually completes.
func runSetDescription(ctx context.Context, snap *descSnapshot, call func(desc, cb uintptr)) error {
	select {
	case setDescSem <- struct{}{}:
	case <-ctx.Done():
		snap.release()
		return ctx.Err()
	}

	w := &setDescWaiter{done: make(chan struct{})}
	setDescPending.Store(w)
	call(snap.ptr(), setDescriptionCallbackPtr())

	select {
	case <-w.done:
		snap.release()
		<-setDescSem
		if code := w.code.Load(); code != 0 {
			return fmt.Errorf("set description: status %d: %w", code, ErrNegotiationFailed)
		}
		return nil
	case <-ctx.Done():
		go func() {
			<-w.done
			snap.release()
			<-setDescSem
		}()
		return ctx.Err()
	}
}
