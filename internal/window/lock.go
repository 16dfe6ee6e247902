package window

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// DeviceLock serializes every access to the shared terminal device: blits,
// flushes, geometry and visibility changes, and edits to the tree links.
//
// Public operations acquire it once at their entry point and run their
// steps through unexported *Locked functions that assume it is held, so an
// operation that recomposites never acquires it twice. Callers that need
// several operations under one acquisition use Context.Batch; calling a
// Window method from inside the batch callback panics rather than
// deadlocking.
type DeviceLock struct {
	mu           sync.Mutex
	acquisitions atomic.Int64
	holder       atomic.Uint64 // goroutine inside hold, or 0
}

// Do runs fn with the lock held. The lock is released when fn returns or
// panics.
func (l *DeviceLock) Do(fn func()) {
	if !l.mu.TryLock() {
		if id := l.holder.Load(); id != 0 && id == goroutineID() {
			panic("window: device lock re-entered inside Batch; use the Tx passed to the callback")
		}
		l.mu.Lock()
	}
	defer l.mu.Unlock()
	l.acquisitions.Add(1)
	fn()
}

// hold is Do for callbacks that run caller code: it records the calling
// goroutine so a nested Do from that goroutine is caught.
func (l *DeviceLock) hold(fn func()) {
	l.Do(func() {
		l.holder.Store(goroutineID())
		defer l.holder.Store(0)
		fn()
	})
}

// Acquisitions returns how many times the lock has been taken.
func (l *DeviceLock) Acquisitions() int64 {
	return l.acquisitions.Load()
}

// goroutineID parses the current goroutine's number from its stack header,
// "goroutine N [running]:".
func goroutineID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}
