package storage

import (
	"runtime"
	"sync/atomic"

	"github.com/born-ml/itensor/internal/metrics"
)

// handle is a reference-counted storage block shared by tensors that have not diverged.
//
// The count is atomic because GC cleanups release claims from their own goroutine;
// the handle itself is not safe for concurrent mutation.
type handle struct {
	data     Data
	refCount atomic.Int32
}

// newHandle wraps d with refCount = 1.
func newHandle(d Data) *handle {
	h := &handle{data: d}
	h.refCount.Store(1)
	return h
}

// addRef increments the reference count (for Share).
func (h *handle) addRef() {
	h.refCount.Add(1)
}

// release decrements the reference count and drops the data when it reaches 0.
func (h *handle) release() {
	if h.refCount.Add(-1) == 0 {
		h.data = nil
	}
}

// Ref is one holder's claim on a shared storage handle.
//
// Every tensor owns its own Ref. Share creates another claim on the same
// handle; Detach gives the holder a private copy when the handle is shared.
// A Ref that becomes unreachable without Release is released by a GC cleanup.
type Ref struct {
	h       *handle
	cleanup runtime.Cleanup
}

// NewRef wraps d in a fresh handle owned by the returned Ref.
func NewRef(d Data) *Ref {
	return attach(newHandle(d))
}

// attach creates a Ref for an already counted claim on h.
func attach(h *handle) *Ref {
	r := &Ref{h: h}
	r.cleanup = runtime.AddCleanup(r, (*handle).release, h)
	return r
}

// Data returns the storage currently held.
func (r *Ref) Data() Data {
	return r.h.data
}

// Share returns a new claim on the same storage (refCount + 1).
func (r *Ref) Share() *Ref {
	r.h.addRef()
	return attach(r.h)
}

// Release drops this claim. The Ref must not be used afterwards.
func (r *Ref) Release() {
	if r.h == nil {
		return
	}
	r.cleanup.Stop()
	r.h.release()
	r.h = nil
}

// Unique reports whether this Ref is the only claim on its storage.
func (r *Ref) Unique() bool {
	return r.h.refCount.Load() == 1
}

// SameStorage reports whether r and o hold the same storage block.
func (r *Ref) SameStorage(o *Ref) bool {
	return r.h == o.h
}

// Detach makes the storage private to r, cloning it if shared.
// It reports whether a clone was made.
func (r *Ref) Detach() bool {
	if r.Unique() {
		return false
	}
	clone := newHandle(r.h.data.Clone())
	r.cleanup.Stop()
	r.h.release()
	r.h = clone
	r.cleanup = runtime.AddCleanup(r, (*handle).release, clone)
	metrics.StorageDetaches.Inc()
	return true
}

// Replace swaps in new storage. The storage must be private (see Detach).
// Panics on shared storage: replacing it would change sibling tensors.
func (r *Ref) Replace(d Data) {
	if !r.Unique() {
		panic("storage: replace on shared storage, call Detach first")
	}
	if old := r.h.data; old != nil && old.Kind() != d.Kind() {
		metrics.Promotion(old.Kind().String(), d.Kind().String())
	}
	r.h.data = d
}
