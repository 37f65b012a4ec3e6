// File: umem/ring.go
// Ring implements the AF_XDP-style producer/consumer index protocol
// used by all four kernel-shared rings (fill, completion, RX, TX):
// a fixed power-of-two-sized circular buffer with separate producer
// and consumer index words, batch reservation on the writer side, and
// batch peek/release on the reader side (spec.md §4.1's "ring
// protocol: reserve/submit (producer) and peek/release (consumer),
// each batched").
//
// Generalized from the teacher's pool/ring.go RingBuffer[T]
// (github.com/momentics/hioload-ws): same atomic-index, power-of-two
// mask, cache-line-padded shape, but split into two call-sites per side
// (Reserve/Submit, Peek/Release) instead of single-item Enqueue/Dequeue,
// because the kernel driver on the other side of a real AF_XDP ring
// only observes the published index, not each write -- a single-item
// API would force one atomic publish per descriptor, defeating the
// point of batching (spec.md §4.3's "drain TX completions in a batch").
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package umem

import "sync/atomic"

// Ring is shared between exactly one producer and one consumer. Both
// producer and consumer index words are written by only one side and
// read by the other, so a plain atomic load/store (not a CAS) gives
// the same correctness a real mmap'd kernel ring gets from its
// acquire/release barrier pair.
type Ring[T any] struct {
	data []T
	mask uint32

	producer atomic.Uint32
	consumer atomic.Uint32

	_ [64]byte // separate the hot index words from anything embedding this struct
}

// NewRing allocates a ring of the given power-of-two size.
func NewRing[T any](size uint32) *Ring[T] {
	if size == 0 || size&(size-1) != 0 {
		panic("umem: ring size must be a power of two")
	}
	return &Ring[T]{
		data: make([]T, size),
		mask: size - 1,
	}
}

// Size returns the ring's fixed capacity.
func (r *Ring[T]) Size() uint32 { return uint32(len(r.data)) }

// --- producer side (used by a writer handing entries to the other side) ---

// Reserve asks for room for n entries. It returns the starting index
// to write at and the number actually reserved (which may be less than
// n, or zero if the ring is full); the caller must write exactly that
// many entries via At before calling Submit.
func (r *Ring[T]) Reserve(n uint32) (idx uint32, got uint32) {
	prod := r.producer.Load()
	cons := r.consumer.Load() // acquire: consumer's latest published position
	free := r.Size() - (prod - cons)
	if free == 0 {
		return 0, 0
	}
	if n > free {
		n = free
	}
	return prod, n
}

// Submit publishes n freshly written entries (n must be <= the value
// returned by the most recent Reserve) so the consumer can observe them.
func (r *Ring[T]) Submit(n uint32) {
	r.producer.Add(n) // release: visible to the consumer's next Load
}

// --- consumer side (used by a reader taking entries from the other side) ---

// Peek returns the starting index of up to n available entries and how
// many are actually available (zero if the ring is empty). The caller
// must not modify entries outside [idx, idx+got) and must call Release
// with the number it has finished consuming.
func (r *Ring[T]) Peek(n uint32) (idx uint32, got uint32) {
	prod := r.producer.Load() // acquire: producer's latest published position
	cons := r.consumer.Load()
	avail := prod - cons
	if avail == 0 {
		return 0, 0
	}
	if n > avail {
		n = avail
	}
	return cons, n
}

// Release publishes that n entries have been consumed, freeing that
// room for the producer's next Reserve.
func (r *Ring[T]) Release(n uint32) {
	r.consumer.Add(n) // release: visible to the producer's next Load
}

// At returns a pointer to the slot at idx (mod the ring size), valid to
// read/write only within a Reserve..Submit or Peek..Release window for
// that index.
func (r *Ring[T]) At(idx uint32) *T {
	return &r.data[idx&r.mask]
}

// Pending returns the number of entries the producer has published but
// the consumer has not yet released. It is not the datapath's
// outstanding_tx count, which xsk.Counters tracks separately.
func (r *Ring[T]) Pending() uint32 {
	return r.producer.Load() - r.consumer.Load()
}
