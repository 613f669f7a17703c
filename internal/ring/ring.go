// SPDX-License-Identifier: EPL-2.0

// Package ring implements the fixed-capacity circular sample buffer the
// engine package builds on. It is allocated once and never grows: every
// push/pop only moves the front/size bookkeeping, matching the
// allocation discipline described for phaseshift's containers/ringbuffer.h
// (preallocate once, processing never allocates).
package ring

// Buffer is a fixed-capacity ring buffer of float32 samples.
//
// The zero value is not usable; construct with New. Buffer is not safe
// for concurrent use — callers drive one engine from one goroutine, as
// documented at the engine package level.
type Buffer struct {
	data  []float32
	front int
	size  int
}

// New allocates a ring buffer with the given capacity. The backing
// array is allocated once and reused for the lifetime of the buffer.
func New(capacity int) *Buffer {
	return &Buffer{data: make([]float32, capacity)}
}

// Len returns the current occupancy.
func (b *Buffer) Len() int { return b.size }

// Cap returns the fixed capacity.
func (b *Buffer) Cap() int { return len(b.data) }

// Clear empties the buffer without releasing its backing array.
func (b *Buffer) Clear() {
	b.front = 0
	b.size = 0
}

func (b *Buffer) index(logical int) int {
	i := b.front + logical
	if n := len(b.data); i >= n {
		i -= n
	}
	return i
}

// At returns the sample at the logical (front-relative) index i.
func (b *Buffer) At(i int) float32 { return b.data[b.index(i)] }

// Set writes the sample at the logical index i.
func (b *Buffer) Set(i int, v float32) { b.data[b.index(i)] = v }

// segments splits the logical range [offset, offset+count) into at most
// two slices of the underlying array — one if the range doesn't wrap,
// two if it does. Returned slices alias b.data directly so callers can
// use copy() instead of a per-sample loop, preserving the wrap-aware
// contiguous-copy behaviour of the original ring buffer's push_back and
// element-wise operators.
func (b *Buffer) segments(offset, count int) (first, second []float32) {
	if count == 0 {
		return nil, nil
	}
	start := b.index(offset)
	n := len(b.data)
	if start+count <= n {
		return b.data[start : start+count], nil
	}
	return b.data[start:n], b.data[0 : count-(n-start)]
}

// copySegmented copies count elements from src (ring, logical offset
// srcOff) into dst (ring, logical offset dstOff), walking through
// whichever of the two sides' segment boundaries comes first so each
// step is a single copy() over a contiguous run.
func copySegmented(dst *Buffer, dstOff int, src *Buffer, srcOff int, count int) {
	for count > 0 {
		d0, d1 := dst.segments(dstOff, count)
		s0, s1 := src.segments(srcOff, count)
		n := len(d0)
		if len(s0) < n {
			n = len(s0)
		}
		copy(d0[:n], s0[:n])
		count -= n
		dstOff += n
		srcOff += n
		_ = d1
		_ = s1
	}
}

// PushBackSlice appends every sample of s, wrapping as needed, using
// copy() over each contiguous run instead of a per-sample loop.
func (b *Buffer) PushBackSlice(s []float32) {
	first, second := b.segments(b.size, len(s))
	copy(first, s)
	if second != nil {
		copy(second, s[len(first):])
	}
	b.size += len(s)
}

// PushBack appends a single sample. The caller must ensure capacity is
// available; PushBack does not grow the backing array.
func (b *Buffer) PushBack(v float32) {
	b.data[b.index(b.size)] = v
	b.size++
}

// PushBackZeros appends n zero samples — the padding idiom used during
// priming and flush.
func (b *Buffer) PushBackZeros(n int) {
	first, second := b.segments(b.size, n)
	for i := range first {
		first[i] = 0
	}
	for i := range second {
		second[i] = 0
	}
	b.size += n
}

// PushBackRing appends count samples read from src starting at src's
// logical offset, without materialising a flattened copy of src first.
// Mirrors ringbuffer<T>::push_back(const ringbuffer&, start, size) from
// phaseshift's containers/ringbuffer.h, including its wrap-aware,
// copy()-driven segment walking rather than element-by-element access.
func (b *Buffer) PushBackRing(src *Buffer, offset, count int) {
	copySegmented(b, b.size, src, offset, count)
	b.size += count
}

// PopFront drops the first n samples.
func (b *Buffer) PopFront(n int) {
	if n > b.size {
		n = b.size
	}
	b.front = b.index(n)
	b.size -= n
}

// CopyOut copies the first len(dst) samples into dst without modifying
// the buffer (used by Fetch-style operations that only borrow a view).
func (b *Buffer) CopyOut(dst []float32) {
	first, second := b.segments(0, len(dst))
	n := copy(dst, first)
	copy(dst[n:], second)
}

// AddRange adds v[i] to the first len(v) logical entries — the
// accum_sig/accum_win += frame_out/window step of the OLA hot path.
func (b *Buffer) AddRange(v []float32) {
	first, second := b.segments(0, len(v))
	for i := range first {
		first[i] += v[i]
	}
	for i := range second {
		second[i] += v[len(first)+i]
	}
}

// DivRange divides the first n entries of b by the first n entries of
// other, substituting divisor 1.0 wherever other's entry is below eps
// (the envelope-threshold guard of spec §4.C). Returns the number of
// substitutions performed, so callers can feed their failure counters.
// Mirrors ringbuffer<T>::divide_equal_range(.) from ringbuffer.h.
func (b *Buffer) DivRange(other *Buffer, n int, eps float32) int {
	substituted := 0
	for i := 0; i < n; i++ {
		denom := other.At(i)
		if denom < 2*eps {
			denom = 1.0
			substituted++
		}
		b.Set(i, b.At(i)/denom)
	}
	return substituted
}
