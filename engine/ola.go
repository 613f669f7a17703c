// SPDX-License-Identifier: EPL-2.0

// Package engine implements the frame-based streaming controllers
// described for phaseshift's audio_block layer: OL (analysis-only),
// OLA (overlap-add synthesis) and its decoupled time-stretch variant.
// All three segment a sample stream into overlapping windows of length
// N advanced by hop H, hand each windowed frame to a caller-supplied
// transform, and (OLA/Decoupled only) reconstruct an output stream by
// summing overlapping transformed frames and dividing by the summed
// window envelope.
//
// # Allocation discipline
//
// Every engine is built once via its Builder and never allocates again
// during Process/Flush/Fetch — all scratch buffers and ring buffers are
// sized and allocated at Build time, mirroring the ringbuffer-backed,
// preallocate-once discipline of the reference audio_block controllers.
//
// # Concurrency
//
// A single engine value is not safe for concurrent use. Each goroutine
// that drives an engine must own it exclusively, or serialise access
// with its own lock; running multiple independent engines concurrently
// (one per goroutine) is the supported pattern for parallel streams.
package engine

import "github.com/ik5/frameola/internal/ring"

// Batch is a caller-owned slice of float32 samples, the unit the
// enginecmd adapter accumulates engine output into.
type Batch []float32

// Transform is the per-frame synthesis callback for OLA and Decoupled
// engines. It receives the current windowed input frame and must write
// exactly len(out) samples to out before returning; out is reused
// across calls (preallocated by the engine), so a transform must not
// retain it past the call. status describes this frame's position in
// the stream (first/last, priming/flush, window centres).
type Transform interface {
	Transform(in []float32, out []float32, status Status)
}

// TransformFunc adapts a plain function to Transform.
type TransformFunc func(in []float32, out []float32, status Status)

// Transform implements Transform.
func (f TransformFunc) Transform(in []float32, out []float32, status Status) { f(in, out, status) }

// Passthrough is a Transform that copies the windowed input straight to
// the output, unmodified. Composed with the engine's own windowing and
// overlap-add reconstruction, driving an OLA engine with Passthrough
// reproduces the original signal: the identity case used by the
// perfect-reconstruction tests.
var Passthrough TransformFunc = func(in, out []float32, _ Status) {
	copy(out, in)
}

// emitHook decides, per processed hop, whether the Decoupled engine
// should perform an action this iteration. The basic OLA engine wires
// both hooks to a function that always returns true.
type emitHook func(status Status) bool

func alwaysTrue(Status) bool { return true }

// OLA is the overlap-add synthesis engine controller (spec §4.C). It is
// also the concrete type underlying Decoupled: a Decoupled value sets
// its should-emit/should-consume hooks and an optional target output
// length, and reuses every OLA method.
type OLA struct {
	sampleRate float64
	frameLen   int
	hop        int
	window     []float32

	primeAtZero bool
	extraSkip   int
	extraFlush  int

	transform     Transform
	shouldEmit    emitHook
	shouldConsume emitHook

	targetOutputLength int64 // -1 = unlimited
	outputEmitted      int64
	maxRepeatsPerHop   int

	rolling  *ring.Buffer
	accumSig *ring.Buffer
	accumWin *ring.Buffer
	out      *ring.Buffer

	frameIn  []float32
	frameOut []float32

	skipRemaining int
	primingLead   int
	winCenterIn   int64
	winCenterOut  int64
	status        Status
	failures      Failures

	flushing       bool
	flushRemaining int
	finished       bool
}

// Decoupled is an OLA engine with its should-emit/should-consume policy
// exposed, enabling time-stretch: skipping input consumption repeats
// the current window's emission (slow-down), skipping emission consumes
// input without writing output (speed-up). It embeds *OLA so every OLA
// method (Process, Flush, Fetch, Reset, Latency, Failures...) applies
// unchanged; only construction differs (DecoupledOLABuilder).
type Decoupled struct {
	*OLA
}

// SampleRate returns the configured sample rate in Hz.
func (e *OLA) SampleRate() float64 { return e.sampleRate }

// FrameLen returns N, the synthesis window length in samples.
func (e *OLA) FrameLen() int { return e.frameLen }

// Hop returns H, the samples advanced between adjacent frames.
func (e *OLA) Hop() int { return e.hop }

// Window returns the synthesis window kernel. The returned slice must
// not be modified by the caller.
func (e *OLA) Window() []float32 { return e.window }

// Latency returns the engine's fixed output delay in samples: N, the
// window length, since the first output hop cannot be finalised until
// the window's full envelope has been accumulated.
func (e *OLA) Latency() int { return e.frameLen }

// Finished reports whether Flush has fully drained the engine.
func (e *OLA) Finished() bool { return e.finished }

// Failures returns a snapshot of the accumulated runtime failure
// counters. These never surface as errors: they are the engine's way
// of tolerating a misbehaving window or an undersized output sink
// while continuing to run in real time.
func (e *OLA) Failures() Failures { return e.failures }

// ProcessInputAvailable returns how many more samples can be pushed
// via Process before the rolling window fills and triggers a hop.
func (e *OLA) ProcessInputAvailable() int { return e.frameLen - e.rolling.Len() }

// FetchAvailable returns how many finished output samples are waiting
// to be read out via Fetch.
func (e *OLA) FetchAvailable() int { return e.out.Len() }

// Fetch copies up to len(dst) available output samples into dst,
// returning the count copied. It never blocks and never allocates.
func (e *OLA) Fetch(dst []float32) int {
	n := e.out.Len()
	if n > len(dst) {
		n = len(dst)
	}
	if n == 0 {
		return 0
	}
	e.out.CopyOut(dst[:n])
	e.out.PopFront(n)
	return n
}

// Reset restores the engine to its just-built state, preserving the
// window and configuration. It does not reallocate any buffer.
func (e *OLA) Reset() {
	e.rolling.Clear()
	e.accumSig.Clear()
	e.accumWin.Clear()
	e.out.Clear()
	e.accumSig.PushBackZeros(e.frameLen)
	e.accumWin.PushBackZeros(e.frameLen)

	e.skipRemaining = 0
	if e.primeAtZero {
		e.skipRemaining = (e.frameLen - 1) / 2
		e.rolling.PushBackZeros(e.skipRemaining)
	}
	e.skipRemaining += e.extraSkip
	e.primingLead = e.skipRemaining

	e.status = Status{
		FirstFrame:   true,
		PaddingStart: e.skipRemaining > 0,
	}
	e.winCenterIn = 0
	e.winCenterOut = 0
	e.outputEmitted = 0
	e.failures = Failures{}
	e.flushing = false
	e.finished = false
}

// Process consumes batch, running the hop loop whenever the rolling
// window fills, and returns the number of output samples the hops
// finalised; they are appended to the internal output ring (retrieve
// them with Fetch). If the output ring is full when a hop finishes, the
// overflowing samples are dropped (they still count in the return
// value) and Failures().OutputOverflows is incremented instead of
// blocking or growing the ring.
func (e *OLA) Process(batch []float32) int {
	if e.finished {
		return 0
	}
	produced := 0
	idx := 0
	for idx < len(batch) {
		room := e.frameLen - e.rolling.Len()
		n := room
		if rem := len(batch) - idx; rem < n {
			n = rem
		}
		e.rolling.PushBackSlice(batch[idx : idx+n])
		idx += n

		if e.rolling.Len() == e.frameLen {
			produced += e.runHop(false)
		}
	}
	return produced
}

// runHop executes one full hop iteration: transform the current
// window, optionally accumulate+emit per shouldEmit, optionally
// consume (advance the rolling input) per shouldConsume. When
// shouldConsume declines, the current window is re-offered on the next
// call without new input, bounded by maxRepeatsPerHop so a
// misconfigured hook can never spin forever.
func (e *OLA) runHop(flushing bool) int {
	produced := 0
	repeats := 0
	for {
		e.rolling.CopyOut(e.frameIn)
		for i, w := range e.window {
			e.frameIn[i] *= w
		}
		e.status.Flushing = flushing
		e.transform.Transform(e.frameIn, e.frameOut, e.status)
		e.status.FirstFrame = false

		emit := e.shouldEmit(e.status)
		if emit && e.targetOutputLength >= 0 && e.outputEmitted >= e.targetOutputLength {
			emit = false
		}
		if emit {
			produced += e.emitHopOutput()
		} else {
			e.advanceAccumulators()
		}

		consume := e.shouldConsume(e.status)
		if !consume {
			repeats++
			consume = repeats >= e.maxRepeatsPerHop
		}
		if consume {
			if e.skipRemaining > 0 {
				pop := e.skipRemaining
				if pop > e.hop {
					pop = e.hop
				}
				e.skipRemaining -= pop
			}
			e.status.PaddingStart = e.skipRemaining > 0
			e.rolling.PopFront(e.hop)
			e.winCenterIn += int64(e.hop)
			e.status.WinCenterIn = e.winCenterIn
			return produced
		}
	}
}

// emitHopOutput accumulates the just-transformed frame into the
// envelope accumulators, finalises and emits the front hop's worth of
// samples (clipped to any remaining target-output-length budget), then
// advances both accumulators by exactly one hop regardless of how many
// samples were actually written out, preserving size(accumSig) ==
// size(accumWin) == frameLen (spec §4.C invariant 2).
func (e *OLA) emitHopOutput() int {
	e.accumSig.AddRange(e.frameOut)
	e.accumWin.AddRange(e.window)

	emitCount := e.hop
	if e.targetOutputLength >= 0 {
		if budget := e.targetOutputLength - e.outputEmitted; int64(emitCount) > budget {
			emitCount = int(budget)
		}
	}
	if emitCount < 0 {
		emitCount = 0
	}

	if emitCount > 0 {
		subs := e.accumSig.DivRange(e.accumWin, emitCount, float32Eps)
		e.failures.ImperfectReconstruction += int64(subs)

		finished := e.frameOut[:emitCount]
		e.accumSig.CopyOut(finished)
		for _, v := range finished {
			assertSaneSample(v)
		}

		room := e.out.Cap() - e.out.Len()
		n := emitCount
		if n > room {
			e.failures.OutputOverflows += int64(emitCount - room)
			n = room
		}
		if n > 0 {
			e.out.PushBackSlice(finished[:n])
		}
		e.outputEmitted += int64(emitCount)
		e.winCenterOut += int64(emitCount)
		e.status.WinCenterOut = e.winCenterOut
	}

	e.advanceAccumulators()
	return emitCount
}

func (e *OLA) advanceAccumulators() {
	e.accumSig.PopFront(e.hop)
	e.accumWin.PopFront(e.hop)
	e.accumSig.PushBackZeros(e.hop)
	e.accumWin.PushBackZeros(e.hop)
}

// Flush drains the remaining buffered input, zero-padding the rolling
// window and continuing to emit hops while the undrained remainder is
// more than one hop, i.e. while remaining > H. The final hop carries
// status.LastFrame = true. This resolves the ambiguity between
// phaseshift's ol.cpp (N/2+H threshold) and ola.cpp (H threshold) in
// favour of the latter: it is the only threshold that keeps the fixed
// "subtract exactly one hop per iteration" loop from overshooting, and
// is what phaseshift's OLA controller itself actually runs.
func (e *OLA) Flush(chunkMax int) int {
	if e.finished {
		return 0
	}
	if !e.flushing {
		if e.rolling.Len() == 0 {
			e.finished = true
			e.status.Finished = true
			return 0
		}
		e.flushing = true
		e.status.Flushing = true
		e.flushRemaining = e.rolling.Len() + e.extraFlush
	}

	produced := 0
	for e.flushRemaining > 0 {
		if chunkMax > 0 && produced >= chunkMax {
			return produced
		}
		pad := e.frameLen - e.rolling.Len()
		if pad > 0 {
			e.rolling.PushBackZeros(pad)
		}
		e.status.PaddingEnd = pad > 0

		hop := e.hop
		if e.flushRemaining <= e.hop {
			hop = e.flushRemaining
			e.status.LastFrame = true
		}

		n := e.runFlushHop(hop)
		produced += n
		e.flushRemaining -= hop
	}

	e.finished = true
	e.status.Finished = true
	e.rolling.Clear()
	return produced
}

// runFlushHop processes one flush hop of the given width (which may be
// smaller than a full H on the very last iteration), popping exactly
// that many samples from rolling instead of the fixed hop.
func (e *OLA) runFlushHop(width int) int {
	e.rolling.CopyOut(e.frameIn)
	for i, w := range e.window {
		e.frameIn[i] *= w
	}
	e.transform.Transform(e.frameIn, e.frameOut, e.status)
	e.status.FirstFrame = false

	produced := e.emitHopOutputWidth(width)

	e.rolling.PopFront(width)
	e.winCenterIn += int64(width)
	return produced
}

// emitHopOutputWidth is emitHopOutput generalised to a non-hop width,
// used only by the final (possibly partial) flush iteration.
func (e *OLA) emitHopOutputWidth(width int) int {
	e.accumSig.AddRange(e.frameOut)
	e.accumWin.AddRange(e.window)

	emitCount := width
	if e.targetOutputLength >= 0 {
		if budget := e.targetOutputLength - e.outputEmitted; int64(emitCount) > budget {
			emitCount = int(budget)
		}
	}
	if emitCount < 0 {
		emitCount = 0
	}

	if emitCount > 0 {
		subs := e.accumSig.DivRange(e.accumWin, emitCount, float32Eps)
		e.failures.ImperfectReconstruction += int64(subs)

		finished := e.frameOut[:emitCount]
		e.accumSig.CopyOut(finished)
		for _, v := range finished {
			assertSaneSample(v)
		}

		room := e.out.Cap() - e.out.Len()
		n := emitCount
		if n > room {
			e.failures.OutputOverflows += int64(emitCount - room)
			n = room
		}
		if n > 0 {
			e.out.PushBackSlice(finished[:n])
		}
		e.outputEmitted += int64(emitCount)
		e.winCenterOut += int64(emitCount)
		e.status.WinCenterOut = e.winCenterOut
	}

	e.accumSig.PopFront(width)
	e.accumWin.PopFront(width)
	e.accumSig.PushBackZeros(width)
	e.accumWin.PushBackZeros(width)
	return emitCount
}

// ProcessOffline runs in to completion (Process then Flush) and writes
// the reconstructed signal to out, aligned with in: the leading
// priming samples contributed by PrimeAtZero/ExtraSkip are discarded
// first, so out[0] corresponds to in[0] and the result holds exactly
// min(len(in), len(out)) samples. It never reallocates out.
func (e *OLA) ProcessOffline(in []float32, out []float32) int {
	n := len(in)
	if n > len(out) {
		n = len(out)
	}
	lead, written := e.primingLead, 0
	for i := 0; i < len(in) || !e.finished; i += e.hop {
		if i < len(in) {
			e.Process(in[i:min(i+e.hop, len(in))])
		} else {
			e.Flush(e.hop)
		}
		skip := min(lead, e.out.Len())
		e.out.PopFront(skip)
		lead -= skip
		written += e.Fetch(out[written:n])
		e.out.Clear()
	}
	return written
}

// ProcessRealtime processes in and always writes exactly len(out)
// samples, honouring the engine's fixed Latency(): out[i] corresponds
// to in[i-Latency()]. Output not yet finalised this call (because the
// accumulator hasn't caught up with the requested block size) is
// zero-filled rather than held back, and any already-finalised samples
// beyond len(out) remain buffered in the output ring for the next
// call, so a caller feeding fixed-size blocks indefinitely always gets
// fixed-size blocks back. ProcessRealtime never flushes or finishes
// the engine.
func (e *OLA) ProcessRealtime(in []float32, out []float32) int {
	primeZeros := 0
	if e.primeAtZero {
		primeZeros = (e.frameLen - 1) / 2
	}
	// One output sample has been delivered per input sample consumed so
	// far; the first Latency()-primeZeros of them are leading silence.
	delivered := int(e.winCenterIn) + e.rolling.Len() - primeZeros
	e.Process(in)
	pad := min(max(e.frameLen-primeZeros-delivered, 0), len(out))
	for i := 0; i < pad; i++ {
		out[i] = 0
	}
	n := pad + e.Fetch(out[pad:])
	for i := n; i < len(out); i++ {
		out[i] = 0
	}
	return len(out)
}
