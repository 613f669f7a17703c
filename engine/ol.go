// SPDX-License-Identifier: EPL-2.0

package engine

import "github.com/ik5/frameola/internal/ring"

// OLProcessor is the per-frame callback for the analysis-only (OL)
// engine. It is observational: it cannot produce an output signal,
// only inspect the windowed frame and its status. This is the Go
// mapping of phaseshift::ab::ol's virtual proc_frame, composed rather
// than inherited per the Design Notes' template-method guidance.
type OLProcessor interface {
	ProcessFrame(frame []float32, status OLStatus)
}

// OLProcessorFunc adapts a plain function to OLProcessor.
type OLProcessorFunc func(frame []float32, status OLStatus)

// ProcessFrame implements OLProcessor.
func (f OLProcessorFunc) ProcessFrame(frame []float32, status OLStatus) { f(frame, status) }

// OL is the analysis-only engine controller (spec §4.D): it segments
// input into overlapping frames and hands each to a callback, without
// reconstructing an output signal. Its declared latency is always 0.
type OL struct {
	sampleRate float64
	frameLen   int
	hop        int
	window     []float32

	primeAtZero bool
	extraSkip   int
	extraFlush  int

	transform OLProcessor

	rolling       *ring.Buffer
	frameIn       []float32
	skipRemaining int
	winCenterIn   int64
	status        OLStatus

	finished bool
}

// SampleRate returns the configured sample rate in Hz.
func (o *OL) SampleRate() float64 { return o.sampleRate }

// FrameLen returns N, the analysis window length in samples.
func (o *OL) FrameLen() int { return o.frameLen }

// Hop returns H, the samples advanced between adjacent frames.
func (o *OL) Hop() int { return o.hop }

// Window returns the analysis window kernel. The returned slice must
// not be modified by the caller.
func (o *OL) Window() []float32 { return o.window }

// Latency is always 0 for the OL engine: frames are emitted as soon as
// they are available, and there is no reconstructed output to delay.
func (o *OL) Latency() int { return 0 }

// Finished reports whether Flush has fully drained the engine.
func (o *OL) Finished() bool { return o.finished }

// ProcessInputAvailable returns how many more samples can be pushed
// via Push before the rolling window fills and triggers a frame.
func (o *OL) ProcessInputAvailable() int { return o.frameLen - o.rolling.Len() }

// Reset restores the engine to its just-built state, preserving the
// window and configuration. It does not reallocate any buffer.
func (o *OL) Reset() {
	o.rolling.Clear()
	o.skipRemaining = 0
	if o.primeAtZero {
		o.skipRemaining = (o.frameLen - 1) / 2
		o.rolling.PushBackZeros(o.skipRemaining)
	}
	o.skipRemaining += o.extraSkip

	o.status = OLStatus{
		FirstFrame:   true,
		PaddingStart: o.skipRemaining > 0,
	}
	o.winCenterIn = 0
	o.finished = false
}

// Push consumes batch unconditionally (no backpressure: the OL engine
// has no output ring to overflow), firing one frame event per hop
// boundary the batch crosses.
func (o *OL) Push(batch []float32) {
	if o.finished {
		return
	}
	idx := 0
	for idx < len(batch) {
		room := o.frameLen - o.rolling.Len()
		n := room
		if rem := len(batch) - idx; rem < n {
			n = rem
		}
		o.rolling.PushBackSlice(batch[idx : idx+n])
		idx += n

		if o.rolling.Len() == o.frameLen {
			o.status.PaddingStart = o.skipRemaining > 0
			o.processWindow(o.hop)
		}
	}
}

func (o *OL) processWindow(flushAmount int) {
	o.rolling.CopyOut(o.frameIn)
	for i, w := range o.window {
		o.frameIn[i] *= w
	}

	o.transform.ProcessFrame(o.frameIn, o.status)
	o.status.FirstFrame = false

	if o.skipRemaining > 0 {
		pop := o.skipRemaining
		if pop > flushAmount {
			pop = flushAmount
		}
		o.skipRemaining -= pop
	}
	o.status.PaddingStart = o.skipRemaining > 0

	o.rolling.PopFront(o.hop)
	o.winCenterIn += int64(o.hop)
	o.status.WinCenterIn = o.winCenterIn
}

// Flush drains the remaining buffered input, zero-padding the rolling
// window and continuing to emit frames while the window centre has not
// passed the last real input sample by more than N/2+H (spec §4.D).
// The last such frame carries status.LastFrame = true.
func (o *OL) Flush() {
	if o.finished {
		return
	}
	if o.rolling.Len() == 0 {
		o.finished = true
		return
	}

	o.status.Flushing = true

	flushTotal := o.rolling.Len() + o.extraFlush
	threshold := o.frameLen/2 + o.hop

	for {
		pad := o.frameLen - o.rolling.Len()
		if pad > 0 {
			o.rolling.PushBackZeros(pad)
		}

		flushAmount := o.hop
		if flushTotal <= threshold {
			flushAmount = flushTotal
			o.status.LastFrame = true
		}

		o.status.PaddingStart = o.skipRemaining > 0
		o.processWindow(flushAmount)

		flushTotal -= flushAmount
		if flushTotal <= 0 {
			break
		}
	}

	o.finished = true
	o.rolling.Clear()
}
