// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"github.com/ik5/frameola/internal/ring"
	"github.com/ik5/frameola/window"
)

// commonConfig holds the fields shared by every builder. It is not
// exported; each concrete builder embeds it and exposes its own
// fluent setters so the three builder surfaces don't cross-pollute.
type commonConfig struct {
	sampleRate  float64
	frameLen    int
	hop         int
	window      []float32
	primeAtZero bool
	extraSkip   int
	extraFlush  int
}

func (c *commonConfig) validate() error {
	if c.sampleRate <= 0 {
		return ErrInvalidSampleRate
	}
	if c.frameLen < 2 {
		return ErrInvalidFrameLen
	}
	if c.hop <= 0 {
		return ErrInvalidHop
	}
	if c.hop >= c.frameLen {
		return ErrHopNotLessThanFrameLen
	}
	if c.window != nil && len(c.window) != c.frameLen {
		return ErrWindowLengthMismatch
	}
	if c.extraSkip < 0 || c.extraFlush < 0 {
		return ErrNegativeExtra
	}
	return nil
}

func (c *commonConfig) resolvedWindow() []float32 {
	if c.window != nil {
		return c.window
	}
	return window.Hamming(c.frameLen)
}

// OLBuilder builds an analysis-only OL engine. The zero value is ready
// to configure; PrimeAtZero defaults to true, matching the reference
// controller's default alignment of the first window's centre with the
// first real input sample.
type OLBuilder struct {
	cfg       commonConfig
	transform OLProcessor
}

// NewOLBuilder returns a builder with PrimeAtZero enabled by default.
func NewOLBuilder() *OLBuilder {
	b := &OLBuilder{}
	b.cfg.primeAtZero = true
	return b
}

// SampleRate sets the stream's sample rate in Hz. Required.
func (b *OLBuilder) SampleRate(hz float64) *OLBuilder { b.cfg.sampleRate = hz; return b }

// FrameLen sets N, the analysis window length in samples. Required.
func (b *OLBuilder) FrameLen(n int) *OLBuilder { b.cfg.frameLen = n; return b }

// Hop sets H, the samples advanced between frames. Required, and must
// be strictly smaller than FrameLen.
func (b *OLBuilder) Hop(h int) *OLBuilder { b.cfg.hop = h; return b }

// Window sets the analysis window kernel; its length must equal
// FrameLen. If omitted, a Hamming window of length FrameLen is used.
func (b *OLBuilder) Window(win []float32) *OLBuilder { b.cfg.window = win; return b }

// PrimeAtZero controls whether the rolling buffer is preloaded with
// (N-1)/2 zeros at Reset/Build, aligning the first frame's window
// centre with the first real input sample. Defaults to true.
func (b *OLBuilder) PrimeAtZero(v bool) *OLBuilder { b.cfg.primeAtZero = v; return b }

// ExtraSkip adds to the number of leading samples the engine reports
// as still-priming via status.PaddingStart, beyond the PrimeAtZero
// default.
func (b *OLBuilder) ExtraSkip(n int) *OLBuilder { b.cfg.extraSkip = n; return b }

// ExtraFlush adds n extra samples to the budget Flush drains before
// declaring the engine finished, beyond the buffered rolling content.
func (b *OLBuilder) ExtraFlush(n int) *OLBuilder { b.cfg.extraFlush = n; return b }

// Transform sets the per-frame analysis callback. Required.
func (b *OLBuilder) Transform(t OLProcessor) *OLBuilder { b.transform = t; return b }

// Build validates the configuration and allocates the OL engine. No
// allocation happens again for the engine's lifetime.
func (b *OLBuilder) Build() (*OL, error) {
	if err := b.cfg.validate(); err != nil {
		return nil, err
	}
	if b.transform == nil {
		return nil, ErrMissingTransform
	}

	o := &OL{
		sampleRate:  b.cfg.sampleRate,
		frameLen:    b.cfg.frameLen,
		hop:         b.cfg.hop,
		window:      b.cfg.resolvedWindow(),
		primeAtZero: b.cfg.primeAtZero,
		extraSkip:   b.cfg.extraSkip,
		extraFlush:  b.cfg.extraFlush,
		transform:   b.transform,
		rolling:     ring.New(b.cfg.frameLen),
		frameIn:     make([]float32, b.cfg.frameLen),
	}
	o.Reset()
	return o, nil
}

// OLABuilder builds an overlap-add synthesis engine. PrimeAtZero
// defaults to true and OutputCapacity defaults to 4*FrameLen if never
// set explicitly, generous enough to absorb a few hops of producer/
// consumer jitter without the caller needing to size it by hand.
type OLABuilder struct {
	cfg         commonConfig
	outCapacity int
	transform   Transform
}

// NewOLABuilder returns a builder with PrimeAtZero enabled by default.
func NewOLABuilder() *OLABuilder {
	b := &OLABuilder{}
	b.cfg.primeAtZero = true
	return b
}

// SampleRate sets the stream's sample rate in Hz. Required.
func (b *OLABuilder) SampleRate(hz float64) *OLABuilder { b.cfg.sampleRate = hz; return b }

// FrameLen sets N, the synthesis window length in samples. Required.
func (b *OLABuilder) FrameLen(n int) *OLABuilder { b.cfg.frameLen = n; return b }

// Hop sets H, the samples advanced between frames. Required, and must
// be strictly smaller than FrameLen.
func (b *OLABuilder) Hop(h int) *OLABuilder { b.cfg.hop = h; return b }

// Window sets the synthesis window kernel; its length must equal
// FrameLen. If omitted, a Hamming window of length FrameLen is used.
func (b *OLABuilder) Window(win []float32) *OLABuilder { b.cfg.window = win; return b }

// PrimeAtZero controls whether the rolling buffer is preloaded with
// (N-1)/2 zeros at Reset/Build. Defaults to true.
func (b *OLABuilder) PrimeAtZero(v bool) *OLABuilder { b.cfg.primeAtZero = v; return b }

// ExtraSkip adds to the priming sample count reported via
// status.PaddingStart, beyond the PrimeAtZero default.
func (b *OLABuilder) ExtraSkip(n int) *OLABuilder { b.cfg.extraSkip = n; return b }

// ExtraFlush adds n extra samples to Flush's drain budget, beyond the
// buffered rolling content.
func (b *OLABuilder) ExtraFlush(n int) *OLABuilder { b.cfg.extraFlush = n; return b }

// OutputCapacity sets the output ring's fixed capacity in samples.
// Required to be positive if set; if never called, it defaults to
// 4*FrameLen at Build time.
func (b *OLABuilder) OutputCapacity(n int) *OLABuilder { b.outCapacity = n; return b }

// Transform sets the per-frame synthesis callback. Required.
func (b *OLABuilder) Transform(t Transform) *OLABuilder { b.transform = t; return b }

// Build validates the configuration and allocates the OLA engine. No
// allocation happens again for the engine's lifetime.
func (b *OLABuilder) Build() (*OLA, error) {
	if err := b.cfg.validate(); err != nil {
		return nil, err
	}
	if b.transform == nil {
		return nil, ErrMissingTransform
	}
	capOut := b.outCapacity
	if capOut == 0 {
		capOut = 4 * b.cfg.frameLen
	}
	if capOut <= 0 {
		return nil, ErrOutputCapacityRequired
	}

	e := newOLA(b.cfg, b.transform, capOut)
	e.Reset()
	return e, nil
}

func newOLA(cfg commonConfig, transform Transform, capOut int) *OLA {
	e := &OLA{
		sampleRate:         cfg.sampleRate,
		frameLen:           cfg.frameLen,
		hop:                cfg.hop,
		window:             cfg.resolvedWindow(),
		primeAtZero:        cfg.primeAtZero,
		extraSkip:          cfg.extraSkip,
		extraFlush:         cfg.extraFlush,
		transform:          transform,
		shouldEmit:         alwaysTrue,
		shouldConsume:      alwaysTrue,
		targetOutputLength: -1,
		maxRepeatsPerHop:   64,
		rolling:            ring.New(cfg.frameLen),
		accumSig:           ring.New(cfg.frameLen),
		accumWin:           ring.New(cfg.frameLen),
		out:                ring.New(capOut),
		frameIn:            make([]float32, cfg.frameLen),
		frameOut:           make([]float32, cfg.frameLen),
	}
	return e
}

// DecoupledOLABuilder builds a Decoupled engine: an OLA engine whose
// input-consumption and output-emission decisions are independently
// gated, for time-stretch use. Defaults match OLABuilder; ShouldEmit
// and ShouldConsume default to always true, i.e. behaviourally
// identical to a plain OLA engine until overridden.
type DecoupledOLABuilder struct {
	cfg                commonConfig
	outCapacity        int
	transform          Transform
	shouldEmit         emitHook
	shouldConsume      emitHook
	targetOutputLength int64
	maxRepeatsPerHop   int
}

// NewDecoupledOLABuilder returns a builder with PrimeAtZero enabled by
// default and an unlimited target output length.
func NewDecoupledOLABuilder() *DecoupledOLABuilder {
	b := &DecoupledOLABuilder{targetOutputLength: -1, maxRepeatsPerHop: 64}
	b.cfg.primeAtZero = true
	return b
}

// SampleRate sets the stream's sample rate in Hz. Required.
func (b *DecoupledOLABuilder) SampleRate(hz float64) *DecoupledOLABuilder {
	b.cfg.sampleRate = hz
	return b
}

// FrameLen sets N, the synthesis window length in samples. Required.
func (b *DecoupledOLABuilder) FrameLen(n int) *DecoupledOLABuilder { b.cfg.frameLen = n; return b }

// Hop sets H, the samples advanced between frames. Required, and must
// be strictly smaller than FrameLen.
func (b *DecoupledOLABuilder) Hop(h int) *DecoupledOLABuilder { b.cfg.hop = h; return b }

// Window sets the synthesis window kernel; its length must equal
// FrameLen.
func (b *DecoupledOLABuilder) Window(win []float32) *DecoupledOLABuilder {
	b.cfg.window = win
	return b
}

// PrimeAtZero controls whether the rolling buffer is preloaded with
// (N-1)/2 zeros at Reset/Build. Defaults to true.
func (b *DecoupledOLABuilder) PrimeAtZero(v bool) *DecoupledOLABuilder {
	b.cfg.primeAtZero = v
	return b
}

// ExtraSkip adds to the priming sample count reported via
// status.PaddingStart, beyond the PrimeAtZero default.
func (b *DecoupledOLABuilder) ExtraSkip(n int) *DecoupledOLABuilder { b.cfg.extraSkip = n; return b }

// ExtraFlush adds n extra samples to Flush's drain budget.
func (b *DecoupledOLABuilder) ExtraFlush(n int) *DecoupledOLABuilder { b.cfg.extraFlush = n; return b }

// OutputCapacity sets the output ring's fixed capacity in samples. If
// never called, defaults to 4*FrameLen at Build time.
func (b *DecoupledOLABuilder) OutputCapacity(n int) *DecoupledOLABuilder {
	b.outCapacity = n
	return b
}

// Transform sets the per-frame synthesis callback. Required.
func (b *DecoupledOLABuilder) Transform(t Transform) *DecoupledOLABuilder {
	b.transform = t
	return b
}

// ShouldEmit sets the hook deciding, per hop, whether the engine
// finalises and writes output this iteration. Skipping emission
// (speed-up) still advances input consumption.
func (b *DecoupledOLABuilder) ShouldEmit(hook func(Status) bool) *DecoupledOLABuilder {
	b.shouldEmit = hook
	return b
}

// ShouldConsume sets the hook deciding, per hop, whether the engine
// advances its input window. Declining (slow-down) re-offers the same
// window content on the next hop, up to MaxRepeatsPerHop times.
func (b *DecoupledOLABuilder) ShouldConsume(hook func(Status) bool) *DecoupledOLABuilder {
	b.shouldConsume = hook
	return b
}

// TargetOutputLength bounds the total number of samples the engine
// will ever emit across its lifetime; once reached, emission is
// silently suppressed regardless of ShouldEmit. A negative value (the
// default) means unlimited.
func (b *DecoupledOLABuilder) TargetOutputLength(n int64) *DecoupledOLABuilder {
	b.targetOutputLength = n
	return b
}

// MaxRepeatsPerHop bounds how many times ShouldConsume may decline in a
// row for a single Process/Flush call before the engine gives up and
// advances anyway, guarding against a hook that never lets go. Defaults
// to 64.
func (b *DecoupledOLABuilder) MaxRepeatsPerHop(n int) *DecoupledOLABuilder {
	b.maxRepeatsPerHop = n
	return b
}

// Build validates the configuration and allocates the Decoupled engine.
func (b *DecoupledOLABuilder) Build() (*Decoupled, error) {
	if err := b.cfg.validate(); err != nil {
		return nil, err
	}
	if b.transform == nil {
		return nil, ErrMissingTransform
	}
	capOut := b.outCapacity
	if capOut == 0 {
		capOut = 4 * b.cfg.frameLen
	}
	if capOut <= 0 {
		return nil, ErrOutputCapacityRequired
	}

	e := newOLA(b.cfg, b.transform, capOut)
	e.targetOutputLength = b.targetOutputLength
	e.maxRepeatsPerHop = b.maxRepeatsPerHop
	if b.shouldEmit != nil {
		e.shouldEmit = b.shouldEmit
	}
	if b.shouldConsume != nil {
		e.shouldConsume = b.shouldConsume
	}
	e.Reset()
	return &Decoupled{OLA: e}, nil
}
