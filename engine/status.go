// SPDX-License-Identifier: EPL-2.0

package engine

// Status is the read-only snapshot handed to the per-frame transform
// callback and returned from failure introspection. It corresponds to
// the `status` record of spec §3.2 and the `proc_status` struct of
// phaseshift's ol.h/ola.h/ola_decoupled.h.
type Status struct {
	FirstFrame   bool
	LastFrame    bool
	PaddingStart bool
	PaddingEnd   bool
	Flushing     bool
	Finished     bool

	// WinCenterIn/WinCenterOut are the sample indices of the scheduled
	// input window centre and the emitted output window centre,
	// respectively, as of this frame.
	WinCenterIn  int64
	WinCenterOut int64
}

// Failures tallies the two runtime conditions that the engine tolerates
// rather than erroring on: samples emitted with an under-covered window
// envelope, and output the destination ring couldn't accept. Both are
// read via (*OLA).Failures/(*Decoupled is just OLA) as a value copy, so
// callers can't mutate engine-internal counters.
type Failures struct {
	ImperfectReconstruction int64
	OutputOverflows         int64
}

// OLStatus is the status record handed to an OL (analysis-only) frame
// callback. It has no output-side fields because OL never produces a
// reconstructed signal.
type OLStatus struct {
	FirstFrame   bool
	LastFrame    bool
	PaddingStart bool
	Flushing     bool
	WinCenterIn  int64
}
