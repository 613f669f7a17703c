// SPDX-License-Identifier: EPL-2.0

package engine

// float32Eps is the machine epsilon for float32, used as the envelope
// threshold guard of spec §4.C (accum_win[n] >= 2*eps).
const float32Eps = 1.1920929e-07

// DebugAssertions, when set true, enables the finite/|x|<1000 sanity
// checks on emitted samples described in spec §4.C ("Debug builds
// additionally assert..."). It is off by default so release use never
// pays the cost or panics on a caller's pathological transform.
var DebugAssertions = false

func assertSaneSample(x float32) {
	if !DebugAssertions {
		return
	}
	if x != x { // NaN
		panic("engine: produced NaN sample")
	}
	if x > 1000 || x < -1000 {
		panic("engine: produced suspiciously large sample; did you forget to apply a window?")
	}
}
