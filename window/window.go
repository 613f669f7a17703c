// SPDX-License-Identifier: EPL-2.0

// Package window generates the analysis/synthesis window kernels consumed
// by the engine package. Window generation is pure arithmetic — grounded
// on original_source/phaseshift/sigproc/window_functions.h — and, like the
// teacher's own utils.CubicInterpolate, is hand-rolled rather than pulled
// from a third-party DSP dependency: no library in the example corpus
// exposes these exact shapes, and the formulas are a handful of lines each.
package window

import "math"

// Hamming returns a length-n Hamming window, normalised so its values sum
// to 1. Endpoints are non-zero, which is why it is the engine's default:
// it avoids the division-by-zero boundary the OLA normaliser would
// otherwise hit, and gives a near-constant envelope under hop <= n/2.
func Hamming(n int) []float32 {
	return raisedCosine(n, 25.0/46.0)
}

// Hann returns a length-n Hann window, normalised so its values sum to 1.
// Endpoints are zero.
func Hann(n int) []float32 {
	return raisedCosine(n, 0.5)
}

func raisedCosine(n int, a0 float64) []float32 {
	win := make([]float32, n)
	if n <= 1 {
		if n == 1 {
			win[0] = 1
		}
		return win
	}
	var sum float64
	for i := 0; i < n; i++ {
		v := a0 - (1-a0)*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		win[i] = float32(v)
		sum += v
	}
	normalize(win, sum)
	return win
}

// Blackman returns a length-n Blackman window, normalised so its values
// sum to 1.
func Blackman(n int) []float32 {
	win := make([]float32, n)
	if n <= 1 {
		if n == 1 {
			win[0] = 1
		}
		return win
	}
	const a = 0.16
	a0 := (1 - a) * 0.5
	var sum float64
	for i := 0; i < n; i++ {
		v := a0 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1)) + 0.5*a*math.Cos(4*math.Pi*float64(i)/float64(n-1))
		win[i] = float32(v)
		sum += v
	}
	normalize(win, sum)
	return win
}

// Gaussian returns a length-n Gaussian window with the given sigma
// (relative to half the window length), normalised so its values sum
// to 1.
func Gaussian(n int, sigma float64) []float32 {
	win := make([]float32, n)
	if n <= 1 {
		if n == 1 {
			win[0] = 1
		}
		return win
	}
	if sigma <= 0 {
		sigma = 0.5
	}
	half := float64(n) / 2
	var sum float64
	for i := 0; i < n; i++ {
		d := (float64(i) - half) / (sigma * half)
		v := math.Exp(-0.5 * d * d)
		win[i] = float32(v)
		sum += v
	}
	normalize(win, sum)
	return win
}

// Kaiser returns a length-n Kaiser window with shape parameter beta,
// normalised so its values sum to 1. beta trades main-lobe width for
// side-lobe suppression; beta=0 degenerates to a rectangular window,
// beta around 6-9 approximates Blackman/Hann-like shapes.
func Kaiser(n int, beta float64) []float32 {
	win := make([]float32, n)
	if n <= 1 {
		if n == 1 {
			win[0] = 1
		}
		return win
	}
	denom := besselI0(beta)
	half := float64(n-1) / 2
	var sum float64
	for i := 0; i < n; i++ {
		d := (float64(i) - half) / half
		v := besselI0(beta*math.Sqrt(1-d*d)) / denom
		win[i] = float32(v)
		sum += v
	}
	normalize(win, sum)
	return win
}

// besselI0 evaluates the zeroth-order modified Bessel function of the
// first kind via its power series, truncated once a term stops moving
// the sum. Good to float64 precision for the beta range windows use.
func besselI0(x float64) float64 {
	sum := 1.0
	term := 1.0
	halfX := x / 2
	for k := 1; k < 64; k++ {
		term *= (halfX / float64(k))
		term *= halfX
		sum += term
		if term < sum*1e-18 {
			break
		}
	}
	return sum
}

func normalize(win []float32, sum float64) {
	if sum == 0 {
		return
	}
	inv := float32(1.0 / sum)
	for i := range win {
		win[i] *= inv
	}
}
