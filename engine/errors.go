// SPDX-License-Identifier: EPL-2.0

package engine

import "errors"

// Build-time configuration errors, returned by Builder.Build(). Runtime
// conditions (overflow, imperfect reconstruction) never produce an error
// value — they are tallied in Failures instead; see the package doc.
var (
	ErrInvalidSampleRate      = errors.New("engine: sample rate must be positive")
	ErrInvalidFrameLen        = errors.New("engine: frame length must be at least 2")
	ErrInvalidHop             = errors.New("engine: hop must be positive")
	ErrHopNotLessThanFrameLen = errors.New("engine: hop must be smaller than frame length")
	ErrWindowLengthMismatch   = errors.New("engine: window length must equal frame length")
	ErrOutputCapacityRequired = errors.New("engine: output capacity must be positive")
	ErrNegativeExtra          = errors.New("engine: extra skip/flush counts must be >= 0")
	ErrMissingTransform       = errors.New("engine: Transform must be set before Build")
)
