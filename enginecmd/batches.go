// SPDX-License-Identifier: EPL-2.0

// Package enginecmd adapts an audio.Source to the engine package's
// batch-based Process/Push calls, so any of the teacher's format
// decoders can drive an engine without a caller hand-rolling the read
// loop.
package enginecmd

import (
	"errors"
	"io"

	"github.com/ik5/frameola/audio"
	"github.com/ik5/frameola/engine"
)

// Processor is the subset of *engine.OLA (and *engine.Decoupled, which
// embeds it) that SourceToRingBatches needs to drive.
type Processor interface {
	Process(batch []float32) int
	Flush(chunkMax int) int
	FetchAvailable() int
	Fetch(dst []float32) int
}

// SourceToRingBatches reads src in fixed-size chunks of n samples,
// feeding each chunk to e.Process and draining whatever output becomes
// available after every chunk, then flushes e to completion. It
// returns every sample the engine produced, concatenated in order.
func SourceToRingBatches(src audio.Source, e Processor, n int) (engine.Batch, error) {
	if n <= 0 {
		return nil, errors.New("enginecmd: chunk size must be positive")
	}

	var out engine.Batch
	chunk := make([]float32, n)
	drain := make([]float32, n)

	for {
		read, err := src.ReadSamples(chunk)
		if read > 0 {
			e.Process(chunk[:read])
			out = drainAvailable(e, out, drain)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return out, err
		}
	}

	for e.Flush(n) > 0 {
		out = drainAvailable(e, out, drain)
	}
	out = drainAvailable(e, out, drain)

	return out, nil
}

func drainAvailable(e Processor, out engine.Batch, scratch []float32) engine.Batch {
	for e.FetchAvailable() > 0 {
		got := e.Fetch(scratch)
		if got == 0 {
			break
		}
		out = append(out, scratch[:got]...)
	}
	return out
}
