// SPDX-License-Identifier: EPL-2.0

package engine_test

import (
	"sync"
	"testing"

	"github.com/ik5/frameola/engine"
	"github.com/ik5/frameola/window"
)

// TestConcurrentIndependentEngines drives 8 independently-owned engines
// from 8 goroutines, 100 iterations each, released together from a
// start barrier. Engines share no state (each goroutine builds and
// resets its own), so this exercises that the package holds no hidden
// global mutable state rather than testing any single engine's
// internal locking (there is none: engine values are documented as
// single-goroutine-owned).
func TestConcurrentIndependentEngines(t *testing.T) {
	t.Parallel()

	const (
		workers    = 8
		iterations = 100
		frameLen   = 256
		hop        = 64
		fs         = 16000
	)

	var start sync.WaitGroup
	start.Add(1)
	var ready, done sync.WaitGroup
	ready.Add(workers)
	done.Add(workers)

	for w := 0; w < workers; w++ {
		go func(id int) {
			defer done.Done()

			e, err := engine.NewOLABuilder().
				SampleRate(fs).
				FrameLen(frameLen).
				Hop(hop).
				Window(window.Hamming(frameLen)).
				Transform(engine.Passthrough).
				OutputCapacity(8 * frameLen).
				Build()
			if err != nil {
				t.Errorf("worker %d Build: %v", id, err)
				ready.Done()
				return
			}

			ready.Done()
			start.Wait()

			in := sineSignal(2000, 200+float64(id)*17, fs)
			out := make([]float32, len(in))
			for i := 0; i < iterations; i++ {
				e.Reset()
				n := e.ProcessOffline(in, out)
				if n != len(in) {
					t.Errorf("worker %d iteration %d: ProcessOffline returned %d, want %d", id, i, n, len(in))
					return
				}
			}
		}(w)
	}

	ready.Wait()
	start.Done()
	done.Wait()
}
