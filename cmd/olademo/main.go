// SPDX-License-Identifier: EPL-2.0

// Command olademo decodes an audio file, resamples and mono-mixes it,
// runs it through an engine.OLA with a pass-through transform, and
// writes the reconstructed signal back out as a 16-bit PCM WAV file.
// It is demo glue exercising the decode/resample pipeline and the
// engine together, grounded on the teacher's examples/resampler/main.go.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ik5/frameola/audio"
	"github.com/ik5/frameola/engine"
	"github.com/ik5/frameola/enginecmd"
	"github.com/ik5/frameola/formats/mp3"
	"github.com/ik5/frameola/formats/vorbis"
	"github.com/ik5/frameola/formats/wav"
	"github.com/ik5/frameola/utils"
	"github.com/ik5/frameola/window"
)

const (
	targetRate = 8000
	frameLen   = 1024
	hop        = 256
	chunkSize  = 4096
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("usage: olademo <input.{wav|mp3|ogg}> <output.wav>")
		os.Exit(1)
	}
	inPath := os.Args[1]
	outPath := os.Args[2]

	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})

	ext := filepath.Ext(inPath)
	if len(ext) > 0 {
		ext = ext[1:]
	}
	dec, ok := reg.Get(ext)
	if !ok {
		fmt.Println("unsupported format:", ext)
		os.Exit(1)
	}

	inFile, err := os.Open(inPath)
	if err != nil {
		panic(err)
	}
	defer inFile.Close()

	src, err := dec.Decode(inFile)
	if err != nil {
		panic(err)
	}
	defer src.Close()

	res := audio.NewResampler(src, targetRate)
	mono := audio.NewMonoMixer(res)

	e, err := engine.NewOLABuilder().
		SampleRate(targetRate).
		FrameLen(frameLen).
		Hop(hop).
		Window(window.Hamming(frameLen)).
		Transform(engine.Passthrough).
		OutputCapacity(8 * frameLen).
		Build()
	if err != nil {
		panic(err)
	}

	reconstructed, err := enginecmd.SourceToRingBatches(mono, e, chunkSize)
	if err != nil {
		panic(err)
	}

	pcm16 := make([]int16, len(reconstructed))
	for i, v := range reconstructed {
		pcm16[i] = utils.Float32ToInt16(v)
	}

	outFile, err := os.Create(outPath)
	if err != nil {
		panic(err)
	}
	defer outFile.Close()

	if err := wav.WriteWAV16(outFile, targetRate, pcm16); err != nil {
		panic(err)
	}

	fmt.Printf("Wrote %s: %d samples at %d Hz, %d imperfect-reconstruction samples, %d overflows\n",
		outPath, len(pcm16), targetRate, e.Failures().ImperfectReconstruction, e.Failures().OutputOverflows)
}
