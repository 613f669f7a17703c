// SPDX-License-Identifier: EPL-2.0

// Package frameola provides the high-level audio pipeline around the
// frame-based streaming engines in the engine subpackage.
//
// frameola segments a sample stream into overlapping windows, hands
// each frame to a caller-supplied transform, and (for the OLA and
// Decoupled engines) reconstructs an output stream via overlap-add.
// This package ties that core to the audio decode/resample pipeline
// kept from the rest of the module, so a file on disk can be turned
// into frames without hand-wiring a decoder, resampler and mono mixer
// every time.
//
// # Supported Formats
//
// The package supports decoding the following audio formats:
//   - WAV (PCM 16-bit) via formats/wav
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//   - AIFF (PCM 16-bit) via formats/aiff
//
// # Quick Start
//
// The simplest way to get a decoded file into mono float32 samples
// ready for an engine is ResampleToMono16, for callers that want
// fixed-point PCM, or the lower-level audio.NewResampler/NewMonoMixer
// pipeline feeding engine.OLA.Process directly:
//
//	// Decode an audio file
//	decoder := wav.Decoder{}
//	file, _ := os.Open("audio.wav")
//	src, _ := decoder.Decode(file)
//
//	// Resample to 8kHz mono, 16-bit PCM
//	samples, rate, _ := frameola.ResampleToMono16(src, 8000, 4096)
//
//	// samples is now []int16 at 8kHz mono
//
// # Frame Engines
//
// See the engine subpackage for OL (analysis-only), OLA (overlap-add
// synthesis) and Decoupled (time-stretch) — the three frame-based
// controllers this module is built around:
//
//	e, _ := engine.NewOLABuilder().
//		SampleRate(8000).FrameLen(256).Hop(64).
//		Window(window.Hann(256)).
//		Transform(engine.Passthrough).
//		Build()
//	out := make([]float32, len(samplesFloat))
//	n := e.ProcessOffline(samplesFloat, out)
//
// # Audio Processing Pipeline
//
// For more control, you can build custom audio processing pipelines using the
// audio subpackage:
//
//	// Create a resampler
//	resampler := audio.NewResampler(source, 16000)
//
//	// Convert to mono
//	mono := audio.NewMonoMixer(resampler)
//
//	// Read samples
//	buf := make([]float32, 4096)
//	n, err := mono.ReadSamples(buf)
//
// # Format Decoders
//
// Each format has its own decoder:
//
//	// WAV
//	wavDecoder := wav.Decoder{}
//	src, _ := wavDecoder.Decode(reader)
//
//	// MP3
//	mp3Decoder := mp3.Decoder{}
//	src, _ := mp3Decoder.Decode(reader)
//
//	// Vorbis
//	vorbisDecoder := vorbis.Decoder{}
//	src, _ := vorbisDecoder.Decode(reader)
//
//	// AIFF
//	aiffDecoder := aiff.Decoder{}
//	src, _ := aiffDecoder.Decode(reader)
//
// All decoders return an audio.Source interface which can be used with
// the audio processing functions.
//
// # Writing WAV Files
//
// The package can write PCM WAV files:
//
//	samples := []int16{100, -100, 200, -200}
//	file, _ := os.Create("output.wav")
//	wav.WriteWAV16(file, 8000, samples)
//
// # Performance
//
// The package is optimized for performance with minimal allocations:
//   - Resampling uses cubic interpolation for quality
//   - Buffer reuse minimizes GC pressure
//   - Batch conversions reduce per-sample overhead
//
// See the individual subpackages for more detailed documentation.
package frameola
