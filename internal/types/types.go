//nolint:staticcheck // too dumb on Db vs. DB
package types

import "errors"

type BitDepth uint

const (
	Depth16 BitDepth = 16
	Depth24 BitDepth = 24
	Depth32 BitDepth = 32
)

// PCMFormat describes the sample layout of encoded PCM data.
type PCMFormat struct {
	SampleRate int
	BitDepth   BitDepth
	Channels   uint
}

// Domain error taxonomy. Each is fatal to a single file only; the batch
// orchestrator records them per file and keeps going.
var (
	ErrDecode   = errors.New("decode failure")
	ErrRender   = errors.New("render failure")
	ErrAnalysis = errors.New("analysis failure")
)

// AudioBuffer is a decoded PCM buffer: planar float64 samples normalized to
// [-1, 1], one slice per channel, all channels the same length.
// Depth records the source bit depth so encoding can preserve it.
type AudioBuffer struct {
	SampleRate int
	Depth      BitDepth
	Samples    [][]float64
}

// Channels returns the channel count.
func (b *AudioBuffer) Channels() int {
	return len(b.Samples)
}

// Frames returns the per-channel sample count.
func (b *AudioBuffer) Frames() int {
	if len(b.Samples) == 0 {
		return 0
	}

	return len(b.Samples[0])
}

// Clone returns a deep copy sharing no sample storage with the receiver.
func (b *AudioBuffer) Clone() *AudioBuffer {
	out := &AudioBuffer{
		SampleRate: b.SampleRate,
		Depth:      b.Depth,
		Samples:    make([][]float64, len(b.Samples)),
	}

	for ch := range b.Samples {
		out.Samples[ch] = make([]float64, len(b.Samples[ch]))
		copy(out.Samples[ch], b.Samples[ch])
	}

	return out
}

// Valid reports whether the buffer is well-formed: a positive sample rate,
// at least one channel, and equal-length channel slices.
func (b *AudioBuffer) Valid() bool {
	if b == nil || b.SampleRate <= 0 || len(b.Samples) == 0 {
		return false
	}

	frames := len(b.Samples[0])
	for _, ch := range b.Samples {
		if len(ch) != frames {
			return false
		}
	}

	return true
}

// TrackFile is an opaque input handle: a stable identity, a byte size known
// up front, and raw bytes fetched on demand.
type TrackFile struct {
	Name string
	Size int64
	Read func() ([]byte, error)
}
