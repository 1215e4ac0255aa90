package measure

import (
	"math"

	"github.com/cheavireak/Mastering-Enhancement-Pipeline/internal/types"
)

// ClippingInfo summarizes digital-full-scale runs across all channels.
type ClippingInfo struct {
	Events         uint64
	ClippedSamples uint64
	LongestRun     uint64
}

// fullScale is the normalized magnitude of the largest positive code at a bit
// depth, minus a small tolerance for rounding through float conversion.
func fullScale(depth types.BitDepth) float64 {
	switch depth {
	case types.Depth16:
		return 32766.5 / 32768.0
	case types.Depth24:
		return 8388606.5 / 8388608.0
	case types.Depth32:
		return 2147483646.5 / 2147483648.0
	}

	return 0.99995
}

// Clipping detects flat-topped waveforms: two or more consecutive samples
// pinned at digital full scale on the same channel count as one event.
// Isolated single full-scale samples are legitimate peaks, not clipping.
func Clipping(buf *types.AudioBuffer) ClippingInfo {
	threshold := fullScale(buf.Depth)
	frames := buf.Frames()

	var info ClippingInfo

	for ch := range buf.Channels() {
		var run uint64

		flush := func() {
			if run >= 2 {
				info.Events++
				info.ClippedSamples += run

				if run > info.LongestRun {
					info.LongestRun = run
				}
			}

			run = 0
		}

		for i := range frames {
			if math.Abs(buf.Samples[ch][i]) >= threshold {
				run++
			} else {
				flush()
			}
		}

		flush()
	}

	return info
}
