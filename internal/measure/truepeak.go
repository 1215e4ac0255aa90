package measure

import (
	"math"

	"github.com/cheavireak/Mastering-Enhancement-Pipeline/internal/types"
)

const (
	oversample   = 4 // per ITU-R BS.1770
	tapsPerPhase = 12
	totalTaps    = oversample * tapsPerPhase
)

// Polyphase interpolation coefficients for 4x oversampling, windowed sinc
// with a Kaiser window (beta=5), lowpass at the original Nyquist.
//
//nolint:gochecknoglobals // computed once, read-only afterwards
var polyphaseCoeffs [oversample][tapsPerPhase]float64

//nolint:gochecknoinits // filter bank generation
func init() {
	beta := 5.0

	for phase := range oversample {
		for tap := range tapsPerPhase {
			n := tap*oversample + phase
			center := float64(totalTaps-1) / 2.0

			x := float64(n) - center

			var sinc float64
			if math.Abs(x) < 1e-10 {
				sinc = 1.0
			} else {
				sinc = math.Sin(math.Pi*x/oversample) / (math.Pi * x / oversample)
			}

			alpha := (float64(n) - center) / center
			if math.Abs(alpha) <= 1.0 {
				window := bessel0(beta*math.Sqrt(1-alpha*alpha)) / bessel0(beta)
				polyphaseCoeffs[phase][tap] = sinc * window * oversample
			}
		}
	}

	for phase := range oversample {
		var sum float64
		for tap := range tapsPerPhase {
			sum += polyphaseCoeffs[phase][tap]
		}

		for tap := range tapsPerPhase {
			polyphaseCoeffs[phase][tap] /= sum
		}
	}
}

// bessel0 is the modified Bessel function of the first kind, order 0.
func bessel0(x float64) float64 {
	sum := 1.0
	term := 1.0

	for k := 1; k <= 25; k++ {
		term *= (x * x) / (4.0 * float64(k) * float64(k))
		sum += term

		if term < 1e-12 {
			break
		}
	}

	return sum
}

// TruePeakInfo reports inter-sample peak measurements.
type TruePeakInfo struct {
	TruePeakDb   float64
	SamplePeakDb float64
	ISPCount     uint64
}

// TruePeak estimates the inter-sample peak by 4x polyphase oversampling of
// every channel. ISPCount counts interpolated peaks above 0 dBFS.
func TruePeak(buf *types.AudioBuffer) TruePeakInfo {
	numChannels := buf.Channels()
	frames := buf.Frames()

	history := make([][]float64, numChannels)
	for ch := range history {
		history[ch] = make([]float64, tapsPerPhase)
	}

	var samplePeak, truePeak float64

	var ispCount uint64

	for i := range frames {
		for ch := range numChannels {
			sample := buf.Samples[ch][i]

			if abs := math.Abs(sample); abs > samplePeak {
				samplePeak = abs
			}

			copy(history[ch][0:], history[ch][1:])
			history[ch][tapsPerPhase-1] = sample

			for phase := range oversample {
				var interp float64
				for tap := range tapsPerPhase {
					interp += history[ch][tap] * polyphaseCoeffs[phase][tap]
				}

				if abs := math.Abs(interp); abs > truePeak {
					truePeak = abs
				}

				if math.Abs(interp) > 1.0 {
					ispCount++
				}
			}
		}
	}

	samplePeakDb := -120.0
	if samplePeak > 0 {
		samplePeakDb = 20 * math.Log10(samplePeak)
	}

	truePeakDb := -120.0
	if truePeak > 0 {
		truePeakDb = 20 * math.Log10(truePeak)
	}

	return TruePeakInfo{
		TruePeakDb:   truePeakDb,
		SamplePeakDb: samplePeakDb,
		ISPCount:     ispCount,
	}
}
