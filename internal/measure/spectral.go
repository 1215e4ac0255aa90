package measure

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/cheavireak/Mastering-Enhancement-Pipeline/internal/types"
)

const (
	defaultFFTSize = 8192
	windowsMax     = 100
)

// SpectralInfo summarizes the average magnitude spectrum of a buffer.
type SpectralInfo struct {
	// BassRatio is the share of energy below 150 Hz.
	BassRatio float64

	// Brickwall reports a hard spectral cutoff well below Nyquist, with the
	// cutoff frequency in CutoffHz. Band-limited synthesis and lossy
	// transcodes both leave this signature.
	Brickwall bool
	CutoffHz  float64
}

// Spectral runs windowed FFTs over a mono mixdown and derives spectral
// balance and authenticity measurements. Buffers shorter than one FFT window
// report zero values.
func Spectral(buf *types.AudioBuffer) SpectralInfo {
	samples := monoMix(buf)

	fftSize := defaultFFTSize
	if len(samples) < fftSize {
		return SpectralInfo{}
	}

	positions := windowPositions(len(samples), fftSize, windowsMax)
	window := hannWindow(fftSize)
	binCount := fftSize/2 + 1
	magnitudeSum := make([]float64, binCount)
	fft := fourier.NewFFT(fftSize)
	fftIn := make([]float64, fftSize)

	for _, pos := range positions {
		for i := range fftSize {
			fftIn[i] = samples[pos+i] * window[i]
		}

		coeffs := fft.Coefficients(nil, fftIn)
		for i, c := range coeffs {
			magnitudeSum[i] += math.Sqrt(real(c)*real(c) + imag(c)*imag(c))
		}
	}

	avgMagnitude := make([]float64, binCount)
	for i := range avgMagnitude {
		avgMagnitude[i] = magnitudeSum[i] / float64(len(positions))
	}

	binHz := float64(buf.SampleRate) / float64(fftSize)
	nyquist := float64(buf.SampleRate) / 2

	info := SpectralInfo{
		BassRatio: bassRatio(avgMagnitude, binHz),
	}

	info.Brickwall, info.CutoffHz = detectBrickwall(avgMagnitude, binHz, nyquist)

	return info
}

func monoMix(buf *types.AudioBuffer) []float64 {
	frames := buf.Frames()
	numChannels := buf.Channels()
	mix := make([]float64, frames)

	for i := range frames {
		var sum float64
		for ch := range numChannels {
			sum += buf.Samples[ch][i]
		}

		mix[i] = sum / float64(numChannels)
	}

	return mix
}

// windowPositions spreads up to maxWindows FFT windows evenly over the
// material.
func windowPositions(totalSamples, fftSize, maxWindows int) []int {
	available := totalSamples - fftSize
	if available < 0 {
		return nil
	}

	count := min(available/fftSize+1, maxWindows)
	if count <= 1 {
		return []int{0}
	}

	positions := make([]int, count)
	for i := range count {
		positions[i] = available * i / (count - 1)
	}

	return positions
}

func hannWindow(size int) []float64 {
	window := make([]float64, size)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
	}

	return window
}

// bassRatio is the energy below 150 Hz over the energy above 20 Hz.
func bassRatio(magnitude []float64, binHz float64) float64 {
	lowStart := int(20 / binHz)
	lowEnd := int(150 / binHz)

	var lowEnergy, totalEnergy float64

	for i := lowStart; i < len(magnitude); i++ {
		energy := magnitude[i] * magnitude[i]
		totalEnergy += energy

		if i < lowEnd {
			lowEnergy += energy
		}
	}

	if totalEnergy == 0 {
		return 0
	}

	return lowEnergy / totalEnergy
}

// detectBrickwall scans the top of the spectrum for a sharp sustained cliff:
// a drop of 30 dB or more against the 1-10 kHz reference that never recovers.
// Real wideband material rolls off gently all the way to Nyquist.
func detectBrickwall(magnitude []float64, binHz, nyquist float64) (bool, float64) {
	magDb := make([]float64, len(magnitude))
	for i, m := range magnitude {
		if m > 0 {
			magDb[i] = 20 * math.Log10(m)
		} else {
			magDb[i] = -120
		}
	}

	refLevel := bandAverageDb(magDb, 1000, 10000, binHz)
	if refLevel <= -120 {
		return false, 0
	}

	// Only a cutoff below 90% of Nyquist is suspicious; normal converters
	// roll off right at the band edge.
	scanStart := int(4000 / binHz)
	scanEnd := int(nyquist * 0.9 / binHz)

	if scanEnd <= scanStart || scanEnd > len(magDb) {
		return false, 0
	}

	for bin := scanStart; bin < scanEnd; bin++ {
		if magDb[bin]-refLevel > -30 {
			continue
		}

		// Everything above must stay dead; a recovery means it was a notch.
		dead := true

		for i := bin; i < len(magDb); i++ {
			if magDb[i]-refLevel > -25 {
				dead = false

				break
			}
		}

		if dead {
			return true, float64(bin) * binHz
		}
	}

	return false, 0
}

func bandAverageDb(magDb []float64, lowHz, highHz, binHz float64) float64 {
	start := int(lowHz / binHz)
	end := min(int(highHz/binHz), len(magDb))

	if end <= start {
		return -120
	}

	var sum float64
	for i := start; i < end; i++ {
		sum += magDb[i]
	}

	return sum / float64(end-start)
}
