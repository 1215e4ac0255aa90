// Package biquad provides second-order IIR filter sections and the standard
// audio-cookbook designs used by the mastering chain.
package biquad

import "math"

const defaultQ = 0.7071 // Butterworth, maximally flat passband

// Coefficients of a normalized biquad section (a0 divided out).
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Section is one biquad with its delay-line state, transposed direct form II.
type Section struct {
	Coefficients

	z1, z2 float64
}

// ProcessSample filters one sample.
func (s *Section) ProcessSample(in float64) float64 {
	out := s.B0*in + s.z1
	s.z1 = s.B1*in - s.A1*out + s.z2
	s.z2 = s.B2*in - s.A2*out

	return out
}

// ProcessBlock filters a block in place.
func (s *Section) ProcessBlock(buf []float64) {
	for i, in := range buf {
		out := s.B0*in + s.z1
		s.z1 = s.B1*in - s.A1*out + s.z2
		s.z2 = s.B2*in - s.A2*out
		buf[i] = out
	}
}

// Reset clears the delay line.
func (s *Section) Reset() {
	s.z1 = 0
	s.z2 = 0
}

// HighPass designs a Butterworth high-pass at freq Hz.
func HighPass(sampleRate, freq float64) Coefficients {
	w0 := 2 * math.Pi * freq / sampleRate
	cosW := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * defaultQ)

	a0 := 1 + alpha

	return Coefficients{
		B0: (1 + cosW) / 2 / a0,
		B1: -(1 + cosW) / a0,
		B2: (1 + cosW) / 2 / a0,
		A1: -2 * cosW / a0,
		A2: (1 - alpha) / a0,
	}
}

// LowPass designs a Butterworth low-pass at freq Hz.
func LowPass(sampleRate, freq float64) Coefficients {
	w0 := 2 * math.Pi * freq / sampleRate
	cosW := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * defaultQ)

	a0 := 1 + alpha

	return Coefficients{
		B0: (1 - cosW) / 2 / a0,
		B1: (1 - cosW) / a0,
		B2: (1 - cosW) / 2 / a0,
		A1: -2 * cosW / a0,
		A2: (1 - alpha) / a0,
	}
}

// Peaking designs a peaking EQ at freq Hz with the given Q and gain in dB.
func Peaking(sampleRate, freq, q, gainDb float64) Coefficients {
	amp := math.Pow(10, gainDb/40)
	w0 := 2 * math.Pi * freq / sampleRate
	cosW := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	a0 := 1 + alpha/amp

	return Coefficients{
		B0: (1 + alpha*amp) / a0,
		B1: -2 * cosW / a0,
		B2: (1 - alpha*amp) / a0,
		A1: -2 * cosW / a0,
		A2: (1 - alpha/amp) / a0,
	}
}

// LowShelf designs a low shelf at freq Hz with the given gain in dB.
func LowShelf(sampleRate, freq, gainDb float64) Coefficients {
	amp := math.Pow(10, gainDb/40)
	w0 := 2 * math.Pi * freq / sampleRate
	cosW := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * defaultQ)
	sqA := 2 * math.Sqrt(amp) * alpha

	a0 := (amp + 1) + (amp-1)*cosW + sqA

	return Coefficients{
		B0: amp * ((amp + 1) - (amp-1)*cosW + sqA) / a0,
		B1: 2 * amp * ((amp - 1) - (amp+1)*cosW) / a0,
		B2: amp * ((amp + 1) - (amp-1)*cosW - sqA) / a0,
		A1: -2 * ((amp - 1) + (amp+1)*cosW) / a0,
		A2: ((amp + 1) + (amp-1)*cosW - sqA) / a0,
	}
}

// HighShelf designs a high shelf at freq Hz with the given gain in dB.
func HighShelf(sampleRate, freq, gainDb float64) Coefficients {
	amp := math.Pow(10, gainDb/40)
	w0 := 2 * math.Pi * freq / sampleRate
	cosW := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * defaultQ)
	sqA := 2 * math.Sqrt(amp) * alpha

	a0 := (amp + 1) - (amp-1)*cosW + sqA

	return Coefficients{
		B0: amp * ((amp + 1) + (amp-1)*cosW + sqA) / a0,
		B1: -2 * amp * ((amp - 1) + (amp+1)*cosW) / a0,
		B2: amp * ((amp + 1) + (amp-1)*cosW - sqA) / a0,
		A1: 2 * ((amp - 1) - (amp+1)*cosW) / a0,
		A2: ((amp + 1) - (amp-1)*cosW - sqA) / a0,
	}
}
