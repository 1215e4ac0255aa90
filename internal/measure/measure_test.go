package measure_test

import (
	"errors"
	"math"
	"testing"

	"github.com/cheavireak/Mastering-Enhancement-Pipeline/internal/measure"
	"github.com/cheavireak/Mastering-Enhancement-Pipeline/internal/types"
)

const sampleRate = 44100

func toneBuffer(channels, frames int, freq, amplitude float64) *types.AudioBuffer {
	buf := &types.AudioBuffer{
		SampleRate: sampleRate,
		Depth:      types.Depth16,
		Samples:    make([][]float64, channels),
	}

	for ch := range buf.Samples {
		buf.Samples[ch] = make([]float64, frames)
		for i := range frames {
			buf.Samples[ch][i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
		}
	}

	return buf
}

func squareBuffer(channels, frames int, freq, amplitude float64) *types.AudioBuffer {
	buf := toneBuffer(channels, frames, freq, 1)

	for ch := range buf.Samples {
		for i := range buf.Samples[ch] {
			if buf.Samples[ch][i] >= 0 {
				buf.Samples[ch][i] = amplitude
			} else {
				buf.Samples[ch][i] = -amplitude
			}
		}
	}

	return buf
}

func TestClippingDetectsFlatTops(t *testing.T) {
	t.Parallel()

	clipped := squareBuffer(1, sampleRate, 100, 1.0)

	info := measure.Clipping(clipped)
	if info.Events == 0 {
		t.Fatal("full-scale square wave not flagged as clipping")
	}

	clean := toneBuffer(1, sampleRate, 100, 0.9)

	if info := measure.Clipping(clean); info.Events != 0 {
		t.Fatalf("clean sine flagged with %d clipping events", info.Events)
	}
}

func TestClippingIgnoresIsolatedPeaks(t *testing.T) {
	t.Parallel()

	buf := toneBuffer(1, 1024, 100, 0.5)
	// A single full-scale sample is a legitimate peak.
	buf.Samples[0][500] = 1.0

	if info := measure.Clipping(buf); info.Events != 0 {
		t.Fatalf("isolated peak flagged with %d events", info.Events)
	}
}

func TestLoudnessRanksLevels(t *testing.T) {
	t.Parallel()

	loud := measure.Loudness(toneBuffer(1, sampleRate*5, 1000, 0.5))
	quiet := measure.Loudness(toneBuffer(1, sampleRate*5, 1000, 0.01))

	if loud.IntegratedLUFS <= quiet.IntegratedLUFS {
		t.Fatalf("loud %v LUFS not above quiet %v LUFS", loud.IntegratedLUFS, quiet.IntegratedLUFS)
	}

	// -6 dBFS 1 kHz sine sits in the rough vicinity of -9 LUFS.
	if loud.IntegratedLUFS > 0 || loud.IntegratedLUFS < -20 {
		t.Errorf("loud tone at %v LUFS, expected between -20 and 0", loud.IntegratedLUFS)
	}
}

func TestTruePeakAtLeastSamplePeak(t *testing.T) {
	t.Parallel()

	info := measure.TruePeak(toneBuffer(1, sampleRate, 997, 0.5))

	if info.TruePeakDb < info.SamplePeakDb-0.1 {
		t.Fatalf("true peak %v dB below sample peak %v dB", info.TruePeakDb, info.SamplePeakDb)
	}

	// -6 dBFS amplitude.
	if math.Abs(info.SamplePeakDb - -6.02) > 0.2 {
		t.Errorf("sample peak %v dB, want about -6", info.SamplePeakDb)
	}
}

func TestStereoCorrelation(t *testing.T) {
	t.Parallel()

	mono := toneBuffer(2, sampleRate, 440, 0.5)

	if info := measure.Stereo(mono); info.Correlation < 0.99 {
		t.Errorf("identical channels: correlation %v, want ~1", info.Correlation)
	}

	inverted := toneBuffer(2, sampleRate, 440, 0.5)
	for i := range inverted.Samples[1] {
		inverted.Samples[1][i] = -inverted.Samples[1][i]
	}

	if info := measure.Stereo(inverted); info.Correlation > -0.99 {
		t.Errorf("inverted channels: correlation %v, want ~-1", info.Correlation)
	}
}

func TestStereoImbalance(t *testing.T) {
	t.Parallel()

	buf := toneBuffer(2, sampleRate, 440, 0.5)
	for i := range buf.Samples[1] {
		buf.Samples[1][i] *= 0.5 // right 6 dB down
	}

	info := measure.Stereo(buf)
	if math.Abs(info.ImbalanceDb-6.02) > 0.2 {
		t.Fatalf("imbalance %v dB, want about +6 (left louder)", info.ImbalanceDb)
	}
}

func TestSpectralBassRatio(t *testing.T) {
	t.Parallel()

	bassHeavy := measure.Spectral(toneBuffer(1, sampleRate*3, 60, 0.5))
	bright := measure.Spectral(toneBuffer(1, sampleRate*3, 5000, 0.5))

	if bassHeavy.BassRatio < 0.8 {
		t.Errorf("60 Hz tone: bass ratio %v, want dominant", bassHeavy.BassRatio)
	}

	if bright.BassRatio > 0.2 {
		t.Errorf("5 kHz tone: bass ratio %v, want small", bright.BassRatio)
	}
}

func TestAnalyzeSquareWaveReport(t *testing.T) {
	t.Parallel()

	analysis, err := measure.Analyze(squareBuffer(2, sampleRate*5, 100, 1.0))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if !analysis.Clipping {
		t.Error("clipping not reported")
	}

	if len(analysis.Issues) == 0 || len(analysis.Fixes) == 0 {
		t.Error("clipped material produced no issues or fixes")
	}

	if analysis.DynamicRange > 6 {
		t.Errorf("square wave dynamic range %v, want crushed", analysis.DynamicRange)
	}
}

func TestAnalyzeCleanToneReport(t *testing.T) {
	t.Parallel()

	analysis, err := measure.Analyze(toneBuffer(2, sampleRate*5, 1000, 0.25))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if analysis.Clipping {
		t.Error("clean tone reported as clipping")
	}

	if analysis.TruePeakDb > -1 {
		t.Errorf("true peak %v dB for a -12 dBFS tone", analysis.TruePeakDb)
	}
}

func TestAnalyzeRejectsMalformedBuffer(t *testing.T) {
	t.Parallel()

	_, err := measure.Analyze(&types.AudioBuffer{SampleRate: sampleRate})
	if !errors.Is(err, types.ErrAnalysis) {
		t.Fatalf("error %v, want analysis failure", err)
	}
}

func TestAnalyzeToleratesSubAudioSampleRates(t *testing.T) {
	t.Parallel()

	buf := &types.AudioBuffer{
		SampleRate: 8,
		Depth:      types.Depth16,
		Samples:    [][]float64{make([]float64, 16)},
	}

	analysis, err := measure.Analyze(buf)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if analysis.Clipping {
		t.Error("silence reported as clipping")
	}
}
