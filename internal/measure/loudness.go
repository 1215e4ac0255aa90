package measure

import (
	"math"
	"sort"

	"github.com/cheavireak/Mastering-Enhancement-Pipeline/internal/dsp/biquad"
	"github.com/cheavireak/Mastering-Enhancement-Pipeline/internal/types"
)

// LoudnessInfo carries the loudness and dynamics measurements for one buffer.
type LoudnessInfo struct {
	IntegratedLUFS float64
	LoudnessRange  float64
	DRValue        float64
	PeakDb         float64
	RmsDb          float64
}

// kWeighting returns the ITU-R BS.1770-4 K-weighting pair for a sample rate:
// a head-model high shelf followed by the RLB high pass. Coefficients are
// derived from the analog prototype via bilinear transform.
func kWeighting(sampleRate float64) (pre, rlb biquad.Coefficients) {
	// Pre-filter (high shelf).
	f0 := 1681.974450955533
	gain := 3.999843853973347
	q := 0.7071752369554196

	k := math.Tan(math.Pi * f0 / sampleRate)
	vh := math.Pow(10, gain/20)
	vb := math.Pow(vh, 0.4996667741545416)

	a0 := 1 + k/q + k*k
	pre = biquad.Coefficients{
		B0: (vh + vb*k/q + k*k) / a0,
		B1: 2 * (k*k - vh) / a0,
		B2: (vh - vb*k/q + k*k) / a0,
		A1: 2 * (k*k - 1) / a0,
		A2: (1 - k/q + k*k) / a0,
	}

	// RLB weighting (high pass).
	f0 = 38.13547087602444
	q = 0.5003270373238773

	k = math.Tan(math.Pi * f0 / sampleRate)

	a0 = 1 + k/q + k*k
	rlb = biquad.Coefficients{
		B0: 1 / a0,
		B1: -2 / a0,
		B2: 1 / a0,
		A1: 2 * (k*k - 1) / a0,
		A2: (1 - k/q + k*k) / a0,
	}

	return pre, rlb
}

// Loudness measures integrated loudness (EBU R128 gated), loudness range, and
// a crest-style dynamic range value over the whole buffer.
//
//nolint:gocognit // one pass, several concurrent window accumulators
func Loudness(buf *types.AudioBuffer) LoudnessInfo {
	sampleRate := buf.SampleRate
	numChannels := buf.Channels()
	frames := buf.Frames()

	preCoeffs, rlbCoeffs := kWeighting(float64(sampleRate))
	pre := make([]biquad.Section, numChannels)
	rlb := make([]biquad.Section, numChannels)

	for ch := range numChannels {
		pre[ch].Coefficients = preCoeffs
		rlb[ch].Coefficients = rlbCoeffs
	}

	// 400ms momentary and 3s short-term windows, 100ms hop. Sub-audio sample
	// rates round the window sizes down to zero; every window is at least one
	// frame so the ring buffers and the hop modulus stay valid.
	momentarySize := max(sampleRate*400/1000, 1)
	shortTermSize := max(sampleRate*3, 1)
	blockSize := max(sampleRate*3, 1)
	hopSize := max(sampleRate*100/1000, 1)

	momentaryBuf := make([]float64, momentarySize)
	shortTermBuf := make([]float64, shortTermSize)

	var (
		momentaryPos, shortTermPos       int
		momentarySum, shortTermSum       float64
		momentaryFilled, shortTermFilled int
		momentaryPowers, shortTermPowers []float64
	)

	var (
		blocks       []drBlock
		blockSum     float64
		blockPeak    float64
		blockSamples int
	)

	for i := range frames {
		var (
			framePower float64
			framePeak  float64
		)

		for ch := range numChannels {
			sample := buf.Samples[ch][i]

			if abs := math.Abs(sample); abs > framePeak {
				framePeak = abs
			}

			filtered := rlb[ch].ProcessSample(pre[ch].ProcessSample(sample))
			framePower += filtered * filtered
		}

		blockSum += framePower / float64(numChannels)

		if framePeak > blockPeak {
			blockPeak = framePeak
		}

		blockSamples++

		if blockSamples >= blockSize {
			blocks = append(blocks, drBlock{blockPeak, math.Sqrt(blockSum / float64(blockSamples))})
			blockSum = 0
			blockPeak = 0
			blockSamples = 0
		}

		old := momentaryBuf[momentaryPos]
		momentaryBuf[momentaryPos] = framePower
		momentarySum = momentarySum - old + framePower

		momentaryPos = (momentaryPos + 1) % momentarySize
		if momentaryFilled < momentarySize {
			momentaryFilled++
		}

		old = shortTermBuf[shortTermPos]
		shortTermBuf[shortTermPos] = framePower
		shortTermSum = shortTermSum - old + framePower

		shortTermPos = (shortTermPos + 1) % shortTermSize
		if shortTermFilled < shortTermSize {
			shortTermFilled++
		}

		if (i+1)%hopSize == 0 {
			if momentaryFilled == momentarySize {
				momentaryPowers = append(momentaryPowers, momentarySum/float64(momentarySize))
			}

			if shortTermFilled == shortTermSize {
				shortTermPowers = append(shortTermPowers, shortTermSum/float64(shortTermSize))
			}
		}
	}

	// Final partial block counts when it covers at least one second.
	if blockSamples > sampleRate {
		blocks = append(blocks, drBlock{blockPeak, math.Sqrt(blockSum / float64(blockSamples))})
	}

	// Short material never fills a full window; fall back to whole-buffer power
	// so quiet and loud inputs still rank sensibly.
	if len(momentaryPowers) == 0 && frames > 0 && momentaryFilled > 0 {
		momentaryPowers = append(momentaryPowers, momentarySum/float64(momentaryFilled))
	}

	drValue, peakDb, rmsDb := dynamicRange(blocks)

	return LoudnessInfo{
		IntegratedLUFS: integratedLoudness(momentaryPowers),
		LoudnessRange:  loudnessRange(shortTermPowers),
		DRValue:        drValue,
		PeakDb:         peakDb,
		RmsDb:          rmsDb,
	}
}

// integratedLoudness applies the EBU R128 two-stage gate: absolute at
// -70 LUFS, then relative at -10 LU below the ungated mean.
func integratedLoudness(powers []float64) float64 {
	if len(powers) == 0 {
		return -120
	}

	var (
		sum   float64
		count int
	)

	for _, p := range powers {
		if -0.691+10*math.Log10(p) > -70 {
			sum += p
			count++
		}
	}

	if count == 0 {
		return -120
	}

	relativeThreshold := -0.691 + 10*math.Log10(sum/float64(count)) - 10

	sum = 0
	count = 0

	for _, p := range powers {
		if -0.691+10*math.Log10(p) > relativeThreshold {
			sum += p
			count++
		}
	}

	if count == 0 {
		return -120
	}

	return -0.691 + 10*math.Log10(sum/float64(count))
}

// loudnessRange is the 95th minus 10th percentile of gated short-term
// loudness, with a -20 LU relative gate.
func loudnessRange(powers []float64) float64 {
	var lufsValues []float64

	for _, p := range powers {
		if lufs := -0.691 + 10*math.Log10(p); lufs > -70 {
			lufsValues = append(lufsValues, lufs)
		}
	}

	if len(lufsValues) < 2 {
		return 0
	}

	var sum float64
	for _, l := range lufsValues {
		sum += l
	}

	relativeThreshold := sum/float64(len(lufsValues)) - 20

	var gated []float64

	for _, l := range lufsValues {
		if l > relativeThreshold {
			gated = append(gated, l)
		}
	}

	if len(gated) < 2 {
		return 0
	}

	sort.Float64s(gated)

	return gated[int(float64(len(gated))*0.95)] - gated[int(float64(len(gated))*0.10)]
}

// drBlock is one 3s measurement block.
type drBlock struct {
	peak, rms float64
}

// dynamicRange scores crest factor from 3s blocks: second-highest peak over
// the average of the top 20% of block RMS values.
func dynamicRange(blocks []drBlock) (value, peakDb, rmsDb float64) {
	if len(blocks) == 0 {
		return 0, -120, -120
	}

	peaks := make([]float64, len(blocks))
	rmsValues := make([]float64, len(blocks))

	for i, b := range blocks {
		peaks[i] = b.peak
		rmsValues[i] = b.rms
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(peaks)))
	sort.Sort(sort.Reverse(sort.Float64Slice(rmsValues)))

	peakIdx := 1
	if len(peaks) == 1 {
		peakIdx = 0
	}

	peak := peaks[peakIdx]

	top20Count := max(len(rmsValues)/5, 1)

	var rmsSum float64
	for i := range top20Count {
		rmsSum += rmsValues[i]
	}

	rms := rmsSum / float64(top20Count)
	if rms == 0 {
		return 0, -120, -120
	}

	return 20 * math.Log10(peak/rms), 20 * math.Log10(peak), 20 * math.Log10(rms)
}
