// Package dynamics implements the soft-knee compressor/limiter used for the
// dynamics stages of the mastering chain.
package dynamics

import "math"

// Params configures a compressor stage. A limiter is the same processor with
// a high ratio and a hard (zero-width) knee.
type Params struct {
	ThresholdDb float64
	Ratio       float64
	KneeDb      float64
	AttackS     float64
	ReleaseS    float64
}

// Compressor reduces level above a threshold at a given ratio, with a peak
// envelope follower shaping transient response. Detection is linked across
// channels (max of absolute values) so the stereo image does not shift under
// gain reduction.
type Compressor struct {
	params Params

	// Cached linear-domain values.
	threshold     float64
	kneeLower     float64
	kneeUpper     float64
	kneeWidth     float64
	slopeExp      float64 // 1 - 1/ratio
	attackFactor  float64
	releaseFactor float64

	envelope float64
}

// New creates a compressor for the given sample rate.
func New(params Params, sampleRate float64) *Compressor {
	comp := &Compressor{params: params}

	if comp.params.Ratio < 1 {
		comp.params.Ratio = 1
	}

	if comp.params.KneeDb < 0 {
		comp.params.KneeDb = 0
	}

	comp.threshold = math.Pow(10, comp.params.ThresholdDb/20)

	kneeHalf := comp.params.KneeDb / 2
	comp.kneeLower = math.Pow(10, (comp.params.ThresholdDb-kneeHalf)/20)
	comp.kneeUpper = math.Pow(10, (comp.params.ThresholdDb+kneeHalf)/20)
	comp.kneeWidth = comp.kneeUpper - comp.kneeLower
	comp.slopeExp = 1 - 1/comp.params.Ratio

	attack := math.Max(comp.params.AttackS, 0.0001)
	release := math.Max(comp.params.ReleaseS, 0.001)
	comp.attackFactor = 1 - math.Exp(-math.Ln2/(attack*sampleRate))
	comp.releaseFactor = math.Exp(-math.Ln2 / (release * sampleRate))

	return comp
}

// ProcessBuffer compresses planar channel data in place. All channel slices
// must be the same length.
func (c *Compressor) ProcessBuffer(channels [][]float64) {
	if len(channels) == 0 {
		return
	}

	frames := len(channels[0])

	for i := range frames {
		var level float64

		for ch := range channels {
			if abs := math.Abs(channels[ch][i]); abs > level {
				level = abs
			}
		}

		// Peak detector with attack/release envelope follower.
		if level > c.envelope {
			c.envelope += (level - c.envelope) * c.attackFactor
		} else {
			c.envelope = level + (c.envelope-level)*c.releaseFactor
		}

		gain := c.gainFor(c.envelope)

		for ch := range channels {
			channels[ch][i] *= gain
		}
	}
}

// gainFor computes the gain multiplier for a detected level using the
// soft-knee compression curve.
func (c *Compressor) gainFor(level float64) float64 {
	switch {
	case level <= c.kneeLower:
		return 1
	case level >= c.kneeUpper:
		// gain = (threshold/level)^(1 - 1/ratio)
		return math.Pow(c.threshold/level, c.slopeExp)
	default:
		// Inside the knee: cubic hermite blend from unity to the gain at
		// the upper knee boundary.
		kneePos := (level - c.kneeLower) / c.kneeWidth
		smooth := kneePos * kneePos * (3 - 2*kneePos)
		compressed := math.Pow(c.threshold/c.kneeUpper, c.slopeExp)

		return 1 + (compressed-1)*smooth
	}
}

// Reset clears the envelope state.
func (c *Compressor) Reset() {
	c.envelope = 0
}
