package types

// BassBalance qualifies low-end energy relative to the rest of the spectrum.
type BassBalance int

const (
	BassGood BassBalance = iota
	BassHeavy
	BassWeak
)

func (b BassBalance) String() string {
	switch b {
	case BassGood:
		return "good"
	case BassHeavy:
		return "heavy"
	case BassWeak:
		return "weak"
	}

	return "unknown"
}

// StereoWidth qualifies the stereo image from channel correlation.
type StereoWidth int

const (
	WidthGood StereoWidth = iota
	WidthNarrow
	WidthWide
)

func (w StereoWidth) String() string {
	switch w {
	case WidthGood:
		return "good"
	case WidthNarrow:
		return "narrow"
	case WidthWide:
		return "wide"
	}

	return "unknown"
}

// AudioAnalysis is the per-track diagnostic report. Produced once per file
// and immutable thereafter, keyed by file identity.
type AudioAnalysis struct {
	LUFS         float64
	TruePeakDb   float64
	DynamicRange float64
	Clipping     bool
	BassBalance  BassBalance
	StereoWidth  StereoWidth
	AIArtifacts  bool
	Issues       []string
	Fixes        []string
}
