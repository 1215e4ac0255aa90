package types

// StageKind discriminates the variants of StageSpec.
type StageKind int

const (
	StageHighPass StageKind = iota
	StageLowPass
	StageLowShelf
	StageHighShelf
	StagePeaking
	StageCompressor
	StageGain
)

func (k StageKind) String() string {
	switch k {
	case StageHighPass:
		return "highpass"
	case StageLowPass:
		return "lowpass"
	case StageLowShelf:
		return "lowshelf"
	case StageHighShelf:
		return "highshelf"
	case StagePeaking:
		return "peaking"
	case StageCompressor:
		return "compressor"
	case StageGain:
		return "gain"
	}

	return "unknown"
}

// StageSpec is a pure parameter record for one processing stage. Only the
// fields relevant to Kind are meaningful; the rest stay zero.
type StageSpec struct {
	Kind StageKind

	// Filter stages.
	Freq   float64 // Hz, cutoff or center frequency
	Q      float64 // bandwidth, peaking only
	GainDb float64 // shelf/peaking boost or cut

	// Compressor stages.
	ThresholdDb float64
	Ratio       float64
	KneeDb      float64
	AttackS     float64
	ReleaseS    float64

	// Gain stage.
	LinearGain float64
}

// ChainSpec is an ordered stage sequence; signal flows stage 0 → N → output.
// A buildable chain always ends with the terminal safety limiter, so it is
// never empty when rendering is invoked.
type ChainSpec []StageSpec

// Last returns the final stage, or a zero StageSpec for an empty chain.
func (c ChainSpec) Last() StageSpec {
	if len(c) == 0 {
		return StageSpec{}
	}

	return c[len(c)-1]
}
