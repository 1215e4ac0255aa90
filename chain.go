package mastering

import (
	"errors"
	"fmt"

	"github.com/cheavireak/Mastering-Enhancement-Pipeline/internal/types"
)

// Re-exported data model. The chain is plain data; building it and rendering
// it are separate concerns.
type (
	StageSpec = types.StageSpec
	ChainSpec = types.ChainSpec
	StageKind = types.StageKind
)

const (
	StageHighPass   = types.StageHighPass
	StageLowPass    = types.StageLowPass
	StageLowShelf   = types.StageLowShelf
	StageHighShelf  = types.StageHighShelf
	StagePeaking    = types.StagePeaking
	StageCompressor = types.StageCompressor
	StageGain       = types.StageGain
)

var errUnknownValue = errors.New("unknown value")

// Preset is a named mastering intent, selected once per batch.
type Preset int

const (
	// Modern, platform-targeted presets.
	PresetYoutubeRap Preset = iota
	PresetClubBass
	PresetTiktokTrap
	PresetHighRes

	// Legacy intent presets.
	PresetClean
	PresetClub
	PresetVocal
	PresetBass
)

func (p Preset) String() string {
	switch p {
	case PresetYoutubeRap:
		return "youtube_rap"
	case PresetClubBass:
		return "club_bass"
	case PresetTiktokTrap:
		return "tiktok_trap"
	case PresetHighRes:
		return "high_res"
	case PresetClean:
		return "clean"
	case PresetClub:
		return "club"
	case PresetVocal:
		return "vocal"
	case PresetBass:
		return "bass"
	}

	return "unknown"
}

// ParsePreset converts a preset name into a Preset.
func ParsePreset(value string) (Preset, error) {
	switch value {
	case "youtube_rap":
		return PresetYoutubeRap, nil
	case "club_bass":
		return PresetClubBass, nil
	case "tiktok_trap":
		return PresetTiktokTrap, nil
	case "high_res":
		return PresetHighRes, nil
	case "clean":
		return PresetClean, nil
	case "club":
		return PresetClub, nil
	case "vocal":
		return PresetVocal, nil
	case "bass":
		return PresetBass, nil
	default:
		return 0, fmt.Errorf("%w: preset %q", errUnknownValue, value)
	}
}

// Presets lists every preset name, modern family first.
func Presets() []string {
	return []string{
		"youtube_rap", "club_bass", "tiktok_trap", "high_res",
		"clean", "club", "vocal", "bass",
	}
}

// BassImpact sets the gain of the bass-shaping shelf.
type BassImpact int

const (
	ImpactSoft BassImpact = iota
	ImpactHeavy
	ImpactSavage
)

func (i BassImpact) String() string {
	switch i {
	case ImpactSoft:
		return "soft"
	case ImpactHeavy:
		return "heavy"
	case ImpactSavage:
		return "savage"
	}

	return "unknown"
}

// ParseBassImpact converts an impact name into a BassImpact.
func ParseBassImpact(value string) (BassImpact, error) {
	switch value {
	case "soft":
		return ImpactSoft, nil
	case "heavy":
		return ImpactHeavy, nil
	case "savage":
		return ImpactSavage, nil
	default:
		return 0, fmt.Errorf("%w: bass impact %q", errUnknownValue, value)
	}
}

// gainDb returns the base shelf gain before intensity scaling.
func (i BassImpact) gainDb() float64 {
	switch i {
	case ImpactHeavy:
		return 3
	case ImpactSavage:
		return 6
	case ImpactSoft:
	}

	return 0
}

// BassPunch sets compressor attack for presets that leave it open.
type BassPunch int

const (
	PunchTight BassPunch = iota
	PunchShort
	PunchLong
)

func (p BassPunch) String() string {
	switch p {
	case PunchShort:
		return "short"
	case PunchTight:
		return "tight"
	case PunchLong:
		return "long"
	}

	return "unknown"
}

// ParseBassPunch converts a punch name into a BassPunch.
func ParseBassPunch(value string) (BassPunch, error) {
	switch value {
	case "short":
		return PunchShort, nil
	case "tight":
		return PunchTight, nil
	case "long":
		return PunchLong, nil
	default:
		return 0, fmt.Errorf("%w: bass punch %q", errUnknownValue, value)
	}
}

// attackS maps punch to compressor attack time.
func (p BassPunch) attackS() float64 {
	switch p {
	case PunchShort:
		return 0.002
	case PunchLong:
		return 0.015
	case PunchTight:
	}

	return 0.005
}

// BassWeight selects the bass shelf corner frequency.
type BassWeight int

const (
	WeightBalanced BassWeight = iota
	WeightLow
	WeightDeep
)

func (w BassWeight) String() string {
	switch w {
	case WeightLow:
		return "low"
	case WeightBalanced:
		return "balanced"
	case WeightDeep:
		return "deep"
	}

	return "unknown"
}

// ParseBassWeight converts a weight name into a BassWeight.
func ParseBassWeight(value string) (BassWeight, error) {
	switch value {
	case "low":
		return WeightLow, nil
	case "balanced":
		return WeightBalanced, nil
	case "deep":
		return WeightDeep, nil
	default:
		return 0, fmt.Errorf("%w: bass weight %q", errUnknownValue, value)
	}
}

// shelfFreq returns the bass shelf corner: deep reaches into the sub range.
func (w BassWeight) shelfFreq() float64 {
	if w == WeightDeep {
		return 60
	}

	return 80
}

// BassSettings shapes the low end on top of any preset's base chain.
// ClubSafe is advisory: it is carried through to reporting but the chain it
// produces is already constrained by the preset's limiter ceiling.
type BassSettings struct {
	Impact    BassImpact
	Punch     BassPunch
	Weight    BassWeight
	ClubSafe  bool
	PhoneSafe bool
}

// DefaultBassSettings returns the neutral bass configuration.
func DefaultBassSettings() BassSettings {
	return BassSettings{
		Impact: ImpactSoft,
		Punch:  PunchTight,
		Weight: WeightBalanced,
	}
}

// IntensityMultiplier normalizes the 0-100 intensity knob to [0,2], with 50
// as the neutral point. Out-of-range values clamp.
func IntensityMultiplier(intensity int) float64 {
	if intensity < 0 {
		intensity = 0
	}

	if intensity > 100 {
		intensity = 100
	}

	return float64(intensity) / 50
}

// humanized reports whether the de-harsh stage applies to a preset. The
// bass-forward intents skip it: their top end is already dark and the cut
// would dull the transient snap they trade on.
func (p Preset) humanized() bool {
	return p != PresetClubBass && p != PresetBass
}

// newCompressor fills in house defaults for the parameters a preset leaves
// open.
func newCompressor(thresholdDb, ratio float64) StageSpec {
	return StageSpec{
		Kind:        StageCompressor,
		ThresholdDb: thresholdDb,
		Ratio:       ratio,
		KneeDb:      6,
		AttackS:     0.01,
		ReleaseS:    0.25,
	}
}

// BuildChain maps the user-facing knobs onto the ordered stage sequence.
// Deterministic, no I/O: the same inputs always produce the same chain.
//
// Stage order is fixed: de-harsh, phone-safe high pass, bass shelf, preset
// stages, safety limiter. Options that are off omit their stage entirely.
func BuildChain(preset Preset, intensity int, bass BassSettings) ChainSpec {
	m := IntensityMultiplier(intensity)

	var chain ChainSpec

	if preset.humanized() {
		chain = append(chain, StageSpec{Kind: StagePeaking, Freq: 4000, Q: 0.5, GainDb: -1 * m})
	}

	if bass.PhoneSafe {
		chain = append(chain, StageSpec{Kind: StageHighPass, Freq: 40})
	}

	chain = append(chain, StageSpec{
		Kind:   StageLowShelf,
		Freq:   bass.Weight.shelfFreq(),
		GainDb: bass.Impact.gainDb() * m,
	})

	chain = append(chain, presetStages(preset, m, bass)...)

	// Terminal safety limiter, never user-configurable, always last.
	limiterThreshold := -1.0
	if preset == PresetClubBass {
		limiterThreshold = -0.5
	}

	chain = append(chain, StageSpec{
		Kind:        StageCompressor,
		ThresholdDb: limiterThreshold,
		Ratio:       20,
		KneeDb:      0,
		AttackS:     0.001,
		ReleaseS:    0.1,
	})

	return chain
}

func presetStages(preset Preset, m float64, bass BassSettings) []StageSpec {
	switch preset {
	case PresetYoutubeRap:
		comp := newCompressor(-16*m, 3+m)
		comp.AttackS = bass.Punch.attackS()

		return []StageSpec{comp}
	case PresetClubBass:
		comp := newCompressor(-12*m, 6+2*m)
		comp.AttackS = 0.005

		return []StageSpec{comp}
	case PresetTiktokTrap:
		comp := newCompressor(-14*m, 4)
		comp.AttackS = bass.Punch.attackS()

		return []StageSpec{
			{Kind: StagePeaking, Freq: 2500, Q: 1, GainDb: 2 * m},
			comp,
		}
	case PresetVocal:
		return []StageSpec{
			{Kind: StagePeaking, Freq: 3000, Q: 1, GainDb: 3},
			{Kind: StagePeaking, Freq: 300, Q: 1, GainDb: -2}, // de-mud
			newCompressor(-18, 3),
		}
	case PresetBass:
		return []StageSpec{
			{Kind: StageLowShelf, Freq: 80, GainDb: 6},
			newCompressor(-10, 4),
		}
	case PresetClean:
		comp := newCompressor(-24, 2)
		comp.KneeDb = 30
		comp.AttackS = 0.003
		comp.ReleaseS = 0.25

		return []StageSpec{
			{Kind: StageHighPass, Freq: 30},
			comp,
			{Kind: StageHighShelf, Freq: 10000, GainDb: 2},
		}
	case PresetClub:
		return []StageSpec{
			{Kind: StageLowShelf, Freq: 100, GainDb: 4},
		}
	case PresetHighRes:
		// No dynamics stage: preserve the source's range.
		return nil
	}

	return nil
}
