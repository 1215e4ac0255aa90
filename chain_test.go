package mastering_test

import (
	"reflect"
	"testing"

	mastering "github.com/cheavireak/Mastering-Enhancement-Pipeline"
)

func allPresets(t *testing.T) []mastering.Preset {
	t.Helper()

	presets := make([]mastering.Preset, 0, len(mastering.Presets()))

	for _, name := range mastering.Presets() {
		preset, err := mastering.ParsePreset(name)
		if err != nil {
			t.Fatalf("ParsePreset(%q): %v", name, err)
		}

		presets = append(presets, preset)
	}

	return presets
}

func TestSafetyLimiterAlwaysLast(t *testing.T) {
	t.Parallel()

	for _, preset := range allPresets(t) {
		for _, intensity := range []int{0, 50, 100} {
			chain := mastering.BuildChain(preset, intensity, mastering.DefaultBassSettings())

			if len(chain) == 0 {
				t.Fatalf("%s at intensity %d: empty chain", preset, intensity)
			}

			last := chain.Last()

			if last.Kind != mastering.StageCompressor {
				t.Fatalf("%s at intensity %d: last stage is %s, want compressor", preset, intensity, last.Kind)
			}

			wantThreshold := -1.0
			if preset == mastering.PresetClubBass {
				wantThreshold = -0.5
			}

			if last.ThresholdDb != wantThreshold ||
				last.Ratio != 20 ||
				last.KneeDb != 0 ||
				last.AttackS != 0.001 ||
				last.ReleaseS != 0.1 {
				t.Fatalf("%s at intensity %d: limiter %+v, want threshold %v knee 0 ratio 20 attack .001 release .1",
					preset, intensity, last, wantThreshold)
			}
		}
	}
}

func TestIntensityMultiplier(t *testing.T) {
	t.Parallel()

	cases := []struct {
		intensity int
		want      float64
	}{
		{0, 0},
		{50, 1},
		{100, 2},
		{25, 0.5},
		{-10, 0},
		{250, 2},
	}

	for _, tc := range cases {
		if got := mastering.IntensityMultiplier(tc.intensity); got != tc.want {
			t.Errorf("IntensityMultiplier(%d) = %v, want %v", tc.intensity, got, tc.want)
		}
	}
}

func findStages(chain mastering.ChainSpec, kind mastering.StageKind) []mastering.StageSpec {
	var found []mastering.StageSpec

	for _, stage := range chain {
		if stage.Kind == kind {
			found = append(found, stage)
		}
	}

	return found
}

func TestDeepWeightLowersShelfCorner(t *testing.T) {
	t.Parallel()

	for _, preset := range allPresets(t) {
		deep := mastering.DefaultBassSettings()
		deep.Weight = mastering.WeightDeep

		chain := mastering.BuildChain(preset, 50, deep)

		shelves := findStages(chain, mastering.StageLowShelf)
		if len(shelves) == 0 {
			t.Fatalf("%s: no bass shelf", preset)
		}

		if shelves[0].Freq != 60 {
			t.Errorf("%s with deep weight: shelf at %v Hz, want 60", preset, shelves[0].Freq)
		}

		chain = mastering.BuildChain(preset, 50, mastering.DefaultBassSettings())
		if shelves = findStages(chain, mastering.StageLowShelf); shelves[0].Freq != 80 {
			t.Errorf("%s with balanced weight: shelf at %v Hz, want 80", preset, shelves[0].Freq)
		}
	}
}

func TestPhoneSafeInsertsHighPassBeforeBassShelf(t *testing.T) {
	t.Parallel()

	for _, preset := range allPresets(t) {
		bass := mastering.DefaultBassSettings()
		bass.PhoneSafe = true

		chain := mastering.BuildChain(preset, 50, bass)

		highPassIdx := -1
		count := 0

		for i, stage := range chain {
			if stage.Kind == mastering.StageHighPass && stage.Freq == 40 {
				highPassIdx = i
				count++
			}
		}

		if count != 1 {
			t.Fatalf("%s phone-safe: %d high-pass stages at 40 Hz, want exactly 1", preset, count)
		}

		shelfIdx := -1

		for i, stage := range chain {
			if stage.Kind == mastering.StageLowShelf {
				shelfIdx = i

				break
			}
		}

		if shelfIdx < 0 || highPassIdx > shelfIdx {
			t.Errorf("%s phone-safe: high pass at %d not before bass shelf at %d", preset, highPassIdx, shelfIdx)
		}

		chain = mastering.BuildChain(preset, 50, mastering.DefaultBassSettings())
		for _, stage := range chain {
			if stage.Kind == mastering.StageHighPass && stage.Freq == 40 {
				t.Errorf("%s without phone-safe: unexpected 40 Hz high pass", preset)
			}
		}
	}
}

func TestClubBassSavageDeepScenario(t *testing.T) {
	t.Parallel()

	bass := mastering.BassSettings{
		Impact:    mastering.ImpactSavage,
		Punch:     mastering.PunchTight,
		Weight:    mastering.WeightDeep,
		ClubSafe:  true,
		PhoneSafe: true,
	}

	chain := mastering.BuildChain(mastering.PresetClubBass, 100, bass)

	if len(chain) != 4 {
		t.Fatalf("chain has %d stages, want 4: %+v", len(chain), chain)
	}

	if chain[0].Kind != mastering.StageHighPass || chain[0].Freq != 40 {
		t.Errorf("stage 0 = %+v, want HighPass(40)", chain[0])
	}

	if chain[1].Kind != mastering.StageLowShelf || chain[1].Freq != 60 || chain[1].GainDb != 12 {
		t.Errorf("stage 1 = %+v, want LowShelf(60, +12dB)", chain[1])
	}

	comp := chain[2]
	if comp.Kind != mastering.StageCompressor ||
		comp.ThresholdDb != -24 ||
		comp.Ratio != 10 ||
		comp.AttackS != 0.005 {
		t.Errorf("stage 2 = %+v, want Compressor(-24dB, 10:1, attack .005)", comp)
	}

	limiter := chain[3]
	if limiter.Kind != mastering.StageCompressor ||
		limiter.ThresholdDb != -0.5 ||
		limiter.Ratio != 20 ||
		limiter.KneeDb != 0 {
		t.Errorf("stage 3 = %+v, want limiter at -0.5dB", limiter)
	}
}

func TestHumanizerSkipsBassForwardPresets(t *testing.T) {
	t.Parallel()

	isHumanizer := func(stage mastering.StageSpec) bool {
		return stage.Kind == mastering.StagePeaking && stage.Freq == 4000
	}

	for _, preset := range allPresets(t) {
		chain := mastering.BuildChain(preset, 50, mastering.DefaultBassSettings())

		skipped := preset == mastering.PresetClubBass || preset == mastering.PresetBass

		if skipped {
			if isHumanizer(chain[0]) {
				t.Errorf("%s: unexpected de-harsh stage", preset)
			}

			continue
		}

		if !isHumanizer(chain[0]) {
			t.Errorf("%s: first stage %+v, want Peaking(4000, 0.5)", preset, chain[0])
		}

		if chain[0].Q != 0.5 || chain[0].GainDb != -1 {
			t.Errorf("%s: de-harsh stage %+v, want Q 0.5 gain -1dB at neutral intensity", preset, chain[0])
		}
	}
}

func TestBuildChainDeterministic(t *testing.T) {
	t.Parallel()

	bass := mastering.BassSettings{
		Impact:    mastering.ImpactHeavy,
		Punch:     mastering.PunchLong,
		Weight:    mastering.WeightDeep,
		PhoneSafe: true,
	}

	first := mastering.BuildChain(mastering.PresetTiktokTrap, 73, bass)
	second := mastering.BuildChain(mastering.PresetTiktokTrap, 73, bass)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same inputs built different chains:\n%+v\n%+v", first, second)
	}
}

func TestIntensityZeroCollapsesScaledGains(t *testing.T) {
	t.Parallel()

	bass := mastering.DefaultBassSettings()
	bass.Impact = mastering.ImpactSavage

	chain := mastering.BuildChain(mastering.PresetYoutubeRap, 0, bass)

	shelves := findStages(chain, mastering.StageLowShelf)
	if len(shelves) != 1 || shelves[0].GainDb != 0 {
		t.Errorf("savage impact at zero intensity: shelf gain %v, want 0", shelves[0].GainDb)
	}

	comps := findStages(chain, mastering.StageCompressor)
	if len(comps) != 2 {
		t.Fatalf("got %d compressors, want preset stage plus limiter", len(comps))
	}

	if comps[0].ThresholdDb != 0 || comps[0].Ratio != 3 {
		t.Errorf("preset compressor %+v, want threshold 0 ratio 3 at zero intensity", comps[0])
	}
}
