// Package output provides shared result serialization for JSON output.
package output

import (
	"github.com/cheavireak/Mastering-Enhancement-Pipeline/internal/types"
)

// AnalysisToMap converts a per-track analysis into the canonical map
// structure used for JSON and JSONL serialization.
func AnalysisToMap(analysis *types.AudioAnalysis) map[string]any {
	issues := make([]any, 0, len(analysis.Issues))
	for _, issue := range analysis.Issues {
		issues = append(issues, issue)
	}

	fixes := make([]any, 0, len(analysis.Fixes))
	for _, fix := range analysis.Fixes {
		fixes = append(fixes, fix)
	}

	return map[string]any{
		"lufs":          analysis.LUFS,
		"true_peak_db":  analysis.TruePeakDb,
		"dynamic_range": analysis.DynamicRange,
		"clipping":      analysis.Clipping,
		"bass_balance":  analysis.BassBalance.String(),
		"stereo_width":  analysis.StereoWidth.String(),
		"ai_artifacts":  analysis.AIArtifacts,
		"issues":        issues,
		"fixes":         fixes,
	}
}

// ChainToMap converts a built mastering chain into a serializable structure,
// one entry per stage with only the fields relevant to the stage kind.
func ChainToMap(chain types.ChainSpec) []any {
	stages := make([]any, 0, len(chain))

	for _, stage := range chain {
		entry := map[string]any{
			"kind": stage.Kind.String(),
		}

		switch stage.Kind {
		case types.StageHighPass, types.StageLowPass:
			entry["freq_hz"] = stage.Freq
		case types.StageLowShelf, types.StageHighShelf:
			entry["freq_hz"] = stage.Freq
			entry["gain_db"] = stage.GainDb
		case types.StagePeaking:
			entry["freq_hz"] = stage.Freq
			entry["q"] = stage.Q
			entry["gain_db"] = stage.GainDb
		case types.StageCompressor:
			entry["threshold_db"] = stage.ThresholdDb
			entry["ratio"] = stage.Ratio
			entry["knee_db"] = stage.KneeDb
			entry["attack_s"] = stage.AttackS
			entry["release_s"] = stage.ReleaseS
		case types.StageGain:
			entry["linear_gain"] = stage.LinearGain
		}

		stages = append(stages, entry)
	}

	return stages
}
