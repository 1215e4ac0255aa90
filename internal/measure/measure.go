// Package measure derives a diagnostic report from decoded audio: loudness,
// inter-sample peaks, clipping, spectral balance, and stereo image. Every
// measurement here runs on the normalized planar buffer, so results are
// independent of the source container.
package measure

import (
	"fmt"

	"github.com/cheavireak/Mastering-Enhancement-Pipeline/internal/types"
)

// Classification thresholds, chosen for mastering-delivery review rather than
// broadcast compliance.
const (
	bassHeavyRatio = 0.45
	bassWeakRatio  = 0.15

	narrowCorrelation = 0.98
	wideCorrelation   = 0.2

	lowLoudnessLUFS = -24
	hotTruePeakDb   = -1
	lowDynamics     = 6
)

// Analyze measures buf and maps the raw numbers to the per-track report.
func Analyze(buf *types.AudioBuffer) (*types.AudioAnalysis, error) {
	if !buf.Valid() {
		return nil, fmt.Errorf("%w: malformed audio buffer", types.ErrAnalysis)
	}

	loudness := Loudness(buf)
	peaks := TruePeak(buf)
	clips := Clipping(buf)
	spectrum := Spectral(buf)
	image := Stereo(buf)

	analysis := &types.AudioAnalysis{
		LUFS:         loudness.IntegratedLUFS,
		TruePeakDb:   peaks.TruePeakDb,
		DynamicRange: loudness.DRValue,
		Clipping:     clips.Events > 0,
		BassBalance:  classifyBass(spectrum.BassRatio),
		StereoWidth:  classifyWidth(buf, image.Correlation),
		AIArtifacts:  spectrum.Brickwall,
	}

	describe(analysis, clips, peaks, spectrum)

	return analysis, nil
}

func classifyBass(ratio float64) types.BassBalance {
	switch {
	case ratio > bassHeavyRatio:
		return types.BassHeavy
	case ratio > 0 && ratio < bassWeakRatio:
		return types.BassWeak
	default:
		return types.BassGood
	}
}

func classifyWidth(buf *types.AudioBuffer, correlation float64) types.StereoWidth {
	if buf.Channels() < 2 {
		return types.WidthNarrow
	}

	switch {
	case correlation > narrowCorrelation:
		return types.WidthNarrow
	case correlation < wideCorrelation:
		return types.WidthWide
	default:
		return types.WidthGood
	}
}

// describe turns measurements into the human-readable issue and fix lists.
//
//nolint:gocyclo // one branch per finding
func describe(analysis *types.AudioAnalysis, clips ClippingInfo, peaks TruePeakInfo, spectrum SpectralInfo) {
	if analysis.Clipping {
		analysis.Issues = append(analysis.Issues,
			fmt.Sprintf("clipping detected: %d events, longest run %d samples", clips.Events, clips.LongestRun))
		analysis.Fixes = append(analysis.Fixes, "reduce input gain and re-render with the safety limiter")
	}

	if peaks.TruePeakDb > hotTruePeakDb {
		analysis.Issues = append(analysis.Issues,
			fmt.Sprintf("true peak %.2f dBTP leaves no headroom for lossy encoding", peaks.TruePeakDb))
		analysis.Fixes = append(analysis.Fixes, "lower the limiter ceiling")
	}

	if analysis.LUFS < lowLoudnessLUFS && analysis.LUFS > -120 {
		analysis.Issues = append(analysis.Issues,
			fmt.Sprintf("integrated loudness %.1f LUFS is below streaming targets", analysis.LUFS))
		analysis.Fixes = append(analysis.Fixes, "raise intensity or choose a louder preset")
	}

	if analysis.DynamicRange > 0 && analysis.DynamicRange < lowDynamics {
		analysis.Issues = append(analysis.Issues,
			fmt.Sprintf("dynamic range %.1f dB indicates heavy prior compression", analysis.DynamicRange))
		analysis.Fixes = append(analysis.Fixes, "lower intensity to preserve remaining transients")
	}

	switch analysis.BassBalance {
	case types.BassHeavy:
		analysis.Issues = append(analysis.Issues, "low end dominates the spectrum")
		analysis.Fixes = append(analysis.Fixes, "cut low-shelf gain or reduce bass impact")
	case types.BassWeak:
		analysis.Issues = append(analysis.Issues, "low end is underrepresented")
		analysis.Fixes = append(analysis.Fixes, "raise bass impact")
	case types.BassGood:
	}

	switch analysis.StereoWidth {
	case types.WidthNarrow:
		analysis.Issues = append(analysis.Issues, "stereo image is nearly mono")
	case types.WidthWide:
		analysis.Issues = append(analysis.Issues, "channels are weakly correlated; check mono compatibility")
	case types.WidthGood:
	}

	if analysis.AIArtifacts {
		analysis.Issues = append(analysis.Issues,
			fmt.Sprintf("hard spectral cutoff at %.0f Hz suggests synthetic or transcoded source", spectrum.CutoffHz))
		analysis.Fixes = append(analysis.Fixes, "source a full-bandwidth master if one exists")
	}
}
