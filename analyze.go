package mastering

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/cheavireak/Mastering-Enhancement-Pipeline/internal/measure"
	"github.com/cheavireak/Mastering-Enhancement-Pipeline/internal/types"
)

type (
	AudioAnalysis = types.AudioAnalysis
	BassBalance   = types.BassBalance
	StereoWidth   = types.StereoWidth
)

const (
	BassGood  = types.BassGood
	BassHeavy = types.BassHeavy
	BassWeak  = types.BassWeak

	WidthGood   = types.WidthGood
	WidthNarrow = types.WidthNarrow
	WidthWide   = types.WidthWide
)

// Analyzer produces the per-track diagnostic report.
type Analyzer interface {
	Analyze(ctx context.Context, track TrackFile) (*AudioAnalysis, error)
}

// HeuristicAnalyzer derives a report from file identity and size without
// touching sample content. It exists for fast previews and for driving the
// review UI before a real measurement pass completes: the narrative branches
// on byte size, and two numeric fields carry deliberate run-to-run jitter so
// repeated scans read as live diagnostics.
type HeuristicAnalyzer struct {
	latency time.Duration
	rng     *rand.Rand
}

// DefaultHeuristicLatency is the simulated analysis window.
const DefaultHeuristicLatency = 600 * time.Millisecond

// HeuristicOption configures a HeuristicAnalyzer.
type HeuristicOption func(*HeuristicAnalyzer)

// WithLatency overrides the simulated analysis latency.
func WithLatency(d time.Duration) HeuristicOption {
	return func(h *HeuristicAnalyzer) { h.latency = d }
}

// NewHeuristicAnalyzer creates a heuristic analyzer with a seeded jitter
// source, so tests can pin the randomized fields.
func NewHeuristicAnalyzer(seed uint64, opts ...HeuristicOption) *HeuristicAnalyzer {
	analyzer := &HeuristicAnalyzer{
		latency: DefaultHeuristicLatency,
		rng:     rand.New(rand.NewPCG(seed, seed)), //nolint:gosec // jitter, not crypto
	}

	for _, opt := range opts {
		opt(analyzer)
	}

	return analyzer
}

// Analyze waits out the simulated latency window and fabricates a report
// from the track's byte size. Only LUFS and dynamic range are randomized;
// every other field is deterministic for a given file.
func (h *HeuristicAnalyzer) Analyze(ctx context.Context, track TrackFile) (*AudioAnalysis, error) {
	timer := time.NewTimer(h.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", types.ErrAnalysis, ctx.Err())
	case <-timer.C:
	}

	bassForward := track.Size%2 == 0

	analysis := &AudioAnalysis{
		LUFS:         -14 - h.rng.Float64()*6,
		TruePeakDb:   -0.8,
		DynamicRange: 4 + h.rng.Float64()*8,
		BassBalance:  BassGood,
		StereoWidth:  WidthGood,
		AIArtifacts:  track.Size%3 == 0,
	}

	if bassForward {
		analysis.BassBalance = BassHeavy
		analysis.Issues = append(analysis.Issues, "low end dominates the mix")
		analysis.Fixes = append(analysis.Fixes, "soften bass impact or raise the shelf corner")
	} else {
		analysis.Issues = append(analysis.Issues, "tonal balance reads clean")
	}

	if analysis.AIArtifacts {
		analysis.Issues = append(analysis.Issues, "spectral signature consistent with generated audio")
		analysis.Fixes = append(analysis.Fixes, "source a full-bandwidth master if one exists")
	}

	return analysis, nil
}

// MeasurementAnalyzer runs the real DSP measurement pass: decode, then
// loudness, true peak, clipping, spectrum, and stereo image.
type MeasurementAnalyzer struct {
	// Decode converts a track into a buffer; DecodeTrack unless overridden.
	Decode func(ctx context.Context, track TrackFile) (*AudioBuffer, error)
}

// NewMeasurementAnalyzer creates a measurement analyzer using the default
// decode path.
func NewMeasurementAnalyzer() *MeasurementAnalyzer {
	return &MeasurementAnalyzer{Decode: DecodeTrack}
}

// Analyze decodes the track and measures it.
func (m *MeasurementAnalyzer) Analyze(ctx context.Context, track TrackFile) (*AudioAnalysis, error) {
	buf, err := m.Decode(ctx, track)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrAnalysis, err)
	}

	return measure.Analyze(buf)
}
