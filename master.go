// Package mastering builds preset-parameterized mastering chains, renders
// them against decoded audio, and sequences the analyze/master pipeline over
// batches of tracks.
package mastering

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/cheavireak/Mastering-Enhancement-Pipeline/internal/batch"
	"github.com/cheavireak/Mastering-Enhancement-Pipeline/internal/codec/wav"
	"github.com/cheavireak/Mastering-Enhancement-Pipeline/internal/integration/binary"
	"github.com/cheavireak/Mastering-Enhancement-Pipeline/internal/integration/ffmpeg"
	"github.com/cheavireak/Mastering-Enhancement-Pipeline/internal/progress"
	"github.com/cheavireak/Mastering-Enhancement-Pipeline/internal/render"
	"github.com/cheavireak/Mastering-Enhancement-Pipeline/internal/types"
)

type (
	AudioBuffer = types.AudioBuffer
	TrackFile   = types.TrackFile

	BatchProgress = batch.Progress
	BatchPhase    = batch.Phase
	BatchResult   = batch.Result
	Outcome       = batch.Outcome
)

// Domain error taxonomy; each is fatal to a single file only.
var (
	ErrDecode   = types.ErrDecode
	ErrRender   = types.ErrRender
	ErrAnalysis = types.ErrAnalysis
)

const (
	PhaseIdle       = batch.PhaseIdle
	PhaseAnalyzing  = batch.PhaseAnalyzing
	PhaseProcessing = batch.PhaseProcessing
	PhaseDone       = batch.PhaseDone
)

// Render executes the chain against input as a whole-buffer offline pass,
// reporting estimated progress to onTick while the render is in flight. The
// output always shares the input's sample rate, channel count, and length.
//
// The estimator and the render are independent: ticks advance on a timer,
// cap below completion, and only a successful render releases the final
// (100, "Done") tick. A failed render emits no terminal tick. onTick may be
// nil.
func Render(
	ctx context.Context,
	input *AudioBuffer,
	chain ChainSpec,
	onTick func(percent int, stage string),
) (*AudioBuffer, error) {
	var estimator *progress.Estimator

	if onTick != nil {
		estimator = progress.NewEstimator(func(tick progress.Tick) {
			onTick(tick.Percent, tick.Stage)
		})
		estimator.Start()
	}

	output, err := render.Render(ctx, input, chain)

	if estimator != nil {
		if err != nil {
			estimator.Stop()
		} else {
			estimator.Finish()
		}
	}

	return output, err
}

// DecodeTrack reads a track and decodes it to a planar buffer. Native
// RIFF/WAVE decodes in-process; anything else goes through ffmpeg when it is
// on the PATH.
func DecodeTrack(ctx context.Context, track TrackFile) (*AudioBuffer, error) {
	raw, err := track.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	buf, wavErr := wav.Decode(raw)
	if wavErr == nil {
		return buf, nil
	}

	if _, found := binary.Available("ffmpeg"); !found {
		return nil, wavErr
	}

	var transcoded bytes.Buffer
	if err := ffmpeg.Transcode(ctx, bytes.NewReader(raw), &transcoded); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return wav.Decode(transcoded.Bytes())
}

// EncodeWAV serializes a buffer as RIFF/WAVE, preserving sample rate,
// channel count, and bit depth.
func EncodeWAV(buf *AudioBuffer) ([]byte, error) {
	return wav.Encode(buf)
}

// BatchOptions configures a batch run.
type BatchOptions struct {
	Preset    Preset
	Intensity int
	Bass      BassSettings

	// Analyzer defaults to a time-seeded HeuristicAnalyzer.
	Analyzer Analyzer

	// OnProgress observes phase, per-file, and overall progress. May be nil.
	OnProgress func(BatchProgress)
}

// MasterBatch analyzes then masters tracks strictly in input order, one at a
// time. Per-file failures are recorded in the result and never abort the
// batch.
func MasterBatch(ctx context.Context, tracks []TrackFile, opts BatchOptions) BatchResult {
	chain := BuildChain(opts.Preset, opts.Intensity, opts.Bass)

	analyzer := opts.Analyzer
	if analyzer == nil {
		analyzer = NewHeuristicAnalyzer(uint64(time.Now().UnixNano())) //nolint:gosec // jitter seed
	}

	orchestrator := &batch.Orchestrator{
		Analyze: analyzer.Analyze,
		Decode:  DecodeTrack,
		Render: func(ctx context.Context, input *AudioBuffer, onTick func(int, string)) (*AudioBuffer, error) {
			return Render(ctx, input, chain, onTick)
		},
		OnProgress: opts.OnProgress,
	}

	return orchestrator.Run(ctx, tracks)
}
