// Package render executes a declarative mastering chain against a decoded
// audio buffer. The chain is data (types.ChainSpec); this package is the
// interpreter that wires it into concrete filter and dynamics processors.
package render

import (
	"context"
	"fmt"

	"github.com/cheavireak/Mastering-Enhancement-Pipeline/internal/dsp/biquad"
	"github.com/cheavireak/Mastering-Enhancement-Pipeline/internal/dsp/dynamics"
	"github.com/cheavireak/Mastering-Enhancement-Pipeline/internal/types"
)

// stage processes planar channel data in place.
type stage interface {
	process(channels [][]float64)
}

// filterStage holds one biquad section per channel.
type filterStage struct {
	sections []biquad.Section
}

func (s *filterStage) process(channels [][]float64) {
	for ch := range channels {
		s.sections[ch].ProcessBlock(channels[ch])
	}
}

type compressorStage struct {
	comp *dynamics.Compressor
}

func (s *compressorStage) process(channels [][]float64) {
	s.comp.ProcessBuffer(channels)
}

type gainStage struct {
	gain float64
}

func (s *gainStage) process(channels [][]float64) {
	for ch := range channels {
		for i := range channels[ch] {
			channels[ch][i] *= s.gain
		}
	}
}

// Render executes chain against input, source → stage 0 → … → stage N → sink,
// as a whole-buffer, non-real-time pass. The output buffer always shares the
// input's sample rate, channel count, and length. The render is not
// cancelable mid-flight; ctx is only checked between stages.
func Render(ctx context.Context, input *types.AudioBuffer, chain types.ChainSpec) (*types.AudioBuffer, error) {
	if !input.Valid() {
		return nil, fmt.Errorf("%w: malformed audio buffer", types.ErrDecode)
	}

	stages, err := buildStages(input, chain)
	if err != nil {
		return nil, err
	}

	output := input.Clone()

	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", types.ErrRender, err)
		}

		st.process(output.Samples)
	}

	return output, nil
}

// buildStages validates the chain and constructs the stage pipeline.
func buildStages(input *types.AudioBuffer, chain types.ChainSpec) ([]stage, error) {
	if len(chain) == 0 {
		return nil, fmt.Errorf("%w: chain has no stages", types.ErrRender)
	}

	sampleRate := float64(input.SampleRate)
	nyquist := sampleRate / 2
	numChannels := input.Channels()

	stages := make([]stage, 0, len(chain))

	for i, spec := range chain {
		switch spec.Kind {
		case types.StageHighPass, types.StageLowPass, types.StageLowShelf,
			types.StageHighShelf, types.StagePeaking:
			if spec.Freq <= 0 || spec.Freq >= nyquist {
				return nil, fmt.Errorf(
					"%w: stage %d (%s): frequency %.0f Hz unsupported at sample rate %.0f Hz",
					types.ErrRender, i, spec.Kind, spec.Freq, sampleRate,
				)
			}

			stages = append(stages, newFilterStage(spec, sampleRate, numChannels))
		case types.StageCompressor:
			if spec.Ratio < 1 {
				return nil, fmt.Errorf(
					"%w: stage %d (%s): ratio %.2f below unity",
					types.ErrRender, i, spec.Kind, spec.Ratio,
				)
			}

			comp := dynamics.New(dynamics.Params{
				ThresholdDb: spec.ThresholdDb,
				Ratio:       spec.Ratio,
				KneeDb:      spec.KneeDb,
				AttackS:     spec.AttackS,
				ReleaseS:    spec.ReleaseS,
			}, sampleRate)

			stages = append(stages, &compressorStage{comp: comp})
		case types.StageGain:
			if spec.LinearGain < 0 {
				return nil, fmt.Errorf(
					"%w: stage %d (%s): negative gain",
					types.ErrRender, i, spec.Kind,
				)
			}

			stages = append(stages, &gainStage{gain: spec.LinearGain})
		default:
			return nil, fmt.Errorf("%w: stage %d: unknown stage kind %d", types.ErrRender, i, spec.Kind)
		}
	}

	return stages, nil
}

func newFilterStage(spec types.StageSpec, sampleRate float64, numChannels int) *filterStage {
	var coeffs biquad.Coefficients

	switch spec.Kind {
	case types.StageHighPass:
		coeffs = biquad.HighPass(sampleRate, spec.Freq)
	case types.StageLowPass:
		coeffs = biquad.LowPass(sampleRate, spec.Freq)
	case types.StageLowShelf:
		coeffs = biquad.LowShelf(sampleRate, spec.Freq, spec.GainDb)
	case types.StageHighShelf:
		coeffs = biquad.HighShelf(sampleRate, spec.Freq, spec.GainDb)
	case types.StagePeaking:
		q := spec.Q
		if q <= 0 {
			q = 1
		}

		coeffs = biquad.Peaking(sampleRate, spec.Freq, q, spec.GainDb)
	}

	st := &filterStage{sections: make([]biquad.Section, numChannels)}
	for ch := range st.sections {
		st.sections[ch].Coefficients = coeffs
	}

	return st
}
