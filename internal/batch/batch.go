// Package batch sequences analysis and mastering over an ordered list of
// tracks, isolating per-file failures and aggregating progress. Files are
// processed strictly in input order, one at a time; partial-batch success is
// a first-class outcome.
package batch

import (
	"context"
	"fmt"

	"github.com/cheavireak/Mastering-Enhancement-Pipeline/internal/types"
)

// Phase is the batch lifecycle: idle → analyzing → processing → done.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAnalyzing
	PhaseProcessing
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAnalyzing:
		return "analyzing"
	case PhaseProcessing:
		return "processing"
	case PhaseDone:
		return "done"
	}

	return "unknown"
}

// Outcome is the terminal record for one file. Err is set when decode or
// render failed; AnalysisErr is set when analysis failed. A failed analysis
// never blocks rendering, so any combination of the two can be populated.
type Outcome struct {
	Analysis    *types.AudioAnalysis
	AnalysisErr error
	Rendered    *types.AudioBuffer
	Err         error
}

// Result maps file identity to its outcome. Every input file gets an entry.
type Result map[string]*Outcome

// Progress is one observation delivered to the progress sink. Observational
// only; observers must not mutate orchestrator-owned state.
type Progress struct {
	Phase          Phase
	FileIndex      int
	FileCount      int
	FileName       string
	FilePercent    int
	Stage          string
	OverallPercent int
}

// state is the single owner of run-time progress; it is mutated only by the
// orchestrator's goroutine and exposed to observers as Progress snapshots.
type state struct {
	phase        Phase
	currentIndex int
	filePercent  int
	stageLabel   string
	completed    int
	total        int
	outcomes     Result
}

func (s *state) snapshot(name string) Progress {
	overall := 0
	if s.total > 0 {
		overall = s.completed * 100 / s.total
	}

	return Progress{
		Phase:          s.phase,
		FileIndex:      s.currentIndex,
		FileCount:      s.total,
		FileName:       name,
		FilePercent:    s.filePercent,
		Stage:          s.stageLabel,
		OverallPercent: overall,
	}
}

// Orchestrator drives the per-file pipeline: analyze → decode → render.
// The function fields decouple it from concrete engines; all are required
// except OnProgress.
type Orchestrator struct {
	Analyze func(ctx context.Context, track types.TrackFile) (*types.AudioAnalysis, error)
	Decode  func(ctx context.Context, track types.TrackFile) (*types.AudioBuffer, error)
	Render  func(ctx context.Context, input *types.AudioBuffer, onTick func(percent int, stage string)) (*types.AudioBuffer, error)

	OnProgress func(Progress)
}

// Run processes tracks in order and returns an outcome per file. Failures in
// analyzing, decoding, or rendering a single file are recorded against that
// file and never abort the batch; the batch always reaches done.
func (o *Orchestrator) Run(ctx context.Context, tracks []types.TrackFile) Result {
	run := &state{
		phase:    PhaseIdle,
		total:    len(tracks),
		outcomes: make(Result, len(tracks)),
	}

	for i, track := range tracks {
		run.currentIndex = i
		run.filePercent = 0
		run.stageLabel = ""

		outcome := &Outcome{}
		run.outcomes[track.Name] = outcome

		run.phase = PhaseAnalyzing
		o.publish(run, track.Name)

		analysis, err := o.Analyze(ctx, track)
		if err != nil {
			// Recorded against the file, but never blocks rendering.
			outcome.AnalysisErr = fmt.Errorf("%s: %w", track.Name, err)
		} else {
			outcome.Analysis = analysis
		}

		run.phase = PhaseProcessing
		o.publish(run, track.Name)

		rendered, err := o.masterOne(ctx, run, track)
		if err != nil {
			outcome.Err = err
		} else {
			outcome.Rendered = rendered
		}

		run.completed++
		run.filePercent = 100
		o.publish(run, track.Name)
	}

	run.phase = PhaseDone
	o.publish(run, "")

	return run.outcomes
}

func (o *Orchestrator) masterOne(
	ctx context.Context,
	run *state,
	track types.TrackFile,
) (*types.AudioBuffer, error) {
	input, err := o.Decode(ctx, track)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", track.Name, err)
	}

	onTick := func(percent int, stage string) {
		run.filePercent = percent
		run.stageLabel = stage
		o.publish(run, track.Name)
	}

	rendered, err := o.Render(ctx, input, onTick)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", track.Name, err)
	}

	return rendered, nil
}

func (o *Orchestrator) publish(run *state, name string) {
	if o.OnProgress == nil {
		return
	}

	o.OnProgress(run.snapshot(name))
}
