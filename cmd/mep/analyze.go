//nolint:wrapcheck
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	mastering "github.com/cheavireak/Mastering-Enhancement-Pipeline"
	"github.com/cheavireak/Mastering-Enhancement-Pipeline/internal/integration/ffprobe"
)

var errAnalyzeArgs = errors.New("expected at least one argument: file path")

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Produce a diagnostic report for one or more tracks",
		ArgsUsage: "<file> [<file>...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "quick",
				Aliases: []string{"q"},
				Usage:   "Size-based heuristic preview instead of a full measurement pass",
			},
			&cli.UintFlag{
				Name:  "seed",
				Usage: "Seed for the heuristic jitter source (0 = time-based)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: console, json, markdown",
				Value:   "console",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() == 0 {
				return errAnalyzeArgs
			}

			tracks, err := tracksFromArgs(cmd.Args().Slice())
			if err != nil {
				return err
			}

			analyzer := buildAnalyzer(cmd.Bool("quick"), uint64(cmd.Uint("seed")))

			reports := make(map[string]*mastering.AudioAnalysis, len(tracks))
			sources := make(map[string]map[string]any, len(tracks))

			for _, track := range tracks {
				analysis, err := analyzer.Analyze(ctx, track)
				if err != nil {
					return fmt.Errorf("analyzing %s: %w", track.Name, err)
				}

				reports[track.Name] = analysis

				if !cmd.Bool("quick") {
					if source := probeSource(ctx, track.Name); source != nil {
						sources[track.Name] = source
					}
				}
			}

			return outputAnalyses(tracks, reports, sources, cmd.String("format"))
		},
	}
}

// probeSource gathers container metadata for the report. A missing ffprobe or
// a failed probe is not fatal: the measurement pass already decoded the audio.
func probeSource(ctx context.Context, filePath string) map[string]any {
	result, err := ffprobe.Probe(ctx, filePath)
	if err != nil {
		slog.Debug("probe skipped", "file", filePath, "error", err)

		return nil
	}

	source := map[string]any{
		"container": result.Format.FormatName,
	}

	if stream := result.FirstAudioStream(); stream != nil {
		source["codec"] = stream.CodecName
		source["sample_rate"] = stream.SampleRate
		source["channels"] = stream.Channels

		if stream.Duration != "" {
			source["duration_s"] = stream.Duration
		}
	}

	return source
}

func buildAnalyzer(quick bool, seed uint64) mastering.Analyzer {
	if !quick {
		return mastering.NewMeasurementAnalyzer()
	}

	if seed == 0 {
		seed = uint64(time.Now().UnixNano()) //nolint:gosec // jitter seed
	}

	return mastering.NewHeuristicAnalyzer(seed)
}
