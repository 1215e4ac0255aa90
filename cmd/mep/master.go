//nolint:wrapcheck
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	mastering "github.com/cheavireak/Mastering-Enhancement-Pipeline"
)

var errMasterArgs = errors.New("expected at least one argument: file path")

//nolint:funlen // flag declarations
func masterCommand() *cli.Command {
	return &cli.Command{
		Name:      "master",
		Usage:     "Analyze and master one or more tracks through a preset chain",
		ArgsUsage: "<file> [<file>...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "preset",
				Aliases: []string{"p"},
				Usage:   "Mastering preset: " + strings.Join(mastering.Presets(), ", "),
				Value:   "youtube_rap",
			},
			&cli.IntFlag{
				Name:    "intensity",
				Aliases: []string{"i"},
				Usage:   "Processing intensity, 0-100 (50 is neutral)",
				Value:   50,
			},
			&cli.StringFlag{
				Name:  "bass-impact",
				Usage: "Bass shelf gain: soft, heavy, savage",
				Value: "soft",
			},
			&cli.StringFlag{
				Name:  "bass-punch",
				Usage: "Compressor attack character: short, tight, long",
				Value: "tight",
			},
			&cli.StringFlag{
				Name:  "bass-weight",
				Usage: "Bass shelf corner: low, balanced, deep",
				Value: "balanced",
			},
			&cli.BoolFlag{
				Name:  "club-safe",
				Usage: "Flag the master for large mono-sub systems",
			},
			&cli.BoolFlag{
				Name:  "phone-safe",
				Usage: "High-pass sub-bass that small speakers cannot reproduce",
			},
			&cli.StringFlag{
				Name:    "out-dir",
				Aliases: []string{"o"},
				Usage:   "Directory for rendered files",
				Value:   ".",
			},
			&cli.BoolFlag{
				Name:    "quick",
				Aliases: []string{"q"},
				Usage:   "Size-based heuristic preview instead of a full measurement pass",
			},
			&cli.UintFlag{
				Name:  "seed",
				Usage: "Seed for the heuristic jitter source (0 = time-based)",
			},
			&cli.BoolFlag{
				Name:  "show-chain",
				Usage: "Include the stage chain in the output",
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
				return errMasterArgs
			}

			opts, err := buildBatchOptions(cmd)
			if err != nil {
				return err
			}

			tracks, err := tracksFromArgs(cmd.Args().Slice())
			if err != nil {
				return err
			}

			outDir := cmd.String("out-dir")
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}

			result := mastering.MasterBatch(ctx, tracks, opts)

			outputs, err := writeRendered(result, outDir)
			if err != nil {
				return err
			}

			var chain mastering.ChainSpec
			if cmd.Bool("show-chain") {
				// Flags already validated by buildBatchOptions.
				bass, _ := parseBassSettings(cmd)
				preset, _ := mastering.ParsePreset(cmd.String("preset"))
				chain = mastering.BuildChain(preset, int(cmd.Int("intensity")), bass)
			}

			return outputBatch(tracks, result, outputs, chain, cmd.String("format"))
		},
	}
}

func parseBassSettings(cmd *cli.Command) (mastering.BassSettings, error) {
	impact, err := mastering.ParseBassImpact(cmd.String("bass-impact"))
	if err != nil {
		return mastering.BassSettings{}, err
	}

	punch, err := mastering.ParseBassPunch(cmd.String("bass-punch"))
	if err != nil {
		return mastering.BassSettings{}, err
	}

	weight, err := mastering.ParseBassWeight(cmd.String("bass-weight"))
	if err != nil {
		return mastering.BassSettings{}, err
	}

	return mastering.BassSettings{
		Impact:    impact,
		Punch:     punch,
		Weight:    weight,
		ClubSafe:  cmd.Bool("club-safe"),
		PhoneSafe: cmd.Bool("phone-safe"),
	}, nil
}

func buildBatchOptions(cmd *cli.Command) (mastering.BatchOptions, error) {
	preset, err := mastering.ParsePreset(cmd.String("preset"))
	if err != nil {
		return mastering.BatchOptions{}, err
	}

	bass, err := parseBassSettings(cmd)
	if err != nil {
		return mastering.BatchOptions{}, err
	}

	return mastering.BatchOptions{
		Preset:    preset,
		Intensity: int(cmd.Int("intensity")),
		Bass:      bass,
		Analyzer:  buildAnalyzer(cmd.Bool("quick"), uint64(cmd.Uint("seed"))),
		OnProgress: func(p mastering.BatchProgress) {
			slog.Debug("batch progress",
				"phase", p.Phase.String(),
				"file", p.FileName,
				"file_percent", p.FilePercent,
				"stage", p.Stage,
				"overall_percent", p.OverallPercent,
			)
		},
	}, nil
}

// writeRendered encodes every successful render into outDir and returns the
// written path per track name.
func writeRendered(result mastering.BatchResult, outDir string) (map[string]string, error) {
	outputs := make(map[string]string, len(result))

	for name, outcome := range result {
		if outcome.Err != nil || outcome.Rendered == nil {
			continue
		}

		encoded, err := mastering.EncodeWAV(outcome.Rendered)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", name, err)
		}

		base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
		outPath := filepath.Join(outDir, base+".mastered.wav")

		if err := os.WriteFile(outPath, encoded, 0o644); err != nil { //nolint:gosec // rendered deliverable
			return nil, fmt.Errorf("writing %s: %w", outPath, err)
		}

		outputs[name] = outPath
	}

	return outputs, nil
}
