//nolint:wrapcheck
package main

import (
	"fmt"
	"os"

	"github.com/farcloser/primordium/format"

	mastering "github.com/cheavireak/Mastering-Enhancement-Pipeline"
	"github.com/cheavireak/Mastering-Enhancement-Pipeline/internal/output"
)

func outputAnalyses(
	tracks []mastering.TrackFile,
	reports map[string]*mastering.AudioAnalysis,
	sources map[string]map[string]any,
	formatName string,
) error {
	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return err
	}

	entries := make([]*format.Data, 0, len(tracks))

	for _, track := range tracks {
		analysis, ok := reports[track.Name]
		if !ok {
			continue
		}

		meta := output.AnalysisToMap(analysis)

		if source, ok := sources[track.Name]; ok {
			meta["source"] = source
		}

		entries = append(entries, &format.Data{
			Object: track.Name,
			Meta:   meta,
		})
	}

	return formatter.PrintAll(entries, os.Stdout)
}

// outputBatch reports per-track outcomes in input order: failures with their
// error, successes with the written path and the analysis summary.
func outputBatch(
	tracks []mastering.TrackFile,
	result mastering.BatchResult,
	outputs map[string]string,
	chain mastering.ChainSpec,
	formatName string,
) error {
	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return err
	}

	entries := make([]*format.Data, 0, len(tracks))

	for _, track := range tracks {
		outcome, ok := result[track.Name]
		if !ok {
			continue
		}

		meta := map[string]any{}

		if outcome.Err != nil {
			meta["status"] = "failed"
			meta["error"] = outcome.Err.Error()
		} else {
			meta["status"] = "mastered"
			if path, ok := outputs[track.Name]; ok {
				meta["output"] = path
			}
		}

		if outcome.Analysis != nil {
			meta["analysis"] = output.AnalysisToMap(outcome.Analysis)
		}

		if outcome.AnalysisErr != nil {
			meta["analysis_error"] = outcome.AnalysisErr.Error()
		}

		if len(chain) > 0 {
			meta["chain"] = output.ChainToMap(chain)
		}

		entries = append(entries, &format.Data{
			Object: track.Name,
			Meta:   meta,
		})
	}

	failed := 0

	for _, outcome := range result {
		if outcome.Err != nil {
			failed++
		}
	}

	if err := formatter.PrintAll(entries, os.Stdout); err != nil {
		return err
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d files failed\n", failed, len(tracks))
	}

	return nil
}
