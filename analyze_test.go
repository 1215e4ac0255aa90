package mastering_test

import (
	"context"
	"errors"
	"testing"
	"time"

	mastering "github.com/cheavireak/Mastering-Enhancement-Pipeline"
)

func heuristicTrack(name string, size int64) mastering.TrackFile {
	return mastering.TrackFile{
		Name: name,
		Size: size,
		Read: func() ([]byte, error) { return nil, nil },
	}
}

func TestHeuristicBassNarrativeFollowsSizeParity(t *testing.T) {
	t.Parallel()

	analyzer := mastering.NewHeuristicAnalyzer(1, mastering.WithLatency(time.Millisecond))

	even, err := analyzer.Analyze(context.Background(), heuristicTrack("even.wav", 1000))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if even.BassBalance != mastering.BassHeavy {
		t.Errorf("even size: bass balance %s, want heavy", even.BassBalance)
	}

	odd, err := analyzer.Analyze(context.Background(), heuristicTrack("odd.wav", 1001))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if odd.BassBalance != mastering.BassGood {
		t.Errorf("odd size: bass balance %s, want good", odd.BassBalance)
	}
}

func TestHeuristicAIArtifactsFollowSizeModThree(t *testing.T) {
	t.Parallel()

	analyzer := mastering.NewHeuristicAnalyzer(1, mastering.WithLatency(time.Millisecond))

	flagged, err := analyzer.Analyze(context.Background(), heuristicTrack("a.wav", 999))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if !flagged.AIArtifacts {
		t.Error("size divisible by 3 not flagged")
	}

	clear, err := analyzer.Analyze(context.Background(), heuristicTrack("b.wav", 1000))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if clear.AIArtifacts {
		t.Error("size not divisible by 3 flagged")
	}
}

func TestHeuristicJitterIsSeeded(t *testing.T) {
	t.Parallel()

	track := heuristicTrack("a.wav", 1000)

	first, err := mastering.NewHeuristicAnalyzer(42, mastering.WithLatency(time.Millisecond)).
		Analyze(context.Background(), track)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	second, err := mastering.NewHeuristicAnalyzer(42, mastering.WithLatency(time.Millisecond)).
		Analyze(context.Background(), track)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if first.LUFS != second.LUFS || first.DynamicRange != second.DynamicRange {
		t.Fatalf("same seed produced different jitter: %+v vs %+v", first, second)
	}

	if first.LUFS > -14 || first.LUFS < -20 {
		t.Errorf("LUFS %v outside the jitter window", first.LUFS)
	}

	if first.DynamicRange < 4 || first.DynamicRange > 12 {
		t.Errorf("dynamic range %v outside the jitter window", first.DynamicRange)
	}
}

func TestHeuristicHonorsCancellation(t *testing.T) {
	t.Parallel()

	analyzer := mastering.NewHeuristicAnalyzer(1, mastering.WithLatency(10*time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := analyzer.Analyze(ctx, heuristicTrack("a.wav", 1000))
	if !errors.Is(err, mastering.ErrAnalysis) {
		t.Fatalf("error %v, want analysis failure", err)
	}
}
