package mastering_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	mastering "github.com/cheavireak/Mastering-Enhancement-Pipeline"
)

func testBuffer(channels, frames int) *mastering.AudioBuffer {
	buf := &mastering.AudioBuffer{
		SampleRate: 44100,
		Depth:      16,
		Samples:    make([][]float64, channels),
	}

	for ch := range buf.Samples {
		buf.Samples[ch] = make([]float64, frames)
		for i := range frames {
			buf.Samples[ch][i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/44100)
		}
	}

	return buf
}

type tickLog struct {
	mu    sync.Mutex
	ticks []int
	last  string
}

func (l *tickLog) record(percent int, stage string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.ticks = append(l.ticks, percent)
	l.last = stage
}

func TestRenderEmitsTerminalTick(t *testing.T) {
	t.Parallel()

	input := testBuffer(2, 44100)
	chain := mastering.BuildChain(mastering.PresetClean, 50, mastering.DefaultBassSettings())

	log := &tickLog{}

	output, err := mastering.Render(context.Background(), input, chain, log.record)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if output.Frames() != input.Frames() || output.Channels() != input.Channels() {
		t.Fatal("output geometry differs from input")
	}

	log.mu.Lock()
	defer log.mu.Unlock()

	if len(log.ticks) == 0 || log.ticks[len(log.ticks)-1] != 100 || log.last != "Done" {
		t.Fatalf("ticks %v (last stage %q), want trailing (100, Done)", log.ticks, log.last)
	}

	for i := 1; i < len(log.ticks); i++ {
		if log.ticks[i] < log.ticks[i-1] {
			t.Fatalf("progress regressed: %v", log.ticks)
		}
	}
}

func TestRenderFailureEmitsNoTerminalTick(t *testing.T) {
	t.Parallel()

	log := &tickLog{}

	_, err := mastering.Render(context.Background(), testBuffer(1, 1024), nil, log.record)
	if !errors.Is(err, mastering.ErrRender) {
		t.Fatalf("error %v, want render failure", err)
	}

	log.mu.Lock()
	defer log.mu.Unlock()

	for _, percent := range log.ticks {
		if percent == 100 {
			t.Fatalf("failed render emitted terminal tick: %v", log.ticks)
		}
	}
}

func wavTrack(t *testing.T, name string, buf *mastering.AudioBuffer) mastering.TrackFile {
	t.Helper()

	encoded, err := mastering.EncodeWAV(buf)
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}

	return mastering.TrackFile{
		Name: name,
		Size: int64(len(encoded)),
		Read: func() ([]byte, error) { return encoded, nil },
	}
}

func TestDecodeTrackRoundTrip(t *testing.T) {
	t.Parallel()

	original := testBuffer(2, 2048)
	track := wavTrack(t, "tone.wav", original)

	decoded, err := mastering.DecodeTrack(context.Background(), track)
	if err != nil {
		t.Fatalf("DecodeTrack: %v", err)
	}

	if decoded.SampleRate != original.SampleRate ||
		decoded.Channels() != original.Channels() ||
		decoded.Frames() != original.Frames() {
		t.Fatal("decoded geometry differs from encoded buffer")
	}
}

func TestMasterBatchIsolatesFailures(t *testing.T) {
	t.Parallel()

	good := wavTrack(t, "good.wav", testBuffer(2, 8192))
	bad := mastering.TrackFile{
		Name: "bad.bin",
		Size: 12,
		Read: func() ([]byte, error) { return []byte("not a track"), nil },
	}
	alsoGood := wavTrack(t, "also-good.wav", testBuffer(1, 8192))

	result := mastering.MasterBatch(context.Background(), []mastering.TrackFile{good, bad, alsoGood},
		mastering.BatchOptions{
			Preset:    mastering.PresetYoutubeRap,
			Intensity: 50,
			Bass:      mastering.DefaultBassSettings(),
			Analyzer:  mastering.NewHeuristicAnalyzer(1, mastering.WithLatency(time.Millisecond)),
		})

	if len(result) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(result))
	}

	for _, name := range []string{"good.wav", "also-good.wav"} {
		outcome := result[name]
		if outcome.Err != nil {
			t.Errorf("%s: unexpected error %v", name, outcome.Err)
		}

		if outcome.Rendered == nil || outcome.Analysis == nil {
			t.Errorf("%s: incomplete outcome", name)
		}
	}

	if err := result["bad.bin"].Err; err == nil || !errors.Is(err, mastering.ErrDecode) {
		t.Fatalf("bad.bin error %v, want decode failure", err)
	}
}
