package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"

	"github.com/farcloser/primordium/fault"

	"github.com/cheavireak/Mastering-Enhancement-Pipeline/internal/integration/binary"
)

// Transcode converts the first audio stream of any container ffmpeg can read
// into a RIFF/WAVE stream carrying 32-bit integer PCM at the source rate and
// channel layout. ffmpeg cannot backpatch chunk sizes on a pipe, so the
// consumer must tolerate a streamed data-chunk size.
func Transcode(ctx context.Context, input io.Reader, output io.Writer) error {
	slog.Debug("ffmpeg.Transcode", "stage", "start")

	ffmpegPath, found := binary.Available(name)
	if !found {
		return fmt.Errorf("%w: %s", fault.ErrMissingRequirements, name)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, ffmpegPath,
		"-i", "-",
		"-map", "0:a:0",
		"-f", "wav",
		"-acodec", "pcm_s32le",
		"-v", "quiet",
		"-",
	)

	cmd.Stdin = input
	cmd.Stdout = output

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			slog.Debug("ffmpeg.Transcode", "stage", "timeout")

			return fmt.Errorf("%w: after %v", fault.ErrTimeout, timeout)
		}

		slog.Debug("ffmpeg.Transcode", "stage", "error")

		return fmt.Errorf("%w: %s: %w", fault.ErrCommandFailure, stderr.String(), err)
	}

	return nil
}
