package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"

	"github.com/farcloser/primordium/fault"

	"github.com/tonipetergugic/trackcheck/internal/integration/binary"
)

// Decode converts a lossy encoded stream back to interleaved s16le PCM with
// the given channel count, so the result can be re-measured.
func Decode(ctx context.Context, input io.Reader, output io.Writer, channels int) error {
	slog.Debug("ffmpeg.Decode", "channels", channels, "stage", "start")

	ffmpegPath, found := binary.Available(name)
	if !found {
		return fmt.Errorf("%w: %s", fault.ErrMissingRequirements, name)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, ffmpegPath,
		"-i", "-",
		"-acodec", "pcm_s16le",
		"-ac", strconv.Itoa(channels),
		"-f", "s16le",
		"-v", "quiet",
		"-",
	)

	cmd.Stdin = input
	cmd.Stdout = output

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			slog.Debug("ffmpeg.Decode", "stage", "timeout")

			return fmt.Errorf("%w: after %v", fault.ErrTimeout, timeout)
		}

		slog.Debug("ffmpeg.Decode", "stage", "error")

		return fmt.Errorf("%w: %s: %w", fault.ErrCommandFailure, stderr.String(), err)
	}

	return nil
}
