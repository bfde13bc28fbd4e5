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

// Codec identifies a lossy target for the round-trip simulation.
type Codec string

const (
	CodecAAC Codec = "aac"
	CodecMP3 Codec = "mp3"
)

// encoderArgs maps a codec to its ffmpeg muxer and encoder names.
func encoderArgs(codec Codec) (muxer, encoder string, err error) {
	switch codec {
	case CodecAAC:
		return "adts", "aac", nil
	case CodecMP3:
		return "mp3", "libmp3lame", nil
	default:
		return "", "", fmt.Errorf("%w: unknown codec %q", fault.ErrCommandFailure, codec)
	}
}

// Encode runs a WAV stream through the given lossy encoder at the requested
// bitrate, writing the encoded stream to output.
func Encode(ctx context.Context, input io.Reader, output io.Writer, codec Codec, bitrateKbps int) error {
	slog.Debug("ffmpeg.Encode", "codec", codec, "bitrate", bitrateKbps, "stage", "start")

	ffmpegPath, found := binary.Available(name)
	if !found {
		return fmt.Errorf("%w: %s", fault.ErrMissingRequirements, name)
	}

	muxer, encoder, err := encoderArgs(codec)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, ffmpegPath,
		"-i", "-",
		"-c:a", encoder,
		"-b:a", strconv.Itoa(bitrateKbps)+"k",
		"-f", muxer,
		"-v", "quiet",
		"-",
	)

	cmd.Stdin = input
	cmd.Stdout = output

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			slog.Debug("ffmpeg.Encode", "codec", codec, "stage", "timeout")

			return fmt.Errorf("%w: after %v", fault.ErrTimeout, timeout)
		}

		slog.Debug("ffmpeg.Encode", "codec", codec, "stage", "error")

		return fmt.Errorf("%w: %s: %w", fault.ErrCommandFailure, stderr.String(), err)
	}

	return nil
}
