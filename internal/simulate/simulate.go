// Package simulate runs the lossy-codec round trips: encode the source to
// AAC and MP3, decode back to PCM and re-measure true peak to observe
// encoder overshoot.
package simulate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/farcloser/primordium/fault"

	"github.com/tonipetergugic/trackcheck/internal/check/headroom"
	"github.com/tonipetergugic/trackcheck/internal/integration/binary"
	"github.com/tonipetergugic/trackcheck/internal/integration/ffmpeg"
	"github.com/tonipetergugic/trackcheck/internal/integration/ffprobe"
	"github.com/tonipetergugic/trackcheck/internal/measure/truepeak"
	"github.com/tonipetergugic/trackcheck/internal/types"
)

// Codec targets mirror what the major streaming tiers actually serve.
const bitrateKbps = 128

var codecs = []ffmpeg.Codec{ffmpeg.CodecAAC, ffmpeg.CodecMP3}

// Run performs the round trip for every codec. The simulation is
// all-or-nothing: a failure on either codec path makes the whole result
// unavailable, reported as an error the caller is expected to tolerate.
func Run(ctx context.Context, sourcePath string) (*types.CodecSimulation, error) {
	for _, tool := range []string{"ffmpeg", "ffprobe"} {
		if _, err := binary.Require(tool); err != nil {
			return nil, err
		}
	}

	probed, err := ffprobe.Probe(ctx, sourcePath)
	if err != nil {
		return nil, err
	}

	channels := probed.FirstAudioChannels()

	results := make([]types.CodecResult, 0, len(codecs))

	// Each codec path is attempted independently, but a single failure makes
	// the whole simulation unavailable.
	var failed error

	for _, codec := range codecs {
		result, err := roundTrip(ctx, sourcePath, codec, channels)
		if err != nil {
			slog.Debug("simulate.Run", "codec", codec, "stage", "failed", "error", err)

			if failed == nil {
				failed = fmt.Errorf("%w: codec %s round trip: %w", fault.ErrCommandFailure, codec, err)
			}

			continue
		}

		results = append(results, *result)
	}

	if failed != nil {
		return nil, failed
	}

	return headroom.Aggregate(results), nil
}

// roundTrip encodes the source, decodes the result back to s16le PCM and
// streams it through the true-peak detector.
func roundTrip(ctx context.Context, sourcePath string, codec ffmpeg.Codec, channels int) (*types.CodecResult, error) {
	source, err := os.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}
	defer source.Close()

	var encoded bytes.Buffer

	if err := ffmpeg.Encode(ctx, source, &encoded, codec, bitrateKbps); err != nil {
		return nil, err
	}

	reader, writer := io.Pipe()

	go func() {
		writer.CloseWithError(ffmpeg.Decode(ctx, &encoded, writer, channels))
	}()

	measured, err := truepeak.Measure(reader, channels)
	if err != nil {
		return nil, err
	}

	return &types.CodecResult{
		Codec:            string(codec),
		BitrateKbps:      bitrateKbps,
		PostTruePeakDbtp: measured.TruePeakDbtp,
		OversCount:       measured.OversCount,
		DistortionRisk:   headroom.Risk(measured.TruePeakDbtp, measured.OversCount),
	}, nil
}
