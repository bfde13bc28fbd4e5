// Package truepeak re-measures true peak on decoded PCM streams, used after
// codec round trips to observe encoder overshoot. 4x polyphase oversampling
// per ITU-R BS.1770.
package truepeak

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/farcloser/primordium/fault"

	"github.com/tonipetergugic/trackcheck/internal/types"
)

const (
	oversample   = 4
	tapsPerPhase = 12
	totalTaps    = oversample * tapsPerPhase

	// Decoded streams arrive as interleaved signed 16-bit little-endian PCM.
	bytesPerSample = 2
	fullScale16    = 32768.0

	noSignalDb = -120.0
)

// Polyphase lowpass at 0.25 normalized frequency, windowed sinc with a
// Kaiser window (beta=5), one normalized coefficient set per phase.
var polyphaseCoeffs [oversample][tapsPerPhase]float64

func init() {
	const beta = 5.0

	center := float64(totalTaps-1) / 2.0

	for phase := range oversample {
		for tap := range tapsPerPhase {
			n := tap*oversample + phase

			x := float64(n) - center

			sinc := 1.0
			if math.Abs(x) >= 1e-10 {
				sinc = math.Sin(math.Pi*x/oversample) / (math.Pi * x / oversample)
			}

			alpha := x / center
			if math.Abs(alpha) <= 1.0 {
				window := bessel0(beta*math.Sqrt(1-alpha*alpha)) / bessel0(beta)
				polyphaseCoeffs[phase][tap] = sinc * window * oversample
			}
		}
	}

	for phase := range oversample {
		var sum float64
		for tap := range tapsPerPhase {
			sum += polyphaseCoeffs[phase][tap]
		}

		for tap := range tapsPerPhase {
			polyphaseCoeffs[phase][tap] /= sum
		}
	}
}

// bessel0 is the modified Bessel function of the first kind, order 0.
func bessel0(x float64) float64 {
	sum := 1.0
	term := 1.0

	for k := 1; k <= 25; k++ {
		term *= (x * x) / (4.0 * float64(k) * float64(k))
		sum += term

		if term < 1e-12 {
			break
		}
	}

	return sum
}

// state carries the per-channel filter history.
type state struct {
	history [][]float64

	samplePeak float64
	truePeak   float64
	oversCount uint64
	oversMaxDb float64
	frames     uint64
}

// Measure streams interleaved s16le PCM and returns the true-peak profile:
// the interpolated peak, the raw sample peak and the count of inter-sample
// overs above 0 dBFS.
func Measure(r io.Reader, channels int) (*types.TruePeakMeasurement, error) {
	if channels < 1 {
		return nil, fmt.Errorf("%w: invalid channel count %d", fault.ErrReadFailure, channels)
	}

	st := &state{history: make([][]float64, channels)}
	for ch := range st.history {
		st.history[ch] = make([]float64, tapsPerPhase)
	}

	frameSize := bytesPerSample * channels
	buf := make([]byte, frameSize*4096)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			completeFrames := (n / frameSize) * frameSize
			data := buf[:completeFrames]

			for i := 0; i < len(data); i += frameSize {
				for ch := range channels {
					sample := float64(int16(binary.LittleEndian.Uint16(data[i+ch*bytesPerSample:]))) / fullScale16 //nolint:gosec // two's complement conversion for signed PCM samples
					st.push(ch, sample)
				}

				st.frames++
			}
		}

		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
		}
	}

	result := &types.TruePeakMeasurement{
		TruePeakDbtp: noSignalDb,
		SamplePeakDb: noSignalDb,
		OversCount:   st.oversCount,
		OversMaxDb:   st.oversMaxDb,
		Frames:       st.frames,
	}

	if st.samplePeak > 0 {
		result.SamplePeakDb = 20 * math.Log10(st.samplePeak)
	}

	if st.truePeak > 0 {
		result.TruePeakDbtp = 20 * math.Log10(st.truePeak)
	}

	return result, nil
}

// push feeds one sample through the channel's polyphase interpolator and
// updates the running peaks.
func (st *state) push(ch int, sample float64) {
	if abs := math.Abs(sample); abs > st.samplePeak {
		st.samplePeak = abs
	}

	copy(st.history[ch][0:], st.history[ch][1:])
	st.history[ch][tapsPerPhase-1] = sample

	for phase := range oversample {
		var interp float64
		for tap := range tapsPerPhase {
			interp += st.history[ch][tap] * polyphaseCoeffs[phase][tap]
		}

		absInterp := math.Abs(interp)
		if absInterp > st.truePeak {
			st.truePeak = absInterp
		}

		if absInterp > 1.0 {
			st.oversCount++

			overshoot := 20 * math.Log10(absInterp)
			if overshoot > st.oversMaxDb {
				st.oversMaxDb = overshoot
			}
		}
	}
}
