// Package dynamics computes the composite dynamics health score from macro
// dynamics, micro dynamics and transient punch.
package dynamics

import (
	"fmt"
	"math"

	"github.com/tonipetergugic/trackcheck/internal/check/shared"
	"github.com/tonipetergugic/trackcheck/internal/types"
)

// Inputs carries every optional measurement the scorer can use. Nil means
// the extractor did not produce that signal.
type Inputs struct {
	Lufs           *float64
	Lra            *float64
	Crest          *float64
	ShortCrestMean *float64
	ShortCrestP95  *float64
	PunchIndex     *float64

	TruePeakOverCount int
}

// Calibrated ramp breakpoints per signal. Crest and short-term crest share
// the same usable range.
const (
	crestFloor = 4.5
	crestCeil  = 20.0
	lraFloor   = 2.0
	lraCeil    = 30.0
	lufsQuiet  = -12.0
	lufsLoud   = -3.0
	punchFloor = 0.10
	punchCeil  = 2.0

	weightCrest      = 0.24
	weightLra        = 0.28
	weightShortCrest = 0.24
	weightPunch      = 0.16
	weightLufs       = 0.08

	healthyMin    = 78
	borderlineMin = 58

	// neutralScore is returned when no dynamics signal is available at all.
	neutralScore = 65
)

// Score computes the 0..100 health score and label. Hard caps on extreme
// loudness-range and micro-dynamics readings override the weighted result:
// a track with LRA under 2 LU can never be labeled healthy no matter what
// the other signals say.
func Score(in Inputs) *types.DynamicsHealth {
	result := &types.DynamicsHealth{
		Factors: types.DynamicsFactors{
			Lufs:  in.Lufs,
			Lra:   in.Lra,
			Crest: in.Crest,
		},
	}

	var weighted, totalWeight float64

	if in.Crest != nil {
		weighted += weightCrest * 100 * shared.RampUp(*in.Crest, crestFloor, crestCeil)
		totalWeight += weightCrest
	}

	if in.Lra != nil {
		weighted += weightLra * 100 * shared.RampUp(*in.Lra, lraFloor, lraCeil)
		totalWeight += weightLra
	}

	if shortCrest := pickShortCrest(in); shortCrest != nil {
		weighted += weightShortCrest * 100 * shared.RampUp(*shortCrest, crestFloor, crestCeil)
		totalWeight += weightShortCrest
	}

	if in.PunchIndex != nil {
		weighted += weightPunch * 100 * shared.RampUp(*in.PunchIndex, punchFloor, punchCeil)
		totalWeight += weightPunch
	}

	if in.Lufs != nil {
		weighted += weightLufs * 100 * shared.RampDown(*in.Lufs, lufsQuiet, lufsLoud)
		totalWeight += weightLufs
	}

	score := float64(neutralScore)
	if totalWeight > 0 {
		score = weighted / totalWeight
	}

	score -= oversPenalty(in.TruePeakOverCount)

	forbidHealthy := false

	if in.Lra != nil {
		switch lra := *in.Lra; {
		case lra < 1.0:
			score = math.Min(score, 64)
			forbidHealthy = true
		case lra < 1.2:
			score = math.Min(score, 64)
			forbidHealthy = true
		case lra < 1.5:
			score = math.Min(score, 72)
			forbidHealthy = true
		case lra < 2.0:
			forbidHealthy = true
		}
	}

	if in.ShortCrestP95 != nil && *in.ShortCrestP95 < 4.6 {
		score = math.Min(score, 64)
		forbidHealthy = true
	}

	if flatSignals(in) >= 2 {
		score = math.Min(score, 54)
		result.Label = types.DynamicsOverLimited
		result.Score = clampRound(score)
		result.Highlights = append(result.Highlights,
			"multiple dynamics signals flat at once: the track reads as heavily limited")

		return result
	}

	result.Score = clampRound(score)

	switch {
	case result.Score >= healthyMin && !forbidHealthy:
		result.Label = types.DynamicsHealthy
	case result.Score >= borderlineMin:
		result.Label = types.DynamicsBorderline
	default:
		result.Label = types.DynamicsOverLimited
	}

	if in.TruePeakOverCount > 0 {
		result.Highlights = append(result.Highlights,
			fmt.Sprintf("%d true-peak-over events reduced the score by %.0f points", in.TruePeakOverCount, oversPenalty(in.TruePeakOverCount)))
	}

	if forbidHealthy && result.Label == types.DynamicsBorderline {
		result.Highlights = append(result.Highlights,
			"loudness range or short-term crest too low for a healthy label")
	}

	return result
}

// pickShortCrest prefers the p95 reading over the mean.
func pickShortCrest(in Inputs) *float64 {
	if in.ShortCrestP95 != nil {
		return in.ShortCrestP95
	}

	return in.ShortCrestMean
}

func oversPenalty(count int) float64 {
	switch {
	case count == 0:
		return 0
	case count <= 2:
		return 3
	case count <= 8:
		return 8
	default:
		return 14
	}
}

// flatSignals counts how many independent measurements sit below their
// over-limited floor.
func flatSignals(in Inputs) int {
	var flat int

	if in.Crest != nil && *in.Crest < crestFloor {
		flat++
	}

	if (in.ShortCrestP95 != nil && *in.ShortCrestP95 < 5.0) ||
		(in.ShortCrestMean != nil && *in.ShortCrestMean < 4.8) {
		flat++
	}

	if in.Lra != nil && *in.Lra < lraFloor {
		flat++
	}

	return flat
}

func clampRound(v float64) int {
	if v < 0 {
		return 0
	}

	if v > 100 {
		return 100
	}

	return int(math.Round(v))
}
