// Package streaming predicts per-platform loudness-normalization outcomes
// and the risk that normalization changes how the track sounds.
package streaming

import (
	"math"

	"github.com/tonipetergugic/trackcheck/internal/types"
)

// Platform models one streaming service's normalization policy.
type Platform struct {
	Name       string
	TargetLufs float64

	// NormalizesUp: the platform raises quiet tracks toward target.
	NormalizesUp bool

	// LimitedUp: upward gain is bounded by available true-peak headroom
	// below -1 dBTP (Apple Music's soundcheck behavior).
	LimitedUp bool
}

// Platforms is evaluated in fixed order so output is reproducible.
var Platforms = []Platform{
	{Name: "spotify", TargetLufs: -14, NormalizesUp: true},
	{Name: "youtube", TargetLufs: -14, NormalizesUp: false},
	{Name: "apple_music", TargetLufs: -16, NormalizesUp: true, LimitedUp: true},
}

const (
	upCritical   = 4.0
	upWarn       = 2.0
	downCritical = -8.0
	downWarn     = -4.0

	shortfallCritical = 3.0
	shortfallWarn     = 1.0

	limitedUpCeiling = -1.0
)

// Assess computes the normalization outcome for every platform. A missing
// integrated loudness yields neutral tones and a LOW overall (unless
// true-peak-over events force HIGH).
func Assess(lufs, truePeak *float64, truePeakOverCount int) *types.StreamingRisk {
	risk := &types.StreamingRisk{}

	for _, platform := range Platforms {
		result := types.PlatformRisk{
			Platform:   platform.Name,
			TargetLufs: platform.TargetLufs,
			Tone:       types.ToneNeutral,
		}

		if lufs != nil {
			desired := platform.TargetLufs - *lufs
			applied := applyPolicy(platform, desired, truePeak)

			result.DesiredGainDb = desired
			result.AppliedGainDb = applied
			result.Tone = tone(applied)

			if platform.LimitedUp && desired > applied {
				result.Tone = worst(result.Tone, shortfallTone(desired-applied))
			}
		}

		risk.Platforms = append(risk.Platforms, result)
	}

	risk.Overall = overall(risk.Platforms, truePeakOverCount)

	return risk
}

func applyPolicy(platform Platform, desired float64, truePeak *float64) float64 {
	if desired <= 0 {
		return desired
	}

	if !platform.NormalizesUp {
		return 0
	}

	if platform.LimitedUp {
		maxUp := 0.0
		if truePeak != nil {
			maxUp = math.Max(0, limitedUpCeiling-*truePeak)
		}

		return math.Min(desired, maxUp)
	}

	return desired
}

func tone(appliedGain float64) types.Tone {
	switch {
	case appliedGain >= upCritical:
		return types.ToneCritical
	case appliedGain >= upWarn:
		return types.ToneWarn
	case appliedGain <= downCritical:
		return types.ToneCritical
	case appliedGain <= downWarn:
		return types.ToneWarn
	default:
		return types.ToneGood
	}
}

func shortfallTone(shortfall float64) types.Tone {
	switch {
	case shortfall >= shortfallCritical:
		return types.ToneCritical
	case shortfall >= shortfallWarn:
		return types.ToneWarn
	default:
		return types.ToneGood
	}
}

// worst picks the more severe of two tones.
func worst(a, b types.Tone) types.Tone {
	rank := map[types.Tone]int{
		types.ToneNeutral:  0,
		types.ToneGood:     1,
		types.ToneWarn:     2,
		types.ToneCritical: 3,
	}

	if rank[b] > rank[a] {
		return b
	}

	return a
}

func overall(platforms []types.PlatformRisk, truePeakOverCount int) string {
	if truePeakOverCount > 0 {
		return "HIGH"
	}

	warned := false

	for _, platform := range platforms {
		switch platform.Tone {
		case types.ToneCritical:
			return "HIGH"
		case types.ToneWarn:
			warned = true
		case types.ToneGood, types.ToneNeutral:
		}
	}

	if warned {
		return "MODERATE"
	}

	return "LOW"
}
