// Package hook looks for a repeating fixed-length energy window anchored at
// detected peaks: the crude but reliable signature of a recurring motif.
package hook

import (
	"fmt"
	"math"
	"sort"

	"github.com/tonipetergugic/trackcheck/internal/check/shared"
	"github.com/tonipetergugic/trackcheck/internal/types"
)

const (
	minSamples  = 12
	minDuration = 18.0

	windowHalf     = 3.0
	minWindowSpan  = 3.0
	meanTolerance  = 0.07
	peakTolerance  = 0.10
	hybridDensity  = 0.65
	baseConfidence = 55.0
	sizeStep       = 12.5
	sizeCap        = 25.0
	similarityCap  = 20.0
)

// Detect finds the largest group of near-identical 6-second energy windows.
// Grouping is greedy: every candidate seeds a group of all candidates within
// tolerance, the largest group wins, earliest seed breaks ties.
func Detect(curve []types.EnergyPoint, peaks []types.Peak, transientDensity *float64) *types.HookResult {
	var duration float64
	if len(curve) > 0 {
		duration = curve[len(curve)-1].T - curve[0].T
	}

	if len(curve) < minSamples || duration < minDuration {
		return &types.HookResult{
			Insufficient: true,
			Highlights:   []string{"track too short or curve too coarse for repetition analysis"},
		}
	}

	candidates := buildWindows(curve, peaks)
	if len(candidates) == 0 {
		return &types.HookResult{}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Start < candidates[j].Start
	})

	var (
		best     []types.HookWindow
		bestSeed types.HookWindow
	)

	for seedIdx, seed := range candidates {
		group := []types.HookWindow{seed}

		for otherIdx, other := range candidates {
			if otherIdx == seedIdx {
				continue
			}

			if math.Abs(other.MeanEnergy-seed.MeanEnergy) <= meanTolerance &&
				math.Abs(other.PeakEnergy-seed.PeakEnergy) <= peakTolerance {
				group = append(group, other)
			}
		}

		if len(group) > len(best) {
			best = group
			bestSeed = seed
		}
	}

	result := &types.HookResult{PatternType: "energy_repeat"}
	if transientDensity != nil && *transientDensity >= hybridDensity {
		result.PatternType = "hybrid"
	}

	if len(best) < 2 {
		result.PatternType = ""
		result.Highlights = []string{"no repeating energy window found across peaks"}

		return result
	}

	sort.SliceStable(best, func(i, j int) bool {
		return best[i].Start < best[j].Start
	})

	result.Detected = true
	result.Occurrences = best
	result.Confidence = baseConfidence +
		math.Min(sizeCap, float64(len(best)-2)*sizeStep) +
		similarityBonus(bestSeed, best)
	if result.Confidence > 100 {
		result.Confidence = 100
	}

	result.Highlights = []string{
		fmt.Sprintf("%d near-identical 6s energy windows, first at %.1fs", len(best), best[0].Start),
	}

	return result
}

// buildWindows creates one candidate [t-3, t+3] window per peak, clamped to
// the curve bounds and discarded when clamping leaves less than 3s.
func buildWindows(curve []types.EnergyPoint, peaks []types.Peak) []types.HookWindow {
	trackStart := curve[0].T
	trackEnd := curve[len(curve)-1].T

	windows := make([]types.HookWindow, 0, len(peaks))

	for _, peak := range peaks {
		start := math.Max(trackStart, peak.T-windowHalf)
		end := math.Min(trackEnd, peak.T+windowHalf)

		if end-start < minWindowSpan {
			continue
		}

		windows = append(windows, types.HookWindow{
			Start:      start,
			End:        end,
			MeanEnergy: shared.MeanEnergy(curve, start, end),
			PeakEnergy: shared.MaxEnergy(curve, start, end),
		})
	}

	return windows
}

// similarityBonus rewards groups whose members sit close to the seed,
// normalized against the grouping tolerances. A perfectly tight group earns
// the full bonus.
func similarityBonus(seed types.HookWindow, group []types.HookWindow) float64 {
	if len(group) < 2 {
		return 0
	}

	var deviation float64

	for _, member := range group {
		deviation += (math.Abs(member.MeanEnergy-seed.MeanEnergy)/meanTolerance +
			math.Abs(member.PeakEnergy-seed.PeakEnergy)/peakTolerance) / 2
	}

	deviation /= float64(len(group))

	return similarityCap * shared.Clamp01(1-deviation)
}
