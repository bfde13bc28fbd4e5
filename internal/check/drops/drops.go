// Package drops scores each drop event against its matching energy peak.
package drops

import (
	"math"
	"sort"

	"github.com/tonipetergugic/trackcheck/internal/check/shared"
	"github.com/tonipetergugic/trackcheck/internal/types"
)

const (
	// peakTolerance is the maximum time distance for a peak to count as the
	// drop's peak when no exact match exists.
	peakTolerance = 0.35

	// contrastScale normalizes raw peak contrast, which the extractor emits
	// in roughly 0..0.35.
	contrastScale = 0.35

	weightImpact    = 0.42
	weightPeak      = 0.22
	weightContrast  = 0.18
	weightSustain   = 0.14
	weightTransient = 0.04

	highConfidence = 75.0
	highImpact     = 70.0
	solidConfidence = 45.0
	solidImpact    = 35.0
)

// Score produces one confidence entry per drop event, ordered by time.
// Drops with neither an impact score nor a matched peak come back as
// insufficient_data rather than being filtered out.
func Score(dropEvents []types.Section, peaks []types.Peak, transientDensity *float64) []types.DropScore {
	scores := make([]types.DropScore, 0, len(dropEvents))

	for _, drop := range dropEvents {
		if !drop.IsDrop() {
			continue
		}

		scores = append(scores, scoreOne(drop, peaks, transientDensity))
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].T < scores[j].T
	})

	return scores
}

func scoreOne(drop types.Section, peaks []types.Peak, transientDensity *float64) types.DropScore {
	peak := matchPeak(drop.T, peaks)

	score := types.DropScore{
		T:           drop.T,
		ImpactScore: drop.ImpactScore,
		PeakMatched: peak != nil,
	}

	hasImpact := drop.ImpactScore > 0
	if !hasImpact && peak == nil {
		score.Label = types.DropInsufficient

		return score
	}

	var weighted, totalWeight float64

	if hasImpact {
		weighted += weightImpact * shared.Clamp01(drop.ImpactScore/100)
		totalWeight += weightImpact
	}

	if peak != nil {
		weighted += weightPeak * shared.Clamp01(peak.Score)
		weighted += weightContrast * shared.Clamp01(peak.Contrast/contrastScale)
		weighted += weightSustain * shared.Clamp01(peak.Sustain)
		totalWeight += weightPeak + weightContrast + weightSustain
	}

	if transientDensity != nil {
		weighted += weightTransient * shared.Clamp01(*transientDensity)
		totalWeight += weightTransient
	}

	score.Confidence = weighted / totalWeight * 100

	switch {
	case score.Confidence >= highConfidence && drop.ImpactScore >= highImpact:
		score.Label = types.DropHighImpact
	case score.Confidence >= solidConfidence && drop.ImpactScore >= solidImpact:
		score.Label = types.DropSolid
	default:
		score.Label = types.DropWeak
	}

	return score
}

// matchPeak prefers an exact time match, then the nearest peak within
// tolerance, else nil.
func matchPeak(t float64, peaks []types.Peak) *types.Peak {
	var (
		best     *types.Peak
		bestDist = math.Inf(1)
	)

	for i := range peaks {
		dist := math.Abs(peaks[i].T - t)
		if dist == 0 {
			return &peaks[i]
		}

		if dist <= peakTolerance && dist < bestDist {
			best = &peaks[i]
			bestDist = dist
		}
	}

	return best
}
