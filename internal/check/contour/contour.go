// Package contour derives the shared curve-level features every structural
// classifier reads: energy band distribution, tension/release indices and
// the primary peak.
package contour

import (
	"math"

	"github.com/tonipetergugic/trackcheck/internal/types"
)

const (
	bands = 4

	// stepDelta is the minimum energy change between adjacent curve samples
	// counted as a rise or fall.
	stepDelta = 0.02

	// HighEnergyThreshold marks a sample as high energy.
	HighEnergyThreshold = 0.75
)

// Zones buckets curve samples into four equal energy bands and scores the
// distribution's Shannon entropy, normalized to 0..100.
func Zones(curve []types.EnergyPoint) types.DensityZones {
	var zones types.DensityZones

	if len(curve) == 0 {
		return zones
	}

	counts := [bands]int{}

	for _, point := range curve {
		idx := int(point.E * bands)
		if idx >= bands {
			idx = bands - 1
		}

		if idx < 0 {
			idx = 0
		}

		counts[idx]++
	}

	total := float64(len(curve))
	entropy := 0.0

	for i, count := range counts {
		share := float64(count) / total
		zones.Distribution[i] = share

		if share > 0 {
			entropy -= share * math.Log(share)
		}
	}

	zones.EntropyScore = entropy / math.Log(bands) * 100

	return zones
}

// TensionRelease counts the fraction of curve steps rising (tension) and
// falling (release) by more than the step threshold. Balance is 1 when the
// two fractions match and decays toward 0 as one dominates.
func TensionRelease(curve []types.EnergyPoint, drops []types.Section) types.TensionRelease {
	result := types.TensionRelease{Drops: drops}

	if len(curve) < 2 {
		result.Balance = 1

		return result
	}

	steps := float64(len(curve) - 1)

	var rising, falling int

	for i := 1; i < len(curve); i++ {
		delta := curve[i].E - curve[i-1].E
		switch {
		case delta > stepDelta:
			rising++
		case delta < -stepDelta:
			falling++
		}
	}

	result.Tension = float64(rising) / steps
	result.Release = float64(falling) / steps

	sum := result.Tension + result.Release
	if sum < 1e-9 {
		result.Balance = 1
	} else {
		result.Balance = 1 - math.Abs(result.Tension-result.Release)/sum
	}

	return result
}

// PrimaryPeak returns the highest-scoring peak, nil when there are none.
// Score ties resolve to the earliest peak.
func PrimaryPeak(peaks []types.Peak) *types.Peak {
	if len(peaks) == 0 {
		return nil
	}

	best := peaks[0]

	for _, peak := range peaks[1:] {
		if peak.Score > best.Score || (peak.Score == best.Score && peak.T < best.T) {
			best = peak
		}
	}

	return &best
}

// HighEnergyShare is the fraction of curve samples at or above the
// high-energy threshold.
func HighEnergyShare(curve []types.EnergyPoint) float64 {
	if len(curve) == 0 {
		return 0
	}

	var high int

	for _, point := range curve {
		if point.E >= HighEnergyThreshold {
			high++
		}
	}

	return float64(high) / float64(len(curve))
}
