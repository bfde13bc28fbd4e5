// Package density analyzes arrangement fill: whether the track crowds every
// moment with transients and high energy, or leaves it too empty.
package density

import (
	"fmt"
	"math"

	"github.com/tonipetergugic/trackcheck/internal/check/contour"
	"github.com/tonipetergugic/trackcheck/internal/check/shared"
	"github.com/tonipetergugic/trackcheck/internal/types"
)

// Linear ramp breakpoints for the two risk signals. Each sub-signal maps to
// 0..1 between its pair of thresholds and freezes outside them.
const (
	overfillDensityLow  = 0.16
	overfillDensityHigh = 0.26
	overfillLraCeil     = 6.0
	overfillLraFloor    = 4.0
	overfillCrestCeil   = 8.0
	overfillCrestFloor  = 7.0
	overfillShareLow    = 0.35
	overfillShareHigh   = 0.60

	sparseDensityCeil  = 0.10
	sparseDensityFloor = 0.04
	sparseShareCeil    = 0.25
	sparseShareFloor   = 0.00

	verdictThreshold = 0.6
)

// Analyze blends transient density, macro dynamics and high-energy share
// into an overfill and a sparse risk, then labels whichever dominates.
func Analyze(
	curve []types.EnergyPoint,
	transientDensity, lra, crest *float64,
) *types.DensityResult {
	if len(curve) == 0 && transientDensity == nil {
		return &types.DensityResult{
			Label:      types.DensityInsufficient,
			Highlights: []string{"no energy curve and no transient density available"},
		}
	}

	highShare := contour.HighEnergyShare(curve)

	// Missing sub-signals contribute zero risk rather than inflating the
	// remaining ones; an absent measurement is not evidence of a problem.
	var overfill float64

	if transientDensity != nil {
		overfill += 0.35 * shared.RampUp(*transientDensity, overfillDensityLow, overfillDensityHigh)
	}

	if lra != nil {
		overfill += 0.25 * shared.RampDown(*lra, overfillLraFloor, overfillLraCeil)
	}

	if crest != nil {
		overfill += 0.25 * shared.RampDown(*crest, overfillCrestFloor, overfillCrestCeil)
	}

	if len(curve) > 0 {
		overfill += 0.15 * shared.RampUp(highShare, overfillShareLow, overfillShareHigh)
	}

	var sparse float64

	if transientDensity != nil {
		sparse += 0.70 * shared.RampDown(*transientDensity, sparseDensityFloor, sparseDensityCeil)
	}

	if len(curve) > 0 {
		sparse += 0.30 * shared.RampDown(highShare, sparseShareFloor, sparseShareCeil)
	}

	result := &types.DensityResult{
		Overfill:   overfill,
		Sparse:     sparse,
		Score:      100 * math.Max(overfill, sparse),
		Confidence: clampInt(int(math.Round(55+45*math.Abs(overfill-sparse))), 0, 100),
	}

	switch {
	case sparse >= verdictThreshold:
		result.Label = types.DensitySparse
		result.Highlights = []string{
			fmt.Sprintf("sparse risk %.2f: few transients and %.0f%% of the track above high energy", sparse, highShare*100),
		}
	case overfill >= verdictThreshold:
		result.Label = types.DensityOverfilled
		result.Highlights = []string{
			fmt.Sprintf("overfill risk %.2f: dense transients with %.0f%% of the track above high energy", overfill, highShare*100),
		}
	default:
		result.Label = types.DensityBalanced
		result.Highlights = []string{
			fmt.Sprintf("overfill %.2f and sparse %.2f both under the 0.60 verdict line", overfill, sparse),
		}
	}

	return result
}

func clampInt(v, low, high int) int {
	if v < low {
		return low
	}

	if v > high {
		return high
	}

	return v
}
