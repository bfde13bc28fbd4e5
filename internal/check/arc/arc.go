// Package arc classifies the overall dramatic shape of a track's energy
// curve into one of seven labels.
package arc

import (
	"fmt"
	"math"

	"github.com/tonipetergugic/trackcheck/internal/check/shared"
	"github.com/tonipetergugic/trackcheck/internal/types"
)

const (
	minSamples = 8

	chaoticEntropy  = 85.0
	chaoticPeaks    = 4
	plateauSpread   = 0.10
	collapseDrop    = 0.25
	collapseEndMax  = 0.40
	earlyPeakPos    = 0.35
	latePeakPos     = 0.65
	risingDelta     = 0.15
	windowFraction  = 0.20

	confidencePlateau  = 60
	confidenceCollapse = 70
	confidencePosition = 65
	confidenceRising   = 75
	confidenceFallback = 20
)

// Classify picks the single best-matching arc type. Decision order encodes
// priority: chaos beats plateau beats collapse beats peak position beats
// rising trend. Fewer than 8 curve samples yields insufficient_data.
func Classify(
	curve []types.EnergyPoint,
	zones types.DensityZones,
	peaks []types.Peak,
	primary *types.Peak,
) *types.ArcResult {
	if len(curve) < minSamples {
		return &types.ArcResult{
			Type:       types.ArcInsufficient,
			Confidence: 0,
			Highlights: []string{fmt.Sprintf("only %d energy samples available, need %d", len(curve), minSamples)},
		}
	}

	start := curve[0].T
	duration := curve[len(curve)-1].T - start

	result := &types.ArcResult{
		StartMean: shared.MeanEnergy(curve, start, start+windowFraction*duration),
		MidMean:   shared.MeanEnergy(curve, start+0.4*duration, start+0.6*duration),
		EndMean:   shared.MeanEnergy(curve, start+(1-windowFraction)*duration, start+duration),
		PeakCount: len(peaks),
	}

	peakEnergy := shared.MaxEnergy(curve, start, start+duration)

	if primary != nil && duration > 0 {
		result.PeakPosition = shared.Clamp01((primary.T - start) / duration)

		if primary.Energy > peakEnergy {
			peakEnergy = primary.Energy
		}
	}

	spread := maxOf3(result.StartMean, result.MidMean, result.EndMean) -
		minOf3(result.StartMean, result.MidMean, result.EndMean)

	switch {
	case zones.EntropyScore >= chaoticEntropy || len(peaks) >= chaoticPeaks:
		excess := math.Max((zones.EntropyScore-chaoticEntropy)/15, float64(len(peaks)-chaoticPeaks)/4)
		result.Type = types.ArcChaotic
		result.Confidence = 55 + int(math.Round(35*shared.Clamp01(excess)))
		result.Highlights = []string{
			fmt.Sprintf("entropy score %.0f (threshold 85) across %d detected peaks", zones.EntropyScore, len(peaks)),
			"energy jumps between bands with no settled direction",
		}
	case spread <= plateauSpread:
		result.Type = types.ArcPlateau
		result.Confidence = confidencePlateau
		result.Highlights = []string{
			fmt.Sprintf("start/mid/end energy means stay within %.2f of each other (limit 0.10)", spread),
		}
	case peakEnergy-result.EndMean >= collapseDrop && result.EndMean <= collapseEndMax:
		result.Type = types.ArcCollapse
		result.Confidence = confidenceCollapse
		result.Highlights = []string{
			fmt.Sprintf("energy falls %.2f from peak %.2f to an ending mean of %.2f", peakEnergy-result.EndMean, peakEnergy, result.EndMean),
		}
	case primary != nil && result.PeakPosition <= earlyPeakPos:
		result.Type = types.ArcEarlyPeak
		result.Confidence = confidencePosition
		result.Highlights = []string{
			fmt.Sprintf("primary peak lands at %.0f%% of the track (early threshold 35%%)", result.PeakPosition*100),
		}
	case primary != nil && result.PeakPosition >= latePeakPos:
		result.Type = types.ArcLateDrop
		result.Confidence = confidencePosition
		result.Highlights = []string{
			fmt.Sprintf("primary peak lands at %.0f%% of the track (late threshold 65%%)", result.PeakPosition*100),
		}
	case result.EndMean-result.StartMean >= risingDelta:
		result.Type = types.ArcRising
		result.Confidence = confidenceRising
		result.Highlights = []string{
			fmt.Sprintf("energy climbs %.2f from start mean %.2f to end mean %.2f", result.EndMean-result.StartMean, result.StartMean, result.EndMean),
		}
	default:
		result.Type = types.ArcInsufficient
		result.Confidence = confidenceFallback
		result.Highlights = []string{"no dominant energy pattern found"}
	}

	return result
}

func maxOf3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}

func minOf3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}
