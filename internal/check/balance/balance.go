// Package balance measures how evenly track time divides among the
// stabilized range segments, via Simpson evenness.
package balance

import (
	"fmt"

	"github.com/tonipetergugic/trackcheck/internal/types"
)

const (
	minSegments = 2
	minSamples  = 3
)

// Index computes the structural balance of the segmentation. Section types
// are ignored: only the time shares matter. Fewer than 2 valid segments or
// 3 curve samples yields an all-zero insufficient_data result.
func Index(sections []types.Section, curve []types.EnergyPoint) *types.BalanceResult {
	var segments []types.Section

	for _, section := range sections {
		if !section.IsDrop() && section.End > section.Start {
			segments = append(segments, section)
		}
	}

	if len(segments) < minSegments || len(curve) < minSamples {
		return &types.BalanceResult{Label: "insufficient_data"}
	}

	var covered float64
	for _, segment := range segments {
		covered += segment.Duration()
	}

	var (
		sumSquares    float64
		dominantIdx   int
		dominantShare float64
	)

	for i, segment := range segments {
		share := segment.Duration() / covered
		sumSquares += share * share

		if share > dominantShare {
			dominantShare = share
			dominantIdx = i
		}
	}

	n := float64(len(segments))
	evenness := (1 - sumSquares) / (1 - 1/n)

	trackDuration := curve[len(curve)-1].T - curve[0].T

	var unclassifiedPct float64
	if trackDuration > 0 && covered < trackDuration {
		unclassifiedPct = (trackDuration - covered) / trackDuration * 100
	}

	result := &types.BalanceResult{
		Label:            "measured",
		Score:            evenness * 100,
		Evenness:         evenness,
		DominantIndex:    dominantIdx,
		DominantSharePct: dominantShare * 100,
		UnclassifiedPct:  unclassifiedPct,
	}

	result.Highlights = []string{
		fmt.Sprintf("segment %d holds %.0f%% of classified time (%s)", dominantIdx+1, result.DominantSharePct, segments[dominantIdx].Type),
		fmt.Sprintf("%.0f%% of the track falls outside any classified segment", unclassifiedPct),
	}

	return result
}
