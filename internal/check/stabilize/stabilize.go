// Package stabilize reduces a raw, noisy segmentation into a minimal,
// energy-consistent one: sub-minimum ranges are absorbed by their most
// similar neighbor, then adjacent near-identical ranges are merged.
package stabilize

import (
	"math"
	"sort"

	"github.com/tonipetergugic/trackcheck/internal/check/shared"
	"github.com/tonipetergugic/trackcheck/internal/types"
)

const (
	// maxIterations bounds both merge passes to guarantee termination.
	maxIterations = 50

	// continuityDelta is the mean-energy gap below which adjacent ranges
	// are considered one section.
	continuityDelta = 0.08
)

var minDuration = map[types.SectionType]float64{
	types.SectionIntro: 6,
	types.SectionBuild: 4,
	types.SectionBreak: 4,
	types.SectionOutro: 6,
}

// Stabilize cleans the raw section list against the energy curve. Drop
// point-events pass through untouched. Insufficient data (empty curve or
// fewer than two ranges) returns the input unchanged.
func Stabilize(curve []types.EnergyPoint, sections []types.Section) []types.Section {
	var (
		ranges []types.Section
		drops  []types.Section
	)

	for _, section := range sections {
		switch {
		case section.IsDrop():
			drops = append(drops, section)
		case section.End > section.Start:
			ranges = append(ranges, section)
		default:
			// zero or negative duration, silently dropped
		}
	}

	if len(curve) == 0 || len(ranges) < 2 {
		return sections
	}

	sort.SliceStable(ranges, func(i, j int) bool {
		return ranges[i].Start < ranges[j].Start
	})

	ranges = mergeShort(curve, ranges)
	ranges = mergeContinuous(curve, ranges)

	out := make([]types.Section, 0, len(ranges)+len(drops))
	out = append(out, ranges...)
	out = append(out, drops...)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime() < out[j].StartTime()
	})

	return out
}

// mergeShort absorbs every range shorter than its type minimum into the
// neighbor with the closer mean energy, rescanning after each merge.
func mergeShort(curve []types.EnergyPoint, ranges []types.Section) []types.Section {
	for range maxIterations {
		if len(ranges) < 2 {
			break
		}

		index := -1

		for i, section := range ranges {
			minDur, known := minDuration[section.Type]
			if known && section.Duration() < minDur {
				index = i

				break
			}
		}

		if index == -1 {
			break
		}

		ranges = absorb(curve, ranges, index)
	}

	return ranges
}

// absorb merges ranges[index] into its closest-energy neighbor; the merged
// range keeps the neighbor's type and the time union. Ties favor the
// previous neighbor.
func absorb(curve []types.EnergyPoint, ranges []types.Section, index int) []types.Section {
	target := index - 1

	switch {
	case index == 0:
		target = 1
	case index == len(ranges)-1:
		target = index - 1
	default:
		mean := shared.MeanEnergy(curve, ranges[index].Start, ranges[index].End)
		prevDist := math.Abs(shared.MeanEnergy(curve, ranges[index-1].Start, ranges[index-1].End) - mean)
		nextDist := math.Abs(shared.MeanEnergy(curve, ranges[index+1].Start, ranges[index+1].End) - mean)

		if nextDist < prevDist {
			target = index + 1
		}
	}

	merged := types.Section{
		Type:  ranges[target].Type,
		Start: math.Min(ranges[index].Start, ranges[target].Start),
		End:   math.Max(ranges[index].End, ranges[target].End),
	}

	keep := min(index, target)
	ranges[keep] = merged

	return append(ranges[:keep+1], ranges[max(index, target)+1:]...)
}

// mergeContinuous joins adjacent ranges whose mean energies differ by less
// than the continuity delta. The merged range keeps the type of whichever
// side had the greater duration.
func mergeContinuous(curve []types.EnergyPoint, ranges []types.Section) []types.Section {
	for range maxIterations {
		merged := false

		for i := 0; i+1 < len(ranges); i++ {
			left, right := ranges[i], ranges[i+1]

			leftMean := shared.MeanEnergy(curve, left.Start, left.End)
			rightMean := shared.MeanEnergy(curve, right.Start, right.End)

			if math.Abs(leftMean-rightMean) >= continuityDelta {
				continue
			}

			kind := left.Type
			if right.Duration() > left.Duration() {
				kind = right.Type
			}

			ranges[i] = types.Section{
				Type:  kind,
				Start: math.Min(left.Start, right.Start),
				End:   math.Max(left.End, right.End),
			}
			ranges = append(ranges[:i+1], ranges[i+2:]...)
			merged = true

			break
		}

		if !merged {
			break
		}
	}

	return ranges
}
