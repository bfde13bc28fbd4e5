// Package events normalizes discrete measurement events before they enter a
// payload.
package events

import (
	"sort"

	"github.com/tonipetergugic/trackcheck/internal/types"
)

// mergeGap joins over intervals separated by less than this many seconds.
const mergeGap = 0.1

// MergeIntervals sorts the intervals by start and coalesces overlapping or
// near-adjacent ones. The input is not modified.
func MergeIntervals(intervals []types.Interval) []types.Interval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]types.Interval, len(intervals))
	copy(sorted, intervals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	merged := []types.Interval{sorted[0]}

	for _, interval := range sorted[1:] {
		last := &merged[len(merged)-1]
		if interval.Start <= last.End+mergeGap {
			if interval.End > last.End {
				last.End = interval.End
			}

			continue
		}

		merged = append(merged, interval)
	}

	return merged
}
