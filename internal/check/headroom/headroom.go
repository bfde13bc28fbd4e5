// Package headroom classifies the distance between a true-peak reading and
// the 0 dBTP ceiling, pre and post encode.
package headroom

import (
	"fmt"
	"math"

	"github.com/tonipetergugic/trackcheck/internal/types"
)

const (
	nearZeroHeadroom = 0.10
	lowHeadroom      = 0.30

	// tipThreshold is the post-encode true peak at which the limiter-ceiling
	// tip is emitted.
	tipThreshold = -0.2

	riskHighPeak     = 1.0
	riskModeratePeak = 0.3
	riskModerateOver = 5

	// LimiterTip is the fixed recommendation for hot post-encode peaks.
	LimiterTip = "Set your limiter ceiling to -1.0 dBTP to leave room for codec overshoot."
)

// Classify maps a source true-peak reading to its headroom tier.
func Classify(truePeakDbtp float64) *types.HeadroomReport {
	report := &types.HeadroomReport{
		TruePeakDbtp: truePeakDbtp,
		HeadroomDb:   0 - truePeakDbtp,
	}

	switch {
	case report.HeadroomDb <= 0:
		report.Level = types.HeadroomCritical
		report.Highlight = fmt.Sprintf("true peak %.2f dBTP is at or above the digital ceiling", truePeakDbtp)
	case report.HeadroomDb <= nearZeroHeadroom:
		report.Level = types.HeadroomCritical
		report.Highlight = fmt.Sprintf("true peak %.2f dBTP leaves virtually no headroom", truePeakDbtp)
	case report.HeadroomDb <= lowHeadroom:
		report.Level = types.HeadroomWarn
		report.Highlight = fmt.Sprintf("true peak %.2f dBTP leaves only %.2f dB of headroom", truePeakDbtp, report.HeadroomDb)
	default:
		report.Level = types.HeadroomInfo
		report.Highlight = fmt.Sprintf("true peak %.2f dBTP leaves %.2f dB of headroom", truePeakDbtp, report.HeadroomDb)
	}

	return report
}

// Risk labels a single codec round trip from its post-encode true peak and
// sample-over count.
func Risk(postTruePeakDbtp float64, oversCount uint64) types.DistortionRisk {
	switch {
	case postTruePeakDbtp > riskHighPeak:
		return types.RiskHigh
	case postTruePeakDbtp > riskModeratePeak || oversCount >= riskModerateOver:
		return types.RiskModerate
	default:
		return types.RiskLow
	}
}

// Aggregate folds the per-codec round trip results into one simulation
// verdict: the worst (highest) post-encode peak drives the post-encode
// headroom tier, and hot peaks earn the limiter tip. Nil when results are
// incomplete.
func Aggregate(results []types.CodecResult) *types.CodecSimulation {
	if len(results) == 0 {
		return nil
	}

	worst := math.Inf(-1)

	for _, result := range results {
		if result.PostTruePeakDbtp > worst {
			worst = result.PostTruePeakDbtp
		}
	}

	sim := &types.CodecSimulation{
		Results:           results,
		WorstPostPeakDbtp: worst,
		PostHeadroomDb:    0 - worst,
		PostLevel:         Classify(worst).Level,
	}

	if worst >= tipThreshold {
		sim.Tip = LimiterTip
	}

	return sim
}
