package trackcheck

import (
	"fmt"
	"sort"

	"github.com/tonipetergugic/trackcheck/internal/check/arc"
	"github.com/tonipetergugic/trackcheck/internal/check/balance"
	"github.com/tonipetergugic/trackcheck/internal/check/contour"
	"github.com/tonipetergugic/trackcheck/internal/check/density"
	"github.com/tonipetergugic/trackcheck/internal/check/drops"
	"github.com/tonipetergugic/trackcheck/internal/check/dynamics"
	"github.com/tonipetergugic/trackcheck/internal/check/headroom"
	"github.com/tonipetergugic/trackcheck/internal/check/hook"
	"github.com/tonipetergugic/trackcheck/internal/check/stabilize"
	"github.com/tonipetergugic/trackcheck/internal/check/streaming"
	"github.com/tonipetergugic/trackcheck/internal/events"
	"github.com/tonipetergugic/trackcheck/internal/types"
)

/*
Usage:

result := trackcheck.Analyze(features, overs, trackcheck.DefaultOptions())
if result.Dynamics.Label == types.DynamicsOverLimited {
    fmt.Println("Give the master some room to breathe.")
}

// Structure only
opts := trackcheck.DefaultOptions()
opts.Checks = trackcheck.ChecksStructure
result := trackcheck.Analyze(features, nil, opts)

// Iterate recommendations
for _, rec := range result.Recommendations {
    fmt.Println(rec)
}
*/

// Check represents a high-level feedback check.
type Check int

const (
	CheckArc Check = 1 << iota
	CheckDrops
	CheckHook
	CheckBalance
	CheckDensity
	CheckDynamics
	CheckHeadroom
	CheckStreaming

	// Presets.
	ChecksStructure = CheckArc | CheckDrops | CheckHook | CheckBalance | CheckDensity

	ChecksDelivery = CheckDynamics | CheckHeadroom | CheckStreaming

	ChecksAll = ChecksStructure | ChecksDelivery
)

func (c Check) String() string {
	switch c {
	case CheckArc:
		return "energy-arc"
	case CheckDrops:
		return "drop-confidence"
	case CheckHook:
		return "hook"
	case CheckBalance:
		return "structural-balance"
	case CheckDensity:
		return "arrangement-density"
	case CheckDynamics:
		return "dynamics-health"
	case CheckHeadroom:
		return "headroom"
	case CheckStreaming:
		return "streaming-risk"
	}

	return "unknown"
}

// Options configures the analysis.
type Options struct {
	Checks Check // which checks to run (default: ChecksAll)
}

// DefaultOptions returns options running every check.
func DefaultOptions() Options {
	return Options{Checks: ChecksAll}
}

// Result contains all analysis results. Raw classifier outputs hang off the
// structure for inspection; Recommendations is the human-readable digest.
type Result struct {
	Structure *types.StructureAnalysis
	Dynamics  *types.DynamicsHealth
	Headroom  *types.HeadroomReport
	Streaming *types.StreamingRisk
	Events    types.PayloadEvents

	Recommendations []string
}

// Analyze runs the feedback pipeline over a track's extracted features.
// It is a pure function: fixed inputs produce bit-identical results. Overs
// is the upstream true-peak-over event list, nil when none were recorded.
func Analyze(features *types.TrackFeatures, overs []types.Interval, opts Options) *Result {
	if opts.Checks == 0 {
		opts = DefaultOptions()
	}

	curve := sanitizeCurve(features.EnergyCurve)

	mergedOvers := events.MergeIntervals(overs)

	result := &Result{
		Events: types.PayloadEvents{
			TruePeakOvers:     mergedOvers,
			TruePeakOverCount: len(mergedOvers),
		},
	}

	sections := stabilize.Stabilize(curve, features.RawSections)
	dropEvents := dropList(sections)

	structure := &types.StructureAnalysis{
		EnergyCurve:    curve,
		DensityZones:   contour.Zones(curve),
		TensionRelease: contour.TensionRelease(curve, dropEvents),
		PrimaryPeak:    contour.PrimaryPeak(features.Peaks),
		Peaks:          features.Peaks,
		Sections:       sections,
	}
	result.Structure = structure

	if opts.Checks&CheckArc != 0 {
		structure.Arc = arc.Classify(curve, structure.DensityZones, features.Peaks, structure.PrimaryPeak)
	}

	if opts.Checks&CheckDrops != 0 {
		structure.DropConfidence = drops.Score(dropEvents, features.Peaks, features.TransientDensity)
	}

	if opts.Checks&CheckHook != 0 {
		structure.Hook = hook.Detect(curve, features.Peaks, features.TransientDensity)
	}

	if opts.Checks&CheckBalance != 0 {
		structure.Balance = balance.Index(sections, curve)
	}

	if opts.Checks&CheckDensity != 0 {
		structure.ArrangementDensity = density.Analyze(
			curve, features.TransientDensity, features.Lra, features.CrestFactorDb)
	}

	if opts.Checks&CheckDynamics != 0 {
		result.Dynamics = dynamics.Score(dynamics.Inputs{
			Lufs:              features.LufsI,
			Lra:               features.Lra,
			Crest:             features.CrestFactorDb,
			ShortCrestMean:    features.ShortTermCrestMean,
			ShortCrestP95:     features.ShortTermCrestP95,
			PunchIndex:        features.PunchIndex,
			TruePeakOverCount: len(mergedOvers),
		})
	}

	if opts.Checks&CheckHeadroom != 0 && features.TruePeakDbtp != nil {
		result.Headroom = headroom.Classify(*features.TruePeakDbtp)
	}

	if opts.Checks&CheckStreaming != 0 {
		result.Streaming = streaming.Assess(features.LufsI, features.TruePeakDbtp, len(mergedOvers))
	}

	result.Recommendations = interpretResults(result)

	return result
}

// BuildPayload assembles the persisted artifact from an analysis run. The
// codec simulation is attached as-is: nil when the round trips failed.
func BuildPayload(
	queueID, userID string,
	features *types.TrackFeatures,
	result *Result,
	sim *types.CodecSimulation,
) *types.FeedbackPayload {
	payload := &types.FeedbackPayload{
		PayloadVersion: types.PayloadVersion,
		QueueID:        queueID,
		UserID:         userID,
		AudioHash:      features.AudioHash,
		Metrics: types.PayloadMetrics{
			LufsI:            features.LufsI,
			TruePeakDbtp:     features.TruePeakDbtp,
			Lra:              features.Lra,
			CrestFactorDb:    features.CrestFactorDb,
			TransientDensity: features.TransientDensity,
			DurationSec:      features.Duration(),
		},
		DynamicsHealth:  result.Dynamics,
		Structure:       result.Structure,
		Events:          result.Events,
		Headroom:        result.Headroom,
		CodecSimulation: sim,
		Streaming:       result.Streaming,
		Recommendations: result.Recommendations,
	}

	if sim != nil && sim.Tip != "" {
		payload.Recommendations = append(payload.Recommendations, sim.Tip)
	}

	return payload
}

// sanitizeCurve drops samples that break the strictly-increasing time
// invariant instead of failing.
func sanitizeCurve(curve []types.EnergyPoint) []types.EnergyPoint {
	if sort.SliceIsSorted(curve, func(i, j int) bool { return curve[i].T < curve[j].T }) {
		return curve
	}

	clean := make([]types.EnergyPoint, 0, len(curve))

	for _, point := range curve {
		if len(clean) == 0 || point.T > clean[len(clean)-1].T {
			clean = append(clean, point)
		}
	}

	return clean
}

func dropList(sections []types.Section) []types.Section {
	var dropEvents []types.Section

	for _, section := range sections {
		if section.IsDrop() {
			dropEvents = append(dropEvents, section)
		}
	}

	return dropEvents
}

// interpretResults turns classifier outputs into the recommendation digest
// shown to the artist, citing the raw numbers that triggered each line.
func interpretResults(result *Result) []string {
	var recs []string

	if result.Dynamics != nil {
		switch result.Dynamics.Label {
		case types.DynamicsOverLimited:
			recs = append(recs, fmt.Sprintf(
				"Dynamics score %d/100: the master reads as over-limited. Back off the limiter and re-check.",
				result.Dynamics.Score))
		case types.DynamicsBorderline:
			recs = append(recs, fmt.Sprintf(
				"Dynamics score %d/100 is borderline. A touch more macro contrast would help.",
				result.Dynamics.Score))
		case types.DynamicsHealthy:
		}
	}

	if result.Headroom != nil && result.Headroom.Level != types.HeadroomInfo {
		recs = append(recs, result.Headroom.Highlight)
	}

	if result.Events.TruePeakOverCount > 0 {
		recs = append(recs, fmt.Sprintf(
			"%d true-peak-over events detected. Expect audible clipping on lossy delivery.",
			result.Events.TruePeakOverCount))
	}

	if result.Streaming != nil && result.Streaming.Overall == "HIGH" {
		recs = append(recs,
			"Loudness normalization will change this track noticeably on at least one platform.")
	}

	if result.Structure != nil {
		if d := result.Structure.ArrangementDensity; d != nil {
			switch d.Label {
			case types.DensityOverfilled:
				recs = append(recs, fmt.Sprintf(
					"Arrangement density score %.0f/100: the mix stays full throughout. Consider carving out a breather section.",
					d.Score))
			case types.DensitySparse:
				recs = append(recs, fmt.Sprintf(
					"Arrangement density score %.0f/100: long stretches carry very little energy.",
					d.Score))
			case types.DensityBalanced, types.DensityInsufficient:
			}
		}

		if a := result.Structure.Arc; a != nil && a.Type == types.ArcCollapse {
			recs = append(recs,
				"Energy collapses toward the end of the track. If that is not intentional, rework the outro.")
		}
	}

	return recs
}
