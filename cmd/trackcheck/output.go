//nolint:wrapcheck
package main

import (
	"fmt"
	"os"

	"github.com/farcloser/primordium/format"

	trackcheck "github.com/tonipetergugic/trackcheck"
	"github.com/tonipetergugic/trackcheck/internal/types"
)

func outputResult(filePath string, result *trackcheck.Result, formatName string) error {
	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return err
	}

	data := &format.Data{
		Object: filePath,
		Meta:   buildFriendlyOutput(result),
	}

	return formatter.PrintAll([]*format.Data{data}, os.Stdout)
}

func outputPayload(object string, payload *types.FeedbackPayload, state string, formatName string) error {
	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return err
	}

	meta := map[string]any{"state": state}

	if payload != nil {
		meta["payload_version"] = payload.PayloadVersion
		meta["audio_hash"] = payload.AudioHash
		meta["recommendations"] = payload.Recommendations

		if payload.DynamicsHealth != nil {
			meta["dynamics"] = fmt.Sprintf("%d/100 (%s)", payload.DynamicsHealth.Score, payload.DynamicsHealth.Label)
		}
	}

	data := &format.Data{
		Object: object,
		Meta:   meta,
	}

	return formatter.PrintAll([]*format.Data{data}, os.Stdout)
}

func outputSimulation(filePath string, sim *types.CodecSimulation, formatName string) error {
	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return err
	}

	meta := map[string]any{
		"worst_post_peak": fmt.Sprintf("%.2f dBTP", sim.WorstPostPeakDbtp),
		"post_level":      string(sim.PostLevel),
	}

	codecs := make(map[string]any)
	for _, result := range sim.Results {
		codecs[result.Codec] = fmt.Sprintf("%.2f dBTP, %d overs, %s risk",
			result.PostTruePeakDbtp, result.OversCount, result.DistortionRisk)
	}

	meta["codecs"] = codecs

	if sim.Tip != "" {
		meta["tip"] = sim.Tip
	}

	data := &format.Data{
		Object: filePath,
		Meta:   meta,
	}

	return formatter.PrintAll([]*format.Data{data}, os.Stdout)
}

// buildFriendlyOutput creates a user-friendly summary of the analysis.
func buildFriendlyOutput(result *trackcheck.Result) map[string]any {
	meta := map[string]any{}

	if result.Dynamics != nil {
		meta["dynamics"] = fmt.Sprintf("%d/100 (%s)", result.Dynamics.Score, result.Dynamics.Label)
	}

	if result.Headroom != nil {
		meta["headroom"] = fmt.Sprintf("[%s] %s", result.Headroom.Level, result.Headroom.Highlight)
	}

	if result.Streaming != nil {
		meta["streaming_risk"] = result.Streaming.Overall
	}

	if result.Events.TruePeakOverCount > 0 {
		meta["true_peak_overs"] = result.Events.TruePeakOverCount
	}

	if structure := result.Structure; structure != nil {
		structureMeta := make(map[string]any)

		if a := structure.Arc; a != nil {
			structureMeta["arc"] = fmt.Sprintf("%s (%d%% confidence)", a.Type, a.Confidence)
		}

		if h := structure.Hook; h != nil && h.Detected {
			structureMeta["hook"] = fmt.Sprintf("%s, %.0f%% confidence, %d occurrences",
				h.PatternType, h.Confidence, len(h.Occurrences))
		}

		if b := structure.Balance; b != nil && b.Label == "measured" {
			structureMeta["balance"] = fmt.Sprintf("%.0f/100 evenness", b.Score)
		}

		if d := structure.ArrangementDensity; d != nil {
			structureMeta["density"] = fmt.Sprintf("%s (score %.0f)", d.Label, d.Score)
		}

		dropLines := make([]any, 0, len(structure.DropConfidence))
		for _, drop := range structure.DropConfidence {
			dropLines = append(dropLines, fmt.Sprintf("%.1fs: %s (%.0f%% confidence)", drop.T, drop.Label, drop.Confidence))
		}

		if len(dropLines) > 0 {
			structureMeta["drops"] = dropLines
		}

		if len(structureMeta) > 0 {
			meta["structure"] = structureMeta
		}
	}

	if len(result.Recommendations) > 0 {
		recs := make([]any, 0, len(result.Recommendations))
		for _, rec := range result.Recommendations {
			recs = append(recs, rec)
		}

		meta["recommendations"] = recs
	}

	return meta
}
