package hook

import (
	"math"
	"testing"

	"github.com/tonipetergugic/trackcheck/internal/types"
)

func flatCurve(until float64, energy float64) []types.EnergyPoint {
	var curve []types.EnergyPoint
	for t := 0.0; t <= until; t += 2 {
		curve = append(curve, types.EnergyPoint{T: t, E: energy})
	}

	return curve
}

func peaksAt(times ...float64) []types.Peak {
	peaks := make([]types.Peak, 0, len(times))
	for _, t := range times {
		peaks = append(peaks, types.Peak{T: t, Energy: 0.5, Score: 0.5})
	}

	return peaks
}

func TestDetect_InsufficientData(t *testing.T) {
	tests := []struct {
		name  string
		curve []types.EnergyPoint
	}{
		{name: "too few samples", curve: flatCurve(10, 0.5)},
		{name: "too short", curve: []types.EnergyPoint{
			{T: 0, E: 0.5}, {T: 1, E: 0.5}, {T: 2, E: 0.5}, {T: 3, E: 0.5},
			{T: 4, E: 0.5}, {T: 5, E: 0.5}, {T: 6, E: 0.5}, {T: 7, E: 0.5},
			{T: 8, E: 0.5}, {T: 9, E: 0.5}, {T: 10, E: 0.5}, {T: 11, E: 0.5},
			{T: 12, E: 0.5},
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Detect(tc.curve, peaksAt(5), nil)

			if !got.Insufficient || got.Detected {
				t.Fatalf("expected insufficient_data, got %+v", got)
			}
		})
	}
}

func TestDetect_RepeatingWindows(t *testing.T) {
	curve := flatCurve(78, 0.5)

	got := Detect(curve, peaksAt(10, 30, 50), nil)

	if !got.Detected {
		t.Fatalf("three identical windows should detect a hook, got %+v", got)
	}

	if len(got.Occurrences) != 3 {
		t.Fatalf("expected 3 occurrences, got %d", len(got.Occurrences))
	}

	// size 3: 55 base + 12.5 size + 20 perfect-similarity bonus
	if math.Abs(got.Confidence-87.5) > 1e-9 {
		t.Fatalf("expected confidence 87.5, got %.2f", got.Confidence)
	}

	if got.PatternType != "energy_repeat" {
		t.Fatalf("expected energy_repeat pattern, got %q", got.PatternType)
	}

	for i := 1; i < len(got.Occurrences); i++ {
		if got.Occurrences[i].Start < got.Occurrences[i-1].Start {
			t.Fatalf("occurrences must be sorted by start, got %v", got.Occurrences)
		}
	}
}

func TestDetect_ConfidenceMonotonicInGroupSize(t *testing.T) {
	curve := flatCurve(78, 0.5)

	three := Detect(curve, peaksAt(10, 30, 50), nil)
	four := Detect(curve, peaksAt(10, 30, 50, 65), nil)

	if four.Confidence < three.Confidence {
		t.Fatalf("adding an identical window must not decrease confidence: %.1f -> %.1f",
			three.Confidence, four.Confidence)
	}
}

func TestDetect_HybridPattern(t *testing.T) {
	curve := flatCurve(78, 0.5)
	density := 0.7

	got := Detect(curve, peaksAt(10, 30), &density)

	if !got.Detected || got.PatternType != "hybrid" {
		t.Fatalf("high transient density should flag hybrid, got %+v", got)
	}
}

func TestDetect_DissimilarWindows(t *testing.T) {
	// Two plateaus far apart in energy: window means differ by ~0.4.
	var curve []types.EnergyPoint
	for t := 0.0; t <= 40; t += 2 {
		curve = append(curve, types.EnergyPoint{T: t, E: 0.2})
	}

	for t := 42.0; t <= 80; t += 2 {
		curve = append(curve, types.EnergyPoint{T: t, E: 0.6})
	}

	got := Detect(curve, peaksAt(10, 60), nil)

	if got.Detected {
		t.Fatalf("dissimilar windows should not detect a hook, got %+v", got)
	}

	if got.Insufficient {
		t.Fatalf("this is a negative detection, not insufficient data: %+v", got)
	}
}
