package arc

import (
	"testing"

	"github.com/tonipetergugic/trackcheck/internal/check/contour"
	"github.com/tonipetergugic/trackcheck/internal/types"
)

func curveOf(energies []float64, spacing float64) []types.EnergyPoint {
	curve := make([]types.EnergyPoint, 0, len(energies))
	for i, e := range energies {
		curve = append(curve, types.EnergyPoint{T: float64(i) * spacing, E: e})
	}

	return curve
}

func classify(curve []types.EnergyPoint, peaks []types.Peak) *types.ArcResult {
	return Classify(curve, contour.Zones(curve), peaks, contour.PrimaryPeak(peaks))
}

func TestClassify_InsufficientData(t *testing.T) {
	got := classify(curveOf([]float64{0.5, 0.5, 0.5}, 2), nil)

	if got.Type != types.ArcInsufficient || got.Confidence != 0 {
		t.Fatalf("expected insufficient_data with zero confidence, got %+v", got)
	}
}

func TestClassify_Plateau(t *testing.T) {
	energies := make([]float64, 20)
	for i := range energies {
		energies[i] = 0.5
	}

	got := classify(curveOf(energies, 2), nil)

	if got.Type != types.ArcPlateau {
		t.Fatalf("flat curve should classify as plateau, got %+v", got)
	}

	if got.Confidence != 60 {
		t.Fatalf("plateau confidence should be 60, got %d", got.Confidence)
	}
}

func TestClassify_Chaotic(t *testing.T) {
	energies := []float64{0.1, 0.9, 0.3, 0.7, 0.2, 0.8, 0.4, 0.6, 0.1, 0.9}
	peaks := []types.Peak{
		{T: 2, Score: 0.5}, {T: 6, Score: 0.6}, {T: 10, Score: 0.7},
		{T: 14, Score: 0.8}, {T: 18, Score: 0.9},
	}

	got := classify(curveOf(energies, 2), peaks)

	if got.Type != types.ArcChaotic {
		t.Fatalf("five peaks should classify as chaotic, got %+v", got)
	}

	if got.Confidence < 55 || got.Confidence > 90 {
		t.Fatalf("chaotic confidence should scale from 55, got %d", got.Confidence)
	}
}

func TestClassify_Rising(t *testing.T) {
	energies := []float64{0.55, 0.55, 0.58, 0.60, 0.62, 0.64, 0.66, 0.68, 0.72, 0.72}

	got := classify(curveOf(energies, 5), nil)

	if got.Type != types.ArcRising {
		t.Fatalf("climbing curve should classify as rising_arc, got %+v", got)
	}

	if got.Confidence != 75 {
		t.Fatalf("rising confidence should be 75, got %d", got.Confidence)
	}
}

func TestClassify_Collapse(t *testing.T) {
	energies := []float64{0.5, 0.55, 0.6, 0.7, 0.9, 0.85, 0.6, 0.4, 0.3, 0.3}

	got := classify(curveOf(energies, 5), nil)

	if got.Type != types.ArcCollapse {
		t.Fatalf("fading curve should classify as energy_collapse, got %+v", got)
	}
}

func TestClassify_PeakPosition(t *testing.T) {
	tests := []struct {
		name   string
		peakAt float64
		want   types.ArcType
	}{
		{name: "early peak", peakAt: 4, want: types.ArcEarlyPeak},
		{name: "late drop", peakAt: 40, want: types.ArcLateDrop},
	}

	// Means stay apart enough to dodge the plateau branch while the end
	// stays high enough to dodge collapse.
	energies := []float64{0.45, 0.5, 0.55, 0.6, 0.62, 0.64, 0.66, 0.68, 0.7, 0.58}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			peaks := []types.Peak{{T: tc.peakAt, Score: 0.9, Energy: 0.7}}

			got := classify(curveOf(energies, 5), peaks)

			if got.Type != tc.want {
				t.Fatalf("peak at %.0fs should classify as %s, got %+v", tc.peakAt, tc.want, got)
			}

			if got.Confidence != 65 {
				t.Fatalf("position confidence should be 65, got %d", got.Confidence)
			}
		})
	}
}
