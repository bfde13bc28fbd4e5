package balance

import (
	"math"
	"testing"

	"github.com/tonipetergugic/trackcheck/internal/types"
)

func curveSpanning(until float64) []types.EnergyPoint {
	var curve []types.EnergyPoint
	for t := 0.0; t <= until; t += 5 {
		curve = append(curve, types.EnergyPoint{T: t, E: 0.5})
	}

	return curve
}

func TestIndex_InsufficientData(t *testing.T) {
	tests := []struct {
		name     string
		sections []types.Section
		curve    []types.EnergyPoint
	}{
		{
			name:     "one segment",
			sections: []types.Section{{Type: types.SectionBuild, Start: 0, End: 60}},
			curve:    curveSpanning(60),
		},
		{
			name: "curve too coarse",
			sections: []types.Section{
				{Type: types.SectionIntro, Start: 0, End: 30},
				{Type: types.SectionBuild, Start: 30, End: 60},
			},
			curve: []types.EnergyPoint{{T: 0, E: 0.5}, {T: 60, E: 0.5}},
		},
		{
			name: "only drops",
			sections: []types.Section{
				{Type: types.SectionDrop, T: 10},
				{Type: types.SectionDrop, T: 40},
			},
			curve: curveSpanning(60),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Index(tc.sections, tc.curve)

			if got.Label != "insufficient_data" || got.Score != 0 || got.Evenness != 0 {
				t.Fatalf("expected all-zero insufficient_data, got %+v", got)
			}
		})
	}
}

func TestIndex_PerfectBalance(t *testing.T) {
	sections := []types.Section{
		{Type: types.SectionIntro, Start: 0, End: 30},
		{Type: types.SectionOutro, Start: 30, End: 60},
	}

	got := Index(sections, curveSpanning(60))

	if math.Abs(got.Evenness-1) > 1e-9 {
		t.Fatalf("equal halves should have evenness 1, got %+v", got)
	}

	if math.Abs(got.DominantSharePct-50) > 1e-9 {
		t.Fatalf("dominant share should be 50%%, got %+v", got)
	}

	if got.UnclassifiedPct != 0 {
		t.Fatalf("fully covered track should have 0%% unclassified, got %+v", got)
	}
}

func TestIndex_DominantSegment(t *testing.T) {
	sections := []types.Section{
		{Type: types.SectionBuild, Start: 0, End: 40},
		{Type: types.SectionOutro, Start: 40, End: 50},
	}

	got := Index(sections, curveSpanning(60))

	// shares 0.8/0.2: evenness = (1 - 0.68) / 0.5 = 0.64
	if math.Abs(got.Evenness-0.64) > 1e-9 {
		t.Fatalf("expected evenness 0.64, got %+v", got)
	}

	if got.DominantIndex != 0 || math.Abs(got.DominantSharePct-80) > 1e-9 {
		t.Fatalf("expected segment 0 dominating at 80%%, got %+v", got)
	}

	// 10 of 60 seconds uncovered
	if math.Abs(got.UnclassifiedPct-100.0/6) > 1e-9 {
		t.Fatalf("expected ~16.7%% unclassified, got %+v", got)
	}
}

func TestIndex_EvennessBounds(t *testing.T) {
	tests := []struct {
		name     string
		sections []types.Section
	}{
		{
			name: "extreme skew",
			sections: []types.Section{
				{Type: types.SectionIntro, Start: 0, End: 58},
				{Type: types.SectionOutro, Start: 58, End: 60},
			},
		},
		{
			name: "three way",
			sections: []types.Section{
				{Type: types.SectionIntro, Start: 0, End: 10},
				{Type: types.SectionBuild, Start: 10, End: 45},
				{Type: types.SectionOutro, Start: 45, End: 60},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Index(tc.sections, curveSpanning(60))

			if got.Evenness < 0 || got.Evenness > 1 {
				t.Fatalf("evenness out of bounds: %+v", got)
			}

			var maxShare float64
			var total float64
			for _, section := range tc.sections {
				total += section.Duration()
			}

			for _, section := range tc.sections {
				maxShare = math.Max(maxShare, section.Duration()/total*100)
			}

			if math.Abs(got.DominantSharePct-maxShare) > 1e-9 {
				t.Fatalf("dominant share %.2f should be the max share %.2f", got.DominantSharePct, maxShare)
			}
		})
	}
}
