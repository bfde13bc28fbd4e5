package stabilize

import (
	"reflect"
	"testing"

	"github.com/tonipetergugic/trackcheck/internal/types"
)

func flatCurve(from, to, step, energy float64) []types.EnergyPoint {
	var curve []types.EnergyPoint
	for t := from; t <= to; t += step {
		curve = append(curve, types.EnergyPoint{T: t, E: energy})
	}

	return curve
}

func steppedCurve(levels map[[2]float64]float64) []types.EnergyPoint {
	var curve []types.EnergyPoint
	for span, energy := range levels {
		for t := span[0]; t <= span[1]; t += 2 {
			curve = append(curve, types.EnergyPoint{T: t, E: energy})
		}
	}

	return curve
}

func TestStabilize_InsufficientData(t *testing.T) {
	sections := []types.Section{
		{Type: types.SectionIntro, Start: 0, End: 3},
		{Type: types.SectionBuild, Start: 3, End: 60},
	}

	if got := Stabilize(nil, sections); !reflect.DeepEqual(got, sections) {
		t.Fatalf("empty curve should return input unchanged, got %v", got)
	}

	single := []types.Section{{Type: types.SectionBuild, Start: 0, End: 3}}
	if got := Stabilize(flatCurve(0, 60, 2, 0.5), single); !reflect.DeepEqual(got, single) {
		t.Fatalf("single range should return input unchanged, got %v", got)
	}
}

func TestStabilize_ShortRangeAbsorbed(t *testing.T) {
	curve := []types.EnergyPoint{
		{T: 1, E: 0.2},
		{T: 5, E: 0.9}, {T: 15, E: 0.9}, {T: 25, E: 0.9},
		{T: 35, E: 0.9}, {T: 45, E: 0.9}, {T: 55, E: 0.9},
	}
	sections := []types.Section{
		{Type: types.SectionIntro, Start: 0, End: 3},
		{Type: types.SectionBuild, Start: 3, End: 60},
	}

	got := Stabilize(curve, sections)

	want := []types.Section{{Type: types.SectionBuild, Start: 0, End: 60}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("short intro should merge into build: got %v, want %v", got, want)
	}
}

func TestStabilize_EnergyContinuityMerge(t *testing.T) {
	curve := steppedCurve(map[[2]float64]float64{
		{1, 9}:   0.2,
		{11, 29}: 0.8,
		{31, 43}: 0.78,
	})
	sections := []types.Section{
		{Type: types.SectionIntro, Start: 0, End: 10},
		{Type: types.SectionBuild, Start: 10, End: 30},
		{Type: types.SectionBreak, Start: 30, End: 44},
	}

	got := Stabilize(curve, sections)

	want := []types.Section{
		{Type: types.SectionIntro, Start: 0, End: 10},
		{Type: types.SectionBuild, Start: 10, End: 44},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("near-identical neighbors should merge keeping the longer type: got %v, want %v", got, want)
	}
}

func TestStabilize_DropsCarriedThrough(t *testing.T) {
	curve := steppedCurve(map[[2]float64]float64{
		{1, 19}:  0.3,
		{21, 59}: 0.9,
	})
	sections := []types.Section{
		{Type: types.SectionDrop, T: 21, Impact: 0.8, ImpactScore: 80},
		{Type: types.SectionIntro, Start: 0, End: 20},
		{Type: types.SectionBuild, Start: 20, End: 60},
	}

	got := Stabilize(curve, sections)

	if len(got) != 3 {
		t.Fatalf("expected intro, build and drop, got %v", got)
	}

	if got[0].Type != types.SectionIntro || got[1].Type != types.SectionDrop || got[2].Type != types.SectionBuild {
		t.Fatalf("expected time-sorted output with drop in place, got %v", got)
	}

	if got[1].ImpactScore != 80 {
		t.Fatalf("drop event should pass through unmodified, got %v", got[1])
	}
}

func TestStabilize_Idempotent(t *testing.T) {
	curve := steppedCurve(map[[2]float64]float64{
		{1, 9}:   0.2,
		{11, 29}: 0.8,
		{31, 43}: 0.78,
		{45, 70}: 0.3,
	})
	sections := []types.Section{
		{Type: types.SectionIntro, Start: 0, End: 10},
		{Type: types.SectionBuild, Start: 10, End: 30},
		{Type: types.SectionBreak, Start: 30, End: 44},
		{Type: types.SectionOutro, Start: 44, End: 71},
		{Type: types.SectionDrop, T: 30, Impact: 0.5, ImpactScore: 50},
	}

	once := Stabilize(curve, sections)
	twice := Stabilize(curve, once)

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("stabilizing stabilized output must be a no-op: %v vs %v", once, twice)
	}
}

func TestStabilize_InvalidRangesFiltered(t *testing.T) {
	curve := steppedCurve(map[[2]float64]float64{
		{1, 19}:  0.3,
		{21, 59}: 0.9,
	})
	sections := []types.Section{
		{Type: types.SectionIntro, Start: 0, End: 20},
		{Type: types.SectionBreak, Start: 25, End: 25}, // zero duration
		{Type: types.SectionBuild, Start: 20, End: 60},
	}

	got := Stabilize(curve, sections)

	for _, section := range got {
		if !section.IsDrop() && section.Duration() <= 0 {
			t.Fatalf("zero-duration range should have been filtered, got %v", got)
		}
	}

	if len(got) != 2 {
		t.Fatalf("expected two ranges, got %v", got)
	}
}
