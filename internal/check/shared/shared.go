package shared

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/tonipetergugic/trackcheck/internal/types"
)

// MeanEnergy returns the arithmetic mean of curve samples with t in
// [start, end]. When the curve is too coarse to have a sample inside the
// interval, it falls back to the sample nearest the interval midpoint.
func MeanEnergy(curve []types.EnergyPoint, start, end float64) float64 {
	if len(curve) == 0 {
		return 0
	}

	var values []float64

	for _, point := range curve {
		if point.T >= start && point.T <= end {
			values = append(values, point.E)
		}
	}

	if len(values) == 0 {
		return nearest(curve, (start+end)/2).E
	}

	return stat.Mean(values, nil)
}

// MaxEnergy returns the highest sample energy in [start, end], falling back
// to the sample nearest the midpoint for coarse curves.
func MaxEnergy(curve []types.EnergyPoint, start, end float64) float64 {
	if len(curve) == 0 {
		return 0
	}

	found := false
	maxE := 0.0

	for _, point := range curve {
		if point.T >= start && point.T <= end {
			found = true

			if point.E > maxE {
				maxE = point.E
			}
		}
	}

	if !found {
		return nearest(curve, (start+end)/2).E
	}

	return maxE
}

// Clamp01 clamps v to the closed unit interval.
func Clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// RampUp maps v linearly to 0..1 over [low, high]: 0 at or below low, 1 at
// or above high.
func RampUp(v, low, high float64) float64 {
	if high == low {
		return 0
	}

	return Clamp01((v - low) / (high - low))
}

// RampDown maps v linearly to 0..1 over [low, high]: 1 at or below low, 0 at
// or above high.
func RampDown(v, low, high float64) float64 {
	if high == low {
		return 0
	}

	return Clamp01((high - v) / (high - low))
}

func nearest(curve []types.EnergyPoint, t float64) types.EnergyPoint {
	best := curve[0]
	bestDist := math.Abs(curve[0].T - t)

	for _, point := range curve[1:] {
		dist := math.Abs(point.T - t)
		if dist < bestDist {
			best = point
			bestDist = dist
		}
	}

	return best
}
