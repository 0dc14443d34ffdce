// Package fuzzy is a rule-based alternative to the banded gain table.  It maps
// the current speed and the visible line length, both as percentages, through
// a small MIN/MAX rule base to a composite score and a gain set.
package fuzzy

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/tigerbot-team/linefollower/pkg/gains"
)

// Set is a triangular membership function with feet at A and C and peak at B.
type Set struct {
	Name    string
	A, B, C float64
}

// Mu is zero at and beyond the feet, so a set whose foot coincides with its
// peak (a shoulder) has zero membership exactly at that point.
func (s Set) Mu(x float64) float64 {
	if x <= s.A || x >= s.C {
		return 0
	}
	if x == s.B {
		return 1
	}
	if x < s.B {
		return (x - s.A) / (s.B - s.A)
	}
	return (s.C - x) / (s.C - s.B)
}

var (
	SpeedSets = []Set{
		{"Low", 0, 0, 40},
		{"Medium", 20, 50, 80},
		{"High", 60, 100, 100},
	}
	LineSets = []Set{
		{"Close", 0, 0, 50},
		{"Far", 30, 100, 100},
	}

	// OutputSets are in label order; ties in activation go to the earliest.
	OutputSets = []Set{
		{"LC", 0, 10, 25},
		{"LF", 15, 30, 45},
		{"MC", 35, 50, 65},
		{"MF", 55, 70, 85},
		{"HC", 70, 85, 95},
		{"HF", 85, 100, 100},
	}

	Rules = map[[2]string]string{
		{"Low", "Close"}:    "LC",
		{"Low", "Far"}:      "LF",
		{"Medium", "Close"}: "MC",
		{"Medium", "Far"}:   "MF",
		{"High", "Close"}:   "HC",
		{"High", "Far"}:     "HF",
	}

	GainSets = map[string]gains.ControlGains{
		"LC": {BaseSpeed: 0.30, Kp: 0.80, Ki: 0, Kd: 0.10},
		"LF": {BaseSpeed: 0.35, Kp: 0.70, Ki: 0, Kd: 0.10},
		"MC": {BaseSpeed: 0.45, Kp: 0.65, Ki: 0, Kd: 0.12},
		"MF": {BaseSpeed: 0.55, Kp: 0.55, Ki: 0, Kd: 0.14},
		"HC": {BaseSpeed: 0.65, Kp: 0.45, Ki: 0, Kd: 0.16},
		"HF": {BaseSpeed: 0.75, Kp: 0.40, Ki: 0, Kd: 0.18},
	}
)

const numSamples = 101

type Result struct {
	// XStar is the defuzzified score, quantised to [1,100].
	XStar       float64
	Label       string
	Activations map[string]float64
	Gains       gains.ControlGains
}

// Evaluate runs inference for speed percentage x1 and line length percentage
// x2; both are clamped to [0,100].
func Evaluate(x1, x2 float64) Result {
	x1 = clamp(x1, 0, 100)
	x2 = clamp(x2, 0, 100)

	acts := infer(x1, x2)
	xStar := defuzzify(acts)

	best := OutputSets[0].Name
	for _, s := range OutputSets[1:] {
		if acts[s.Name] > acts[best] {
			best = s.Name
		}
	}
	g := GainSets[best]
	g.Profile = best

	return Result{
		XStar:       quantise(xStar),
		Label:       best,
		Activations: acts,
		Gains:       g,
	}
}

func infer(x1, x2 float64) map[string]float64 {
	acts := make(map[string]float64, len(OutputSets))
	for _, s := range OutputSets {
		acts[s.Name] = 0
	}
	for _, s1 := range SpeedSets {
		mu1 := s1.Mu(x1)
		if mu1 == 0 {
			continue
		}
		for _, s2 := range LineSets {
			mu2 := s2.Mu(x2)
			if mu2 == 0 {
				continue
			}
			label := Rules[[2]string{s1.Name, s2.Name}]
			acts[label] = math.Max(acts[label], math.Min(mu1, mu2))
		}
	}
	return acts
}

// defuzzify takes the centroid of the clipped output sets.
func defuzzify(acts map[string]float64) float64 {
	samples := floats.Span(make([]float64, numSamples), 0, 100)
	var num, den float64
	for _, x := range samples {
		var mu float64
		for _, s := range OutputSets {
			a := acts[s.Name]
			if a == 0 {
				continue
			}
			mu = math.Max(mu, math.Min(a, s.Mu(x)))
		}
		num += mu * x
		den += mu
	}
	if den <= 1e-6 {
		return 0
	}
	return num / den
}

// Scheduler adapts Evaluate to gains.Scheduler.  Without trusted vision the
// arbiter's fallback lookahead of zero reads as "no visible line".
type Scheduler struct{}

func (Scheduler) Schedule(in gains.Input) gains.ControlGains {
	return Evaluate(in.CurrentSpeed*100, in.Lookahead*100).Gains
}

var _ gains.Scheduler = Scheduler{}

// quantise rounds to two decimals, halves to even, and bounds the result to
// [1,100].
func quantise(x float64) float64 {
	return clamp(math.RoundToEven(x*100)/100, 1, 100)
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
