package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tigerbot-team/linefollower/pkg/gains"
)

func TestSetMu(t *testing.T) {
	s := Set{"Medium", 20, 50, 80}
	assert.Equal(t, 0.0, s.Mu(20))
	assert.InDelta(t, 0.5, s.Mu(35), 1e-9)
	assert.Equal(t, 1.0, s.Mu(50))
	assert.InDelta(t, 0.25, s.Mu(72.5), 1e-9)
	assert.Equal(t, 0.0, s.Mu(80))

	shoulder := Set{"Low", 0, 0, 40}
	assert.Equal(t, 0.0, shoulder.Mu(0))
	assert.InDelta(t, 0.75, shoulder.Mu(10), 1e-9)
}

func TestEvaluate(t *testing.T) {
	for _, tc := range []struct {
		x1, x2 float64
		xStar  float64
		label  string
	}{
		{60, 80, 70, "MF"},
		{60, 30, 50, "MC"},
		{40, 20, 50, "MC"},
		{80, 90, 93.91, "HF"},
		{30, 50, 51.13, "MF"},
	} {
		r := Evaluate(tc.x1, tc.x2)
		assert.Equal(t, tc.label, r.Label, "%v,%v", tc.x1, tc.x2)
		assert.InDelta(t, tc.xStar, r.XStar, 0.011, "%v,%v", tc.x1, tc.x2)
		assert.Equal(t, tc.label, r.Gains.Profile)
	}
}

func TestEvaluateActivations(t *testing.T) {
	r := Evaluate(30, 50)
	assert.InDelta(t, 0.25, r.Activations["LF"], 1e-4)
	assert.InDelta(t, 0.2857, r.Activations["MF"], 1e-4)
	assert.Equal(t, 0.0, r.Activations["HC"])
}

func TestEvaluateNoActivationFallsBackToFirstLabel(t *testing.T) {
	for _, in := range [][2]float64{{0, 0}, {100, 100}, {45, 0}, {-10, 250}} {
		r := Evaluate(in[0], in[1])
		assert.Equal(t, "LC", r.Label, "%v", in)
		assert.Equal(t, 1.0, r.XStar, "%v", in)
		assert.Equal(t, 0.30, r.Gains.BaseSpeed)
	}
}

func TestSchedulerUsesPercentages(t *testing.T) {
	var s gains.Scheduler = Scheduler{}
	g := s.Schedule(gains.Input{UseVision: true, Lookahead: 0.9, CurrentSpeed: 0.8})
	assert.Equal(t, "HF", g.Profile)
	assert.Equal(t, 0.75, g.BaseSpeed)
	assert.Equal(t, 0.40, g.Kp)

	g = s.Schedule(gains.Input{UseVision: true, Lookahead: 0.2, CurrentSpeed: 0.4})
	assert.Equal(t, "MC", g.Profile)
}

func TestSchedulerBlindUsesSlowestSet(t *testing.T) {
	g := Scheduler{}.Schedule(gains.Input{UseVision: false, Lookahead: 0, CurrentSpeed: 0.6})
	assert.Equal(t, "LC", g.Profile)
}

func TestSchedulerHonoursClamp(t *testing.T) {
	s := gains.Clamped{Scheduler: Scheduler{}, Min: 0.2, Max: 0.6}
	g := s.Schedule(gains.Input{UseVision: true, Lookahead: 0.9, CurrentSpeed: 0.8})
	assert.Equal(t, 0.6, g.BaseSpeed)
}

func TestQuantiseRoundsHalfToEven(t *testing.T) {
	assert.InDelta(t, 1.12, quantise(1.125), 1e-12)
	assert.InDelta(t, 2.38, quantise(2.375), 1e-12)
	assert.InDelta(t, 51.13, quantise(51.1283), 1e-12)
	assert.Equal(t, 1.0, quantise(0.3))
	assert.Equal(t, 100.0, quantise(150))
}
