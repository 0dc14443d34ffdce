// Package gains picks the PID gains and base speed for each control tick.
package gains

import "fmt"

// ControlGains is one tick's controller parameters.
type ControlGains struct {
	BaseSpeed float64 `yaml:"baseSpeed"`
	Kp        float64 `yaml:"kp"`
	Ki        float64 `yaml:"ki"`
	Kd        float64 `yaml:"kd"`

	// Profile names the table row or rule that produced these gains.
	Profile string `yaml:"-"`
}

func (g ControlGains) String() string {
	return fmt.Sprintf("%s(v=%.2f kp=%.2f ki=%.2f kd=%.2f)", g.Profile, g.BaseSpeed, g.Kp, g.Ki, g.Kd)
}

// Input is everything a scheduler may look at.
type Input struct {
	UseVision bool
	Lookahead float64

	// CurrentSpeed is the base speed commanded on the previous tick.
	CurrentSpeed float64
}

// Scheduler maps the arbitration result to gains.  Implementations must be
// pure: the same Input always gives the same ControlGains.
type Scheduler interface {
	Schedule(in Input) ControlGains
}

const (
	DefaultMinBaseSpeed = 0.20
	DefaultMaxBaseSpeed = 0.80
)

// Clamped bounds the base speed of whatever Scheduler it wraps.
type Clamped struct {
	Scheduler Scheduler
	Min, Max  float64
}

func (c Clamped) Schedule(in Input) ControlGains {
	g := c.Scheduler.Schedule(in)
	if g.BaseSpeed < c.Min {
		g.BaseSpeed = c.Min
	} else if g.BaseSpeed > c.Max {
		g.BaseSpeed = c.Max
	}
	return g
}
