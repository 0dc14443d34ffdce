// Package pid is the steering controller.
package pid

import (
	"github.com/tigerbot-team/linefollower/pkg/gains"
	"github.com/tigerbot-team/linefollower/pkg/linesensor"
)

// State is the controller memory carried between ticks.  It's only ever
// replaced as a whole.
type State struct {
	Integral      float64
	PreviousError float64
}

type Output struct {
	BaseSpeed float64
	U         float64
}

type Controller struct {
	state State

	// speedFactor compounds the halving of base speed over consecutive ticks
	// without the line.
	speedFactor float64

	// IntegralLimit bounds |Integral| when positive.  Zero means unbounded; the
	// integral is then only cleared by losing the line.
	IntegralLimit float64
}

func New(integralLimit float64) *Controller {
	return &Controller{
		speedFactor:   1,
		IntegralLimit: integralLimit,
	}
}

func (c *Controller) State() State {
	return c.state
}

// Reset clears all controller memory.
func (c *Controller) Reset() {
	c.state = State{}
	c.speedFactor = 1
}

// Update runs one step.  When the line is lost the speed is halved (again, if
// it was already lost last tick), the memory is cleared, and no correction is
// applied.
func (c *Controller) Update(g gains.ControlGains, f linesensor.Frame, dt float64) Output {
	if f.Lost {
		c.state = State{}
		c.speedFactor *= 0.5
		return Output{BaseSpeed: g.BaseSpeed * c.speedFactor}
	}
	c.speedFactor = 1

	e := f.Error
	var derivative float64
	integral := c.state.Integral
	if dt > 0 {
		integral += e * dt
		derivative = (e - c.state.PreviousError) / dt
	}
	if c.IntegralLimit > 0 {
		if integral > c.IntegralLimit {
			integral = c.IntegralLimit
		} else if integral < -c.IntegralLimit {
			integral = -c.IntegralLimit
		}
	}
	c.state = State{Integral: integral, PreviousError: e}

	return Output{
		BaseSpeed: g.BaseSpeed,
		U:         g.Kp*e + g.Ki*integral + g.Kd*derivative,
	}
}
