// Package motor drives the two wheel motors through H-bridges whose PWM and
// direction inputs hang off a PCA9685.
package motor

import (
	"math"

	"github.com/pkg/errors"

	"github.com/tigerbot-team/linefollower/pkg/mixer"
)

// PWM is the part of the PCA9685 the driver uses.
type PWM interface {
	SetDuty(channel int, duty float64) error
	SetFull(channel int, on bool) error
}

// Channels maps one wheel onto PWM outputs.  IN1 high/IN2 low is forwards.
type Channels struct {
	PWM      int  `yaml:"pwm"`
	In1      int  `yaml:"in1"`
	In2      int  `yaml:"in2"`
	Reversed bool `yaml:"reversed"`
}

// Default channel layout of the Adafruit-style motor hat, motors M1 and M2.
var (
	DefaultLeft  = Channels{PWM: 8, In1: 10, In2: 9}
	DefaultRight = Channels{PWM: 13, In1: 11, In2: 12}
)

type Driver struct {
	pwm         PWM
	left, right Channels
}

func NewDriver(pwm PWM, left, right Channels) *Driver {
	return &Driver{
		pwm:   pwm,
		left:  left,
		right: right,
	}
}

// SetWheels applies direction first and then duty, so a wheel never runs at
// the new speed in the old direction.
func (d *Driver) SetWheels(cmd mixer.MotorCommand) error {
	if err := d.setWheel(d.left, cmd.Left); err != nil {
		return errors.Wrap(err, "left wheel")
	}
	if err := d.setWheel(d.right, cmd.Right); err != nil {
		return errors.Wrap(err, "right wheel")
	}
	return nil
}

func (d *Driver) Stop() error {
	return d.SetWheels(mixer.Stop)
}

func (d *Driver) setWheel(ch Channels, speed float64) error {
	if ch.Reversed {
		speed = -speed
	}
	forward, reverse := speed > 0, speed < 0
	if err := d.pwm.SetFull(ch.In1, forward); err != nil {
		return err
	}
	if err := d.pwm.SetFull(ch.In2, reverse); err != nil {
		return err
	}
	return d.pwm.SetDuty(ch.PWM, math.Min(math.Abs(speed), 1))
}

var _ mixer.Sink = (*Driver)(nil)
