// Package mixer turns base speed and steering correction into wheel commands.
package mixer

import (
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/pkg/errors"
)

// MotorCommand is a pair of wheel speeds in [-1,1]; positive drives forwards.
type MotorCommand struct {
	Left, Right float64
}

var Stop = MotorCommand{}

func (m MotorCommand) String() string {
	return fmt.Sprintf("L=%+.3f R=%+.3f", m.Left, m.Right)
}

// Mix steers by slowing one wheel and speeding up the other.  Each wheel
// saturates on its own; the pair is not rescaled.
func Mix(baseSpeed, u float64) MotorCommand {
	return MotorCommand{
		Left:  clamp(baseSpeed - u),
		Right: clamp(baseSpeed + u),
	}
}

// clamp maps NaN to a stop so that nothing outside [-1,1] reaches a sink.
func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// Sink is wherever wheel commands end up.
type Sink interface {
	SetWheels(cmd MotorCommand) error
}

// Diagnostic reports commands as text instead of driving motors.
type Diagnostic struct {
	lock sync.Mutex
	w    io.Writer
	last MotorCommand
	n    int
}

func NewDiagnostic(w io.Writer) *Diagnostic {
	return &Diagnostic{w: w}
}

func (d *Diagnostic) SetWheels(cmd MotorCommand) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.last = cmd
	d.n++
	if d.w == nil {
		return nil
	}
	if _, err := fmt.Fprintf(d.w, "M,%.3f,%.3f\n", cmd.Left, cmd.Right); err != nil {
		return errors.Wrap(err, "failed to write diagnostic command")
	}
	return nil
}

// Last returns the most recent command and how many have been sent.
func (d *Diagnostic) Last() (MotorCommand, int) {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.last, d.n
}

var _ Sink = (*Diagnostic)(nil)
