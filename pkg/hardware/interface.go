package hardware

import (
	"github.com/tigerbot-team/linefollower/pkg/linesensor"
	"github.com/tigerbot-team/linefollower/pkg/mixer"
)

// Interface is everything the control loop touches: the IR array on the way
// in and the wheels on the way out.
type Interface interface {
	linesensor.Source
	mixer.Sink

	// Shutdown stops the motors and releases the devices.
	Shutdown()
}
