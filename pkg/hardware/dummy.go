package hardware

import (
	"io"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/tigerbot-team/linefollower/pkg/mixer"
)

// Dummy stands in for the robot on the bench: it synthesises IR readings for
// a line at a settable position and reports motor commands as text.
type Dummy struct {
	log *zap.Logger

	lock      sync.Mutex
	position  float64
	visible   bool
	fullScale int

	*mixer.Diagnostic
}

func NewDummy(channels, fullScale int, out io.Writer, log *zap.Logger) *Dummy {
	return &Dummy{
		log:        log,
		position:   float64(channels-1) / 2,
		visible:    true,
		fullScale:  fullScale,
		Diagnostic: mixer.NewDiagnostic(out),
	}
}

var _ Interface = (*Dummy)(nil)

// SetLine moves the simulated line; position is in channel index space.
func (d *Dummy) SetLine(position float64, visible bool) {
	d.lock.Lock()
	d.position = position
	d.visible = visible
	d.lock.Unlock()
}

// ReadChannels gives each sensor a reading that falls off linearly to zero
// one sensor pitch away from the line.
func (d *Dummy) ReadChannels(dst []int) error {
	d.lock.Lock()
	position, visible := d.position, d.visible
	d.lock.Unlock()

	for i := range dst {
		dst[i] = 0
		if !visible {
			continue
		}
		v := 1 - math.Abs(float64(i)-position)
		if v > 0 {
			dst[i] = int(math.Round(v * float64(d.fullScale)))
		}
	}
	return nil
}

func (d *Dummy) Shutdown() {
	d.log.Info("DHW: Shutdown")
	_ = d.SetWheels(mixer.Stop)
}
