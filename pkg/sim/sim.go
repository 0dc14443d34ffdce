// Package sim runs the fuzzy scheduler, PID and mixer offline over canned
// scenarios, with no hardware and no vision link.
package sim

import (
	"math"

	"github.com/tigerbot-team/linefollower/pkg/gains/fuzzy"
	"github.com/tigerbot-team/linefollower/pkg/linesensor"
	"github.com/tigerbot-team/linefollower/pkg/mixer"
	"github.com/tigerbot-team/linefollower/pkg/pid"
)

// DefaultDT is 50Hz.
const DefaultDT = 0.02

type Scenario struct {
	Speed    float64 // commanded forward speed, 0..1
	LineFrac float64 // fraction of the maximum visible line length, 0..1
	Error    float64 // lateral error from the IR array, metres
}

var DefaultScenarios = []Scenario{
	{Speed: 0.6, LineFrac: 0.8, Error: 0.00},  // fast, long line, centred
	{Speed: 0.6, LineFrac: 0.3, Error: 0.02},  // fast, short line, slightly right
	{Speed: 0.4, LineFrac: 0.2, Error: -0.03}, // slower, very short line, left
	{Speed: 0.8, LineFrac: 0.9, Error: 0.00},  // very fast, long line
	{Speed: 0.3, LineFrac: 0.5, Error: 0.00},  // moderate
}

type Row struct {
	Scenario
	Fuzzy     fuzzy.Result
	BaseSpeed float64
	U         float64
	Command   mixer.MotorCommand
}

// Simulator keeps PID memory between steps, so scenario order matters.
type Simulator struct {
	DT  float64
	pid *pid.Controller
}

func New(dt float64) *Simulator {
	return &Simulator{DT: dt, pid: pid.New(0)}
}

// Step schedules gains from the scenario's speed and line length, caps the
// base speed at the scheduled maximum and steers on the given error.
func (s *Simulator) Step(sc Scenario) Row {
	res := fuzzy.Evaluate(unit(sc.Speed)*100, unit(sc.LineFrac)*100)
	base := math.Min(sc.Speed, res.Gains.BaseSpeed)
	out := s.pid.Update(res.Gains, linesensor.Frame{Error: sc.Error}, s.DT)
	return Row{
		Scenario:  sc,
		Fuzzy:     res,
		BaseSpeed: base,
		U:         out.U,
		Command:   mixer.Mix(base, out.U),
	}
}

func (s *Simulator) Run(scenarios []Scenario) []Row {
	rows := make([]Row, 0, len(scenarios))
	for _, sc := range scenarios {
		rows = append(rows, s.Step(sc))
	}
	return rows
}

func unit(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
