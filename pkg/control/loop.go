// Package control runs the fixed-period line following loop.
package control

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tigerbot-team/linefollower/pkg/arbiter"
	"github.com/tigerbot-team/linefollower/pkg/config"
	"github.com/tigerbot-team/linefollower/pkg/gains"
	"github.com/tigerbot-team/linefollower/pkg/linesensor"
	"github.com/tigerbot-team/linefollower/pkg/mixer"
	"github.com/tigerbot-team/linefollower/pkg/pid"
	"github.com/tigerbot-team/linefollower/pkg/vision"
)

const statusInterval = 5 * time.Second

// State is what the loop carries from one tick to the next.
type State struct {
	PID           pid.State
	Ticks         uint64
	Overruns      uint64
	LastBaseSpeed float64
	LastProfile   string
	UsingVision   bool
	LineLost      bool
	Faulted       bool
}

// Telemetry describes one tick from input to output.
type Telemetry struct {
	Now      time.Time
	Sample   vision.VisionSample
	Decision arbiter.Decision
	Gains    gains.ControlGains
	Frame    linesensor.Frame
	Output   pid.Output
	Command  mixer.MotorCommand
	Fault    error
}

type Params struct {
	Period          time.Duration
	StalenessWindow time.Duration
	Scheduler       gains.Scheduler
	Sensor          linesensor.Sensor
	IntegralLimit   float64
}

func ParamsFromConfig(cfg config.Config) Params {
	return Params{
		Period:          cfg.ControlPeriod,
		StalenessWindow: cfg.StalenessWindow,
		Scheduler:       cfg.NewScheduler(),
		Sensor:          cfg.Sensor,
		IntegralLimit:   cfg.IntegralLimit,
	}
}

type Loop struct {
	log *zap.Logger

	period, window time.Duration
	scheduler      gains.Scheduler
	sensor         linesensor.Sensor
	pid            *pid.Controller

	vision *vision.Store
	source linesensor.Source
	sink   mixer.Sink

	state State
	buf   []int
}

func New(p Params, store *vision.Store, source linesensor.Source, sink mixer.Sink, log *zap.Logger) *Loop {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loop{
		log:       log,
		period:    p.Period,
		window:    p.StalenessWindow,
		scheduler: p.Scheduler,
		sensor:    p.Sensor,
		pid:       pid.New(p.IntegralLimit),
		vision:    store,
		source:    source,
		sink:      sink,
		buf:       make([]int, p.Sensor.Channels),
	}
}

func (l *Loop) State() State {
	s := l.state
	s.PID = l.pid.State()
	return s
}

// Tick runs one pass of the pipeline: vision snapshot, arbitration, gain
// scheduling, line measurement, PID and mixing.
func (l *Loop) Tick(now time.Time) Telemetry {
	l.state.Ticks++
	t := Telemetry{Now: now}

	t.Sample = l.vision.Latest()
	t.Decision = arbiter.Arbitrate(now, t.Sample, l.window)
	t.Gains = l.scheduler.Schedule(gains.Input{
		UseVision:    t.Decision.UseVision,
		Lookahead:    t.Decision.Lookahead,
		CurrentSpeed: l.state.LastBaseSpeed,
	})
	l.noteMode(t)
	l.state.LastProfile = t.Gains.Profile

	t.Frame, l.buf, t.Fault = l.sensor.Read(l.source, l.buf)
	if t.Fault != nil {
		l.fault(&t)
		return t
	}
	if l.state.Faulted {
		l.log.Info("Line sensor recovered")
		l.state.Faulted = false
	}
	l.noteLine(t)

	t.Output = l.pid.Update(t.Gains, t.Frame, l.period.Seconds())
	t.Command = mixer.Mix(t.Output.BaseSpeed, t.Output.U)
	l.output(t.Command)
	l.state.LastBaseSpeed = t.Output.BaseSpeed

	if ce := l.log.Check(zap.DebugLevel, "Tick"); ce != nil {
		ce.Write(
			zap.Stringer("vision", t.Sample),
			zap.Bool("useVision", t.Decision.UseVision),
			zap.Stringer("gains", t.Gains),
			zap.Stringer("frame", t.Frame),
			zap.Float64("u", t.Output.U),
			zap.Stringer("cmd", t.Command),
		)
	}
	return t
}

// fault handles a sensor read failure: without a measurement the only safe
// output is a stop.
func (l *Loop) fault(t *Telemetry) {
	if !l.state.Faulted {
		l.log.Error("Line sensor read failed; stopping", zap.Error(t.Fault))
		l.state.Faulted = true
	}
	l.pid.Reset()
	t.Command = mixer.Stop
	l.output(t.Command)
	l.state.LastBaseSpeed = 0
}

func (l *Loop) output(cmd mixer.MotorCommand) {
	if err := l.sink.SetWheels(cmd); err != nil {
		l.log.Warn("Failed to set wheel speeds", zap.Error(err))
	}
}

func (l *Loop) noteMode(t Telemetry) {
	if t.Decision.UseVision == l.state.UsingVision && l.state.Ticks > 1 {
		return
	}
	l.state.UsingVision = t.Decision.UseVision
	if t.Decision.UseVision {
		l.log.Info("Vision trusted", zap.Float64("lookahead", t.Decision.Lookahead))
	} else {
		l.log.Info("Vision not trusted; safe mode",
			zap.Duration("age", t.Decision.Age), zap.Bool("valid", t.Sample.Valid))
	}
}

func (l *Loop) noteLine(t Telemetry) {
	if t.Frame.Lost == l.state.LineLost {
		return
	}
	l.state.LineLost = t.Frame.Lost
	if t.Frame.Lost {
		l.log.Info("Line lost", zap.Float64("sum", t.Frame.Sum))
	} else {
		l.log.Info("Line found", zap.Float64("position", t.Frame.Position))
	}
}

// Run ticks at the configured period until ctx is done, then stops the
// wheels.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.period)
	defer ticker.Stop()
	status := time.NewTicker(statusInterval)
	defer status.Stop()

	defer func() {
		l.log.Info("Control loop exiting; stopping wheels")
		l.output(mixer.Stop)
	}()

	l.log.Info("Control loop started", zap.Duration("period", l.period))
	var lastStatusTicks uint64
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.Tick(now)
			if time.Since(now) > l.period {
				l.state.Overruns++
			}
		case <-status.C:
			l.log.Info("Control loop still running",
				zap.Uint64("ticks", l.state.Ticks-lastStatusTicks),
				zap.Uint64("overruns", l.state.Overruns),
				zap.Bool("vision", l.state.UsingVision),
				zap.Bool("lineLost", l.state.LineLost),
				zap.Float64("baseSpeed", l.state.LastBaseSpeed))
			lastStatusTicks = l.state.Ticks
		}
	}
}
