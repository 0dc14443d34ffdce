package main

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/tigerbot-team/linefollower/pkg/sim"
)

var CLI struct {
	DT float64 `name:"dt" help:"Control timestep in seconds." default:"0.02"`

	Speed    float64 `help:"Run a single scenario with this commanded speed instead of the built-in table." default:"-1"`
	LineFrac float64 `help:"Visible line fraction for --speed." default:"0.5"`
	Error    float64 `help:"Lateral error in metres for --speed." default:"0"`
}

func main() {
	kong.Parse(&CLI, kong.Description("Offline run of the fuzzy scheduler, PID and mixer."))

	scenarios := sim.DefaultScenarios
	if CLI.Speed >= 0 {
		scenarios = []sim.Scenario{{Speed: CLI.Speed, LineFrac: CLI.LineFrac, Error: CLI.Error}}
	}

	header := fmt.Sprintf("%5s %5s %7s  %6s  %3s  %5s %7s %6s %6s   %s",
		"speed", "line", "err(m)", "X*", "lbl", "base", "u", "left", "right", "pid(vmax,kp,ki,kd)")
	fmt.Println(header)
	fmt.Println(strings.Repeat("-", len(header)))

	for _, r := range sim.New(CLI.DT).Run(scenarios) {
		g := r.Fuzzy.Gains
		fmt.Printf("%5.2f %5.2f %+7.3f  %6.2f  %3s  %5.2f %+7.3f %6.2f %6.2f   (%.2f, %.2f, %.2f, %.2f)\n",
			r.Speed, r.LineFrac, r.Error, r.Fuzzy.XStar, r.Fuzzy.Label,
			r.BaseSpeed, r.U, r.Command.Left, r.Command.Right,
			g.BaseSpeed, g.Kp, g.Ki, g.Kd)
	}
}
