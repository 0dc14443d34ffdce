package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/tigerbot-team/linefollower/pkg/config"
	"github.com/tigerbot-team/linefollower/pkg/mixer"
	"github.com/tigerbot-team/linefollower/pkg/motor"
	"github.com/tigerbot-team/linefollower/pkg/pca9685"
)

var CLI struct {
	Config string        `help:"Configuration file for the motor wiring." default:"/cfg/linefollower.yaml"`
	Speed  float64       `help:"Speed for each step of the sequence." default:"0.3"`
	Step   time.Duration `help:"How long to hold each step." default:"1s"`
}

func main() {
	kong.Parse(&CLI, kong.Description("Steps the wheels through forwards, backwards and both spins."))

	cfg := config.Default()
	if _, err := os.Stat(CLI.Config); err == nil {
		cfg, err = config.Load(CLI.Config)
		if err != nil {
			fmt.Println("Failed to load config:", err)
			os.Exit(1)
		}
	}

	pwm, err := pca9685.New(cfg.Motors.I2CDevice, cfg.Motors.Address)
	if err != nil {
		fmt.Println("Failed to open PWM driver:", err)
		os.Exit(1)
	}
	defer pwm.Close()
	if err := pwm.Configure(cfg.Motors.FrequencyHz); err != nil {
		fmt.Println("Failed to configure PWM driver:", err)
		os.Exit(1)
	}

	d := motor.NewDriver(pwm, cfg.Motors.Left, cfg.Motors.Right)
	defer func() {
		fmt.Println("Zeroing motors")
		_ = d.Stop()
	}()

	v := CLI.Speed
	sequence := []struct {
		name string
		cmd  mixer.MotorCommand
	}{
		{"forwards", mixer.MotorCommand{Left: v, Right: v}},
		{"stop", mixer.Stop},
		{"backwards", mixer.MotorCommand{Left: -v, Right: -v}},
		{"stop", mixer.Stop},
		{"spin left", mixer.MotorCommand{Left: -v, Right: v}},
		{"spin right", mixer.MotorCommand{Left: v, Right: -v}},
		{"left only", mixer.MotorCommand{Left: v}},
		{"right only", mixer.MotorCommand{Right: v}},
	}
	for _, s := range sequence {
		fmt.Printf("%-10s %s\n", s.name, s.cmd)
		if err := d.SetWheels(s.cmd); err != nil {
			fmt.Println("Failed to set wheels:", err)
			return
		}
		time.Sleep(CLI.Step)
	}
}
