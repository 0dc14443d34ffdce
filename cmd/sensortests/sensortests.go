package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"periph.io/x/periph/conn/physic"

	"github.com/tigerbot-team/linefollower/pkg/config"
	"github.com/tigerbot-team/linefollower/pkg/mcp3008"
)

var CLI struct {
	Config   string        `help:"Configuration file for the sensor calibration." default:"/cfg/linefollower.yaml"`
	Interval time.Duration `help:"Time between readings." default:"200ms"`
	ClockKHz int           `name:"clock-khz" help:"SPI clock." default:"1000"`
}

func main() {
	kong.Parse(&CLI, kong.Description("Prints raw and normalised IR array readings."))

	cfg := config.Default()
	if _, err := os.Stat(CLI.Config); err == nil {
		cfg, err = config.Load(CLI.Config)
		if err != nil {
			fmt.Println("Failed to load config:", err)
			os.Exit(1)
		}
	}

	adc, err := mcp3008.New(cfg.SPIDevice, physic.Frequency(CLI.ClockKHz)*physic.KiloHertz)
	if err != nil {
		fmt.Println("Failed to open ADC:", err)
		os.Exit(1)
	}
	defer adc.Close()

	var buf []int
	for {
		frame, raw, err := cfg.Sensor.Read(adc, buf)
		buf = raw
		if err != nil {
			fmt.Println("Read failed:", err)
		} else {
			var norm []string
			for _, v := range raw {
				norm = append(norm, fmt.Sprintf("%.2f", cfg.Sensor.Normalise(v)))
			}
			fmt.Printf("raw=%v norm=[%s] %s\n", raw, strings.Join(norm, " "), frame)
		}
		time.Sleep(CLI.Interval)
	}
}
