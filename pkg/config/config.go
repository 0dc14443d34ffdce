// Package config loads the controller configuration.  It is read once at
// start-up; nothing in it changes while the loop runs.
package config

import (
	"io/ioutil"
	"time"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/tigerbot-team/linefollower/pkg/arbiter"
	"github.com/tigerbot-team/linefollower/pkg/gains"
	"github.com/tigerbot-team/linefollower/pkg/gains/fuzzy"
	"github.com/tigerbot-team/linefollower/pkg/linesensor"
	"github.com/tigerbot-team/linefollower/pkg/mcp3008"
	"github.com/tigerbot-team/linefollower/pkg/motor"
	"github.com/tigerbot-team/linefollower/pkg/pca9685"
	"github.com/tigerbot-team/linefollower/pkg/serialport"
	"github.com/tigerbot-team/linefollower/pkg/vision"
)

const (
	DefaultPath      = "/cfg/linefollower.yaml"
	DefaultInUsePath = "/cfg/linefollower-in-use.yaml"

	SchedulerTable = "table"
	SchedulerFuzzy = "fuzzy"
)

type Config struct {
	ControlPeriod   time.Duration `yaml:"controlPeriod"`
	StalenessWindow time.Duration `yaml:"stalenessWindow"`

	Scheduler    string      `yaml:"scheduler"`
	Gains        gains.Table `yaml:"gains"`
	MinBaseSpeed float64     `yaml:"minBaseSpeed"`
	MaxBaseSpeed float64     `yaml:"maxBaseSpeed"`

	// IntegralLimit bounds the PID integral; zero leaves it unbounded.
	IntegralLimit float64 `yaml:"integralLimit"`

	Sensor    linesensor.Sensor `yaml:"sensor"`
	SPIDevice string            `yaml:"spiDevice"`

	Serial Serial   `yaml:"serial"`
	Motors Actuator `yaml:"motors"`
}

type Serial struct {
	Device        string             `yaml:"device"`
	Options       serialport.Options `yaml:"options"`
	MaxLineLength int                `yaml:"maxLineLength"`
}

type Actuator struct {
	// Present selects the PWM driver; otherwise commands are only reported.
	Present     bool           `yaml:"present"`
	I2CDevice   string         `yaml:"i2cDevice"`
	Address     int            `yaml:"address"`
	FrequencyHz float64        `yaml:"frequencyHz"`
	Left        motor.Channels `yaml:"left"`
	Right       motor.Channels `yaml:"right"`
}

func Default() Config {
	return Config{
		ControlPeriod:   2 * time.Millisecond,
		StalenessWindow: arbiter.DefaultStalenessWindow,
		Scheduler:       SchedulerTable,
		Gains:           gains.DefaultTable(),
		MinBaseSpeed:    gains.DefaultMinBaseSpeed,
		MaxBaseSpeed:    gains.DefaultMaxBaseSpeed,
		Sensor:          linesensor.Default(),
		SPIDevice:       mcp3008.DefaultDevice,
		Serial: Serial{
			Device:        "/dev/ttyACM0",
			Options:       serialport.Options{BaudRate: serialport.DefaultBaudRate},
			MaxLineLength: vision.DefaultMaxLineLength,
		},
		Motors: Actuator{
			I2CDevice:   "/dev/i2c-1",
			Address:     pca9685.DefaultAddr,
			FrequencyHz: pca9685.DefaultFrequencyHz,
			Left:        motor.DefaultLeft,
			Right:       motor.DefaultRight,
		},
	}
}

// Load reads path over the defaults, so a file only needs the fields it
// changes.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "failed to read config %s", path)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.ControlPeriod <= 0 {
		return errors.Errorf("controlPeriod must be positive, got %v", c.ControlPeriod)
	}
	if c.StalenessWindow <= 0 {
		return errors.Errorf("stalenessWindow must be positive, got %v", c.StalenessWindow)
	}
	switch c.Scheduler {
	case SchedulerTable, SchedulerFuzzy:
	default:
		return errors.Errorf("unknown scheduler %q", c.Scheduler)
	}
	if !unit(c.Gains.LowThreshold) || !unit(c.Gains.HighThreshold) {
		return errors.Errorf("gains thresholds [%v,%v] must be within [0,1]",
			c.Gains.LowThreshold, c.Gains.HighThreshold)
	}
	if c.Gains.LowThreshold > c.Gains.HighThreshold {
		return errors.Errorf("gains.lowThreshold %v is above gains.highThreshold %v",
			c.Gains.LowThreshold, c.Gains.HighThreshold)
	}
	if c.MinBaseSpeed < 0 || c.MaxBaseSpeed > 1 || c.MinBaseSpeed > c.MaxBaseSpeed {
		return errors.Errorf("base speed bounds [%v,%v] must be ordered within [0,1]",
			c.MinBaseSpeed, c.MaxBaseSpeed)
	}
	if c.IntegralLimit < 0 {
		return errors.Errorf("integralLimit must not be negative, got %v", c.IntegralLimit)
	}
	if c.Sensor.Channels < 2 || c.Sensor.Channels > mcp3008.NumChannels {
		return errors.Errorf("sensor.channels must be between 2 and %d, got %d",
			mcp3008.NumChannels, c.Sensor.Channels)
	}
	if c.Sensor.FullScale <= 0 {
		return errors.Errorf("sensor.fullScale must be positive, got %d", c.Sensor.FullScale)
	}
	if c.Sensor.Spacing <= 0 {
		return errors.Errorf("sensor.spacing must be positive, got %v", c.Sensor.Spacing)
	}
	if !(c.Sensor.DetectionThreshold > 0) {
		return errors.Errorf("sensor.detectionThreshold must be positive, got %v", c.Sensor.DetectionThreshold)
	}
	if c.Motors.FrequencyHz <= 0 {
		return errors.Errorf("motors.frequencyHz must be positive, got %v", c.Motors.FrequencyHz)
	}
	for name, ch := range map[string]motor.Channels{"left": c.Motors.Left, "right": c.Motors.Right} {
		if err := checkChannels(ch); err != nil {
			return errors.Wrapf(err, "motors.%s", name)
		}
	}
	if c.Serial.MaxLineLength < 8 {
		return errors.Errorf("serial.maxLineLength must be at least 8, got %d", c.Serial.MaxLineLength)
	}
	if _, err := c.Serial.Options.Normalise(); err != nil {
		return errors.Wrap(err, "serial.options")
	}
	return nil
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}

func checkChannels(ch motor.Channels) error {
	for _, n := range []int{ch.PWM, ch.In1, ch.In2} {
		if n < 0 || n >= pca9685.NumChannels {
			return errors.Errorf("PWM channel %d out of range 0..%d", n, pca9685.NumChannels-1)
		}
	}
	if ch.PWM == ch.In1 || ch.PWM == ch.In2 || ch.In1 == ch.In2 {
		return errors.Errorf("channels pwm=%d in1=%d in2=%d must be distinct", ch.PWM, ch.In1, ch.In2)
	}
	return nil
}

// NewScheduler builds the configured scheduler wrapped in the base speed
// clamp.
func (c Config) NewScheduler() gains.Scheduler {
	var s gains.Scheduler = c.Gains
	if c.Scheduler == SchedulerFuzzy {
		s = fuzzy.Scheduler{}
	}
	return gains.Clamped{Scheduler: s, Min: c.MinBaseSpeed, Max: c.MaxBaseSpeed}
}

// WriteInUse records the effective configuration next to the input file.
func (c Config) WriteInUse(path string) error {
	data, err := yaml.Marshal(&c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	if err := ioutil.WriteFile(path, data, 0666); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
