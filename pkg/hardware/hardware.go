package hardware

import (
	"os"

	"go.uber.org/zap"

	"github.com/tigerbot-team/linefollower/pkg/config"
	"github.com/tigerbot-team/linefollower/pkg/mcp3008"
	"github.com/tigerbot-team/linefollower/pkg/mixer"
	"github.com/tigerbot-team/linefollower/pkg/motor"
	"github.com/tigerbot-team/linefollower/pkg/pca9685"
)

type Hardware struct {
	log *zap.Logger

	adc  *mcp3008.MCP3008
	pwm  *pca9685.PCA9685
	sink mixer.Sink
}

// New opens the ADC and, if the config says motors are attached, the PWM
// driver.  Without motors, commands go to stdout as diagnostic lines.
func New(cfg config.Config, log *zap.Logger) (*Hardware, error) {
	adc, err := mcp3008.New(cfg.SPIDevice, mcp3008.DefaultClock)
	if err != nil {
		return nil, err
	}
	h := &Hardware{
		log: log,
		adc: adc,
	}

	if !cfg.Motors.Present {
		log.Info("No motors configured; reporting commands only")
		h.sink = mixer.NewDiagnostic(os.Stdout)
		return h, nil
	}

	pwm, err := pca9685.New(cfg.Motors.I2CDevice, cfg.Motors.Address)
	if err != nil {
		_ = adc.Close()
		return nil, err
	}
	if err := pwm.Configure(cfg.Motors.FrequencyHz); err != nil {
		_ = adc.Close()
		_ = pwm.Close()
		return nil, err
	}
	h.pwm = pwm
	h.sink = motor.NewDriver(pwm, cfg.Motors.Left, cfg.Motors.Right)
	return h, nil
}

var _ Interface = (*Hardware)(nil)

func (h *Hardware) ReadChannels(dst []int) error {
	return h.adc.ReadChannels(dst)
}

func (h *Hardware) SetWheels(cmd mixer.MotorCommand) error {
	return h.sink.SetWheels(cmd)
}

func (h *Hardware) Shutdown() {
	h.log.Info("Zeroing motors for shut down")
	if err := h.sink.SetWheels(mixer.Stop); err != nil {
		h.log.Error("Failed to stop motors", zap.Error(err))
	}
	if h.pwm != nil {
		if err := h.pwm.Close(); err != nil {
			h.log.Warn("Failed to close PWM driver", zap.Error(err))
		}
	}
	if err := h.adc.Close(); err != nil {
		h.log.Warn("Failed to close ADC", zap.Error(err))
	}
}
