// Package pca9685 drives the 16-channel I2C PWM chip on the motor hat.
package pca9685

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/io/i2c"
)

const (
	DefaultAddr = 0x60 // Address used by the motor hat; the bare chip defaults to 0x40.

	RegMode1 = 0x00
	RegMode2 = 0x01

	// Each output has two 16-bit (low byte first) registers: on time then off
	// time.  Bit 4 of the high byte forces the output fully on or off.
	RegLEDBase = 0x06

	RegPreScale = 0xfe

	NumChannels = 16
	PWMMax      = 4095

	oscillatorHz = 25e6
	fullBit      = 0x10

	DefaultFrequencyHz = 1600
)

var ErrBadChannel = errors.New("pca9685: channel out of range")

type Interface interface {
	Configure(frequencyHz float64) error
	SetDuty(channel int, duty float64) error
	SetFull(channel int, on bool) error
	Close() error
}

// port is the register access we need from the bus; *i2c.Device provides it.
type port interface {
	WriteReg(reg byte, buf []byte) error
	Close() error
}

type PCA9685 struct {
	dev port
}

func New(deviceFile string, addr int) (*PCA9685, error) {
	dev, err := i2c.Open(&i2c.Devfs{Dev: deviceFile}, addr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open PCA9685 at %s:0x%x", deviceFile, addr)
	}
	return &PCA9685{dev: dev}, nil
}

// PreScale computes the prescaler register value for a PWM frequency.
func PreScale(frequencyHz float64) byte {
	v := math.Round(oscillatorHz/(PWMMax+1)/frequencyHz) - 1
	if v < 3 {
		v = 3
	} else if v > 255 {
		v = 255
	}
	return byte(v)
}

func (p *PCA9685) Configure(frequencyHz float64) (err error) {
	if frequencyHz <= 0 {
		frequencyHz = DefaultFrequencyHz
	}
	// Prescaler can only be written while asleep.
	if err = p.dev.WriteReg(RegMode1, []byte{0x11}); err != nil {
		return
	}
	if err = p.dev.WriteReg(RegPreScale, []byte{PreScale(frequencyHz)}); err != nil {
		return
	}
	if err = p.dev.WriteReg(RegMode1, []byte{0x01}); err != nil {
		return
	}
	// Oscillator needs 500us to restart.
	time.Sleep(1 * time.Millisecond)
	// Restart with register auto-increment.
	err = p.dev.WriteReg(RegMode1, []byte{0xa1})
	return
}

// SetDuty sets channel's duty cycle; duty is clamped to [0,1].
func (p *PCA9685) SetDuty(channel int, duty float64) error {
	if channel < 0 || channel >= NumChannels {
		return ErrBadChannel
	}
	if duty < 0 {
		duty = 0
	} else if duty > 1 {
		duty = 1
	}
	switch duty {
	case 0:
		return p.SetFull(channel, false)
	case 1:
		return p.SetFull(channel, true)
	}
	off := uint16(PWMMax * duty)
	return p.dev.WriteReg(regFor(channel), []byte{0, 0, byte(off & 0xff), byte(off >> 8)})
}

// SetFull drives channel as a plain logic output.
func (p *PCA9685) SetFull(channel int, on bool) error {
	if channel < 0 || channel >= NumChannels {
		return ErrBadChannel
	}
	data := []byte{0, 0, 0, fullBit}
	if on {
		data = []byte{0, fullBit, 0, 0}
	}
	return p.dev.WriteReg(regFor(channel), data)
}

func (p *PCA9685) Close() error {
	return p.dev.Close()
}

func regFor(channel int) byte {
	return byte(RegLEDBase + channel*4)
}

var _ Interface = (*PCA9685)(nil)
