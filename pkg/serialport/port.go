// Package serialport opens the serial link between the vision computer and the
// controller.
package serialport

import (
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"
)

const (
	DefaultBaudRate    = 115200
	DefaultReadTimeout = 10 * time.Millisecond
)

// Port is the subset of serial.Port that the link needs; tests substitute pipes.
type Port interface {
	io.ReadWriteCloser
}

// Options describes how to configure the port.  Zero values take defaults.
type Options struct {
	BaudRate    int           `yaml:"baudRate"`
	DataBits    int           `yaml:"dataBits"`
	StopBits    int           `yaml:"stopBits"`
	Parity      string        `yaml:"parity"`
	ReadTimeout time.Duration `yaml:"readTimeout"`
}

// Normalise validates the options and fills in defaults.
func (o Options) Normalise() (Options, error) {
	opts := o
	if opts.BaudRate <= 0 {
		opts.BaudRate = DefaultBaudRate
	}
	if opts.DataBits == 0 {
		opts.DataBits = 8
	}
	if opts.DataBits < 5 || opts.DataBits > 8 {
		return opts, errors.Errorf("invalid data bits %d: must be between 5 and 8", opts.DataBits)
	}
	if opts.StopBits == 0 {
		opts.StopBits = 1
	}
	if opts.StopBits != 1 && opts.StopBits != 2 {
		return opts, errors.Errorf("invalid stop bits %d: must be 1 or 2", opts.StopBits)
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}

	switch strings.ToUpper(strings.TrimSpace(opts.Parity)) {
	case "", "N", "NONE":
		opts.Parity = "N"
	case "E", "EVEN":
		opts.Parity = "E"
	case "O", "ODD":
		opts.Parity = "O"
	default:
		return opts, errors.Errorf("unsupported parity %q: expected N, E or O", o.Parity)
	}
	return opts, nil
}

// Mode converts the options to the go.bug.st/serial representation.
func (o Options) Mode() (*serial.Mode, error) {
	opts, err := o.Normalise()
	if err != nil {
		return nil, err
	}
	mode := &serial.Mode{
		BaudRate: opts.BaudRate,
		DataBits: opts.DataBits,
		StopBits: serial.OneStopBit,
	}
	if opts.StopBits == 2 {
		mode.StopBits = serial.TwoStopBits
	}
	switch opts.Parity {
	case "E":
		mode.Parity = serial.EvenParity
	case "O":
		mode.Parity = serial.OddParity
	default:
		mode.Parity = serial.NoParity
	}
	return mode, nil
}

// Open opens the device with a short read timeout so that readers wake up
// regularly even when the link is idle.
func Open(device string, o Options) (Port, error) {
	opts, err := o.Normalise()
	if err != nil {
		return nil, err
	}
	mode, err := opts.Mode()
	if err != nil {
		return nil, err
	}
	p, err := serial.Open(device, mode)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open serial port %s", device)
	}
	if err := p.SetReadTimeout(opts.ReadTimeout); err != nil {
		_ = p.Close()
		return nil, errors.Wrapf(err, "failed to set read timeout on %s", device)
	}
	return p, nil
}
